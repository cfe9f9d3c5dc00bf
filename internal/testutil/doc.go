// Package testutil provides test fixtures and utilities.
//
// This package contains embedded fixtures and a ready-made environment
// backed by a mock runtime and a temporary state directory.
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/valid_registry.json    // current registry layout
//	fixtures/legacy_registry.json   // bare array of records
//	fixtures/valid_settings.toml
//	fixtures/invalid_settings.toml
//
// Helper functions load and parse fixtures into typed values:
//
//	settings, err := testutil.ValidSettings()
//	records, err := testutil.LegacyRegistry()
//	data, err := testutil.LoadFixture("valid_registry.json")
//
// # Test Environment
//
//	func TestSomething(t *testing.T) {
//	    env := testutil.NewTestEnv(t)
//	    env.InstallRegistry("legacy_registry.json")
//
//	    sb := env.CreateSandbox(sandbox.CreateOptions{Name: "web"})
//	    env.KillSandbox(sb)
//
//	    report, _ := env.Manager.Cleanup(context.Background())
//	}
//
// NewTestEnv installs its App as app.Default for the duration of the test.
package testutil
