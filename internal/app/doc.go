// Package app provides the application context for forage-ns.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Paths    *config.Paths      // File system paths
//	    Settings *config.Settings   // config.toml
//	    Runtime  runtime.Runtime    // Sandbox process runtime
//	    Manager  *sandbox.Manager   // Sandbox operations
//	}
//
// # Creating an App
//
//	// Production usage
//	app, err := app.Load(configDir, stateDirOverride)
//
//	// Testing with custom dependencies
//	app, err := app.New(
//	    app.WithPaths(testPaths),
//	    app.WithRuntime(runtime.NewMockRuntime()),
//	)
//
// # Available Options
//
//	WithPaths(paths)        // Custom path configuration
//	WithSettings(settings)  // Custom settings instead of config.toml
//	WithRuntime(runtime)    // Custom sandbox runtime
package app
