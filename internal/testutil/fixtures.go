package testutil

import (
	"embed"
	"encoding/json"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/registry"
)

//go:embed fixtures/*.json fixtures/*.toml
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadSettingsFixture parses a TOML settings fixture.
func LoadSettingsFixture(name string) (*config.Settings, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	return config.DecodeSettings(string(data))
}

// LoadRecordsFixture decodes the records of a registry fixture in either
// file layout.
func LoadRecordsFixture(name string) ([]*registry.Record, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 && data[0] == '[' {
		var records []*registry.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var file struct {
		Sandboxes []*registry.Record `json:"sandboxes"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Sandboxes, nil
}

// ValidSettings returns the valid settings fixture.
func ValidSettings() (*config.Settings, error) {
	return LoadSettingsFixture("valid_settings.toml")
}

// InvalidSettings returns the error from parsing the invalid settings fixture.
func InvalidSettings() error {
	_, err := LoadSettingsFixture("invalid_settings.toml")
	return err
}

// ValidRegistry returns the records of the current-format registry fixture.
func ValidRegistry() ([]*registry.Record, error) {
	return LoadRecordsFixture("valid_registry.json")
}

// LegacyRegistry returns the records of the bare-array registry fixture.
func LegacyRegistry() ([]*registry.Record, error) {
	return LoadRecordsFixture("legacy_registry.json")
}
