package cmd

import (
	"strconv"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

// application returns app.Default, loading it from --config and
// --state-dir on first use.
func application() (*app.App, error) {
	if app.Default != nil {
		return app.Default, nil
	}
	a, err := app.Load(configDir, stateDir)
	if err != nil {
		return nil, err
	}
	logging.Debug("loaded application", "config", configDir, "state", a.Paths.StateDir)
	app.SetDefault(a)
	return a, nil
}

// manager returns the sandbox manager of the application.
func manager() (*sandbox.Manager, error) {
	a, err := application()
	if err != nil {
		return nil, err
	}
	return a.Manager, nil
}

// parseIndex parses a sandbox index argument.
func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, errors.ValidationError("invalid sandbox index: " + arg)
	}
	return index, nil
}
