package config

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
	securejoin "github.com/cyphar/filepath-securejoin"
)

// sandboxNameRegex validates sandbox names.
// Names must start with a lowercase letter or digit, followed by lowercase letters, digits, underscores, or hyphens.
// Maximum length is 63 characters.
var sandboxNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// ValidateSandboxName checks if a sandbox name is valid.
// Valid names:
//   - Start with a lowercase letter or digit
//   - Contain only lowercase letters, digits, underscores, or hyphens
//   - Are between 1 and 63 characters long
//
// Callers that allow an omitted name must check for "" themselves.
func ValidateSandboxName(name string) error {
	if name == "" {
		return fmt.Errorf("sandbox name cannot be empty")
	}

	if !sandboxNameRegex.MatchString(name) {
		return fmt.Errorf("invalid sandbox name %q: must start with a lowercase letter or digit, contain only lowercase letters, digits, underscores, or hyphens, and be at most 63 characters", name)
	}

	return nil
}

const (
	DefaultConfigDir = "/etc/forage-ns"
	DefaultStateDir  = "/var/lib/forage-ns"
	SettingsFile     = "config.toml"

	DefaultPoolPrefix     = "10.201.0.0/16"
	DefaultMaxBlocks      = 16000
	DefaultRuntimeBinary  = "forage-sandbox"
	DefaultNsenterBinary  = "nsenter"
	SandboxMarkerVariable = "FORAGE_SANDBOX"
)

// DefaultCommand is run inside a sandbox when the caller gives none.
var DefaultCommand = []string{"/bin/bash"}

// Paths holds the configured paths
type Paths struct {
	ConfigDir     string
	StateDir      string
	RegistryPath  string // sandboxes.json
	LockPath      string // flock target guarding the registry and pool
	PoolDir       string // one marker file per claimed block
	WorkspacesDir string
	LogsDir       string // runtime stdout/stderr per sandbox
	EventsDir     string // audit logs
}

// DefaultPaths returns the default path configuration
func DefaultPaths() *Paths {
	return NewPaths(DefaultConfigDir, DefaultStateDir)
}

// NewPaths derives every state path from stateDir.
func NewPaths(configDir, stateDir string) *Paths {
	return &Paths{
		ConfigDir:     configDir,
		StateDir:      stateDir,
		RegistryPath:  filepath.Join(stateDir, "sandboxes.json"),
		LockPath:      filepath.Join(stateDir, "registry.lock"),
		PoolDir:       filepath.Join(stateDir, "ip-pool"),
		WorkspacesDir: filepath.Join(stateDir, "workspaces"),
		LogsDir:       filepath.Join(stateDir, "logs"),
		EventsDir:     filepath.Join(stateDir, "events"),
	}
}

// EnsureDirs creates the state directories if absent.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.StateDir, p.PoolDir, p.WorkspacesDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// LogPath returns the runtime log file for a sandbox.
func (p *Paths) LogPath(id string) string {
	return filepath.Join(p.LogsDir, id+".log")
}

// ResolveWorkspace returns the absolute workspace path for a new sandbox.
// An empty request yields a private directory named after the id, a
// relative request is confined to WorkspacesDir, and an absolute request
// is used as given.
func (p *Paths) ResolveWorkspace(id, requested string) (string, error) {
	if requested == "" {
		requested = id
	}
	if filepath.IsAbs(requested) {
		return filepath.Clean(requested), nil
	}
	path, err := securejoin.SecureJoin(p.WorkspacesDir, requested)
	if err != nil {
		return "", fmt.Errorf("invalid workspace %q: %w", requested, err)
	}
	return path, nil
}

// Settings is the optional config.toml.
type Settings struct {
	StateDir string           `toml:"state_dir"`
	Pool     PoolSettings     `toml:"pool"`
	Runtime  RuntimeSettings  `toml:"runtime"`
	Registry RegistrySettings `toml:"registry"`
}

type PoolSettings struct {
	Prefix    string `toml:"prefix"`
	MaxBlocks int    `toml:"max_blocks"`
}

type RuntimeSettings struct {
	Binary         string   `toml:"binary"`
	Nsenter        string   `toml:"nsenter"`
	DefaultCommand []string `toml:"default_command"`
	ExecTimeout    string   `toml:"exec_timeout"` // Go duration, "0s" disables
}

type RegistrySettings struct {
	// Strict makes a malformed registry file an error instead of a warning.
	Strict bool `toml:"strict"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	return &Settings{
		StateDir: DefaultStateDir,
		Pool: PoolSettings{
			Prefix:    DefaultPoolPrefix,
			MaxBlocks: DefaultMaxBlocks,
		},
		Runtime: RuntimeSettings{
			Binary:         DefaultRuntimeBinary,
			Nsenter:        DefaultNsenterBinary,
			DefaultCommand: append([]string(nil), DefaultCommand...),
			ExecTimeout:    "0s",
		},
	}
}

// LoadSettings reads config.toml from configDir. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadSettings(configDir string) (*Settings, error) {
	path := filepath.Join(configDir, SettingsFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	settings, err := DecodeSettings(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

// DecodeSettings parses TOML settings over the defaults and validates the
// result. Unknown keys are rejected so a typo never silently falls back to
// a default.
func DecodeSettings(data string) (*Settings, error) {
	settings := DefaultSettings()

	md, err := toml.Decode(data, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in settings: %v", undecoded)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// Validate checks that the Settings are usable.
func (s *Settings) Validate() error {
	if s.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if !filepath.IsAbs(s.StateDir) {
		return fmt.Errorf("state_dir must be an absolute path (got %q)", s.StateDir)
	}

	prefix, err := netip.ParsePrefix(s.Pool.Prefix)
	if err != nil {
		return fmt.Errorf("pool.prefix: %w", err)
	}
	if !prefix.Addr().Is4() {
		return fmt.Errorf("pool.prefix must be IPv4 (got %s)", s.Pool.Prefix)
	}
	if s.Pool.MaxBlocks < 1 {
		return fmt.Errorf("pool.max_blocks must be positive (got %d)", s.Pool.MaxBlocks)
	}
	if capacity := 1 << (32 - prefix.Bits()) / 4; s.Pool.MaxBlocks > capacity {
		return fmt.Errorf("pool.max_blocks %d exceeds the %d blocks in %s", s.Pool.MaxBlocks, capacity, prefix)
	}

	if s.Runtime.Binary == "" {
		return fmt.Errorf("runtime.binary is required")
	}
	if s.Runtime.Nsenter == "" {
		return fmt.Errorf("runtime.nsenter is required")
	}
	if len(s.Runtime.DefaultCommand) == 0 {
		return fmt.Errorf("runtime.default_command cannot be empty")
	}
	if _, err := s.ExecTimeout(); err != nil {
		return err
	}
	return nil
}

// ExecTimeout returns the configured exec deadline; zero means unbounded.
func (s *Settings) ExecTimeout() (time.Duration, error) {
	if s.Runtime.ExecTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Runtime.ExecTimeout)
	if err != nil {
		return 0, fmt.Errorf("runtime.exec_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("runtime.exec_timeout cannot be negative (got %s)", d)
	}
	return d, nil
}
