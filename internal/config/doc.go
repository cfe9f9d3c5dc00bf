// Package config provides paths, settings, and input validation for forage-ns.
//
// # Paths
//
// All persistent state lives under a single state directory
// (/var/lib/forage-ns by default):
//
//	sandboxes.json   the sandbox registry
//	registry.lock    flock target serializing registry and pool mutations
//	ip-pool/         one marker file per claimed address block
//	workspaces/      default sandbox workspaces
//	logs/            runtime stdout/stderr per sandbox
//	events/          audit logs
//
// # Settings
//
// An optional config.toml in the config directory overrides the built-in
// defaults:
//
//	state_dir = "/var/lib/forage-ns"
//
//	[pool]
//	prefix = "10.201.0.0/16"
//	max_blocks = 16000
//
//	[runtime]
//	binary = "forage-sandbox"
//	nsenter = "nsenter"
//	default_command = ["/bin/bash"]
//	exec_timeout = "0s"
//
//	[registry]
//	strict = false
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config
