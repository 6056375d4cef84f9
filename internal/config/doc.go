// Package config provides configuration management for the hawkroll CLI.
//
// Two configuration layers live here:
//
//   - The rollout configuration file (JSON), loaded once per run. It declares
//     the firmware sequences (ordered lists of distribution-set name/version
//     steps), polling parameters, rollout shaping options, and optional
//     server connection defaults.
//
//   - A YAML profile registry stored in the platform config directory. It
//     remembers the server URL, default username, default target-filter name
//     and application preferences between runs, so that routine invocations
//     need no connection flags.
//
// # Rollout Configuration File
//
// Recognized top-level keys are "server", "polling", "rollout" and
// "sequences"; unknown keys are ignored. Example:
//
//	{
//	  "server": {"url": "https://hawkbit.example.com", "username": "admin"},
//	  "polling": {"intervalSeconds": 10, "timeoutSeconds": 1800},
//	  "rollout": {"amountGroups": 1, "actionType": "forced"},
//	  "sequences": {
//	    "1.0": [
//	      {"name": "bootloader", "version": "1.0"},
//	      {"name": "app", "version": "1.0"}
//	    ]
//	  }
//	}
//
// Loading validates the structure eagerly: every sequence must have at least
// one step, every step needs both name and version, and the polling interval
// and timeout must be positive with timeout >= interval. Violations surface
// as *config.Error before any remote call is attempted.
//
// # Profile Registry Location
//
// The profile file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/hawkroll/config.yaml or $HOME/.config/hawkroll/config.yaml
//   - macOS: $HOME/.config/hawkroll/config.yaml
//   - Windows: %LOCALAPPDATA%\hawkroll\config.yaml
//
// # Security
//
// The profile registry NEVER stores passwords or API tokens. Credentials are
// resolved from flags, environment, a .env file, or an interactive prompt.
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across
// goroutines. File writes are atomic (temp file + rename) and protected by a
// mutex.
package config
