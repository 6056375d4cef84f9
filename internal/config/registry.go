package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName     = "hawkroll"
	profileFile = "config.yaml"
)

var (
	// Global registry instance (loaded lazily)
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
	globalRegistryErr  error

	// Mutex for thread-safe file operations
	fileMutex sync.Mutex
)

// Registry is the persistent user profile for the CLI. It stores connection
// defaults and preferences so routine invocations need no flags.
//
// Passwords and API tokens are NEVER stored here.
type Registry struct {
	Version int `yaml:"version"`

	// ServerURL is the default management-API base URL.
	ServerURL string `yaml:"server_url,omitempty"`
	// Username is the default basic-auth username.
	Username string `yaml:"username,omitempty"`
	// FilterName is the default target-filter name used for rollouts.
	FilterName string `yaml:"filter_name,omitempty"`

	// LastSequence is the sequence name most recently deployed, offered as
	// the default selection in the interactive picker.
	LastSequence string    `yaml:"last_sequence,omitempty"`
	LastDeploy   time.Time `yaml:"last_deploy,omitempty"`

	Preferences *Preferences `yaml:"preferences,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	// ShowHistory includes per-target installation history in the final
	// verification summary by default.
	ShowHistory bool `yaml:"show_history"`
	// InsecureTLS skips server certificate verification. Intended for lab
	// instances with self-signed certificates.
	InsecureTLS bool `yaml:"insecure_tls"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Preferences: &Preferences{
			ShowHistory: false,
			InsecureTLS: false,
		},
	}
}

// RecordDeploy remembers the sequence just deployed.
func (r *Registry) RecordDeploy(sequence string) {
	r.LastSequence = sequence
	r.LastDeploy = time.Now()
}

// GetConfigDir returns the OS-appropriate configuration directory for the
// application. This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/hawkroll or $HOME/.config/hawkroll
//   - macOS: $HOME/.config/hawkroll (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\hawkroll
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: Use XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetProfilePath returns the full path to the profile file.
func GetProfilePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, profileFile), nil
}

// ensureConfigDir ensures the configuration directory exists.
func ensureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	// User-only permissions
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// LoadRegistry loads the profile registry from disk.
// If the file doesn't exist, returns a new default registry.
// Thread-safe - multiple calls will return the same instance.
func LoadRegistry() (*Registry, error) {
	globalRegistryOnce.Do(func() {
		globalRegistry, globalRegistryErr = loadRegistryFromDisk()
	})
	return globalRegistry, globalRegistryErr
}

// loadRegistryFromDisk performs the actual file loading.
func loadRegistryFromDisk() (*Registry, error) {
	profilePath, err := GetProfilePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile path: %w", err)
	}

	if _, err := os.Stat(profilePath); os.IsNotExist(err) {
		// Profile doesn't exist - return new default registry
		return NewRegistry(), nil
	}

	data, err := os.ReadFile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	if registry.Version != 1 {
		return nil, fmt.Errorf("unsupported profile version: %d (expected 1)", registry.Version)
	}

	if registry.Preferences == nil {
		registry.Preferences = &Preferences{}
	}

	return &registry, nil
}

// Save saves the registry to disk.
// Performs an atomic write to prevent corruption on crash.
func (r *Registry) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := ensureConfigDir(); err != nil {
		return fmt.Errorf("failed to ensure config directory exists: %w", err)
	}

	profilePath, err := GetProfilePath()
	if err != nil {
		return fmt.Errorf("failed to get profile path: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	header := []byte(`# Hawkroll Profile
# Stores connection defaults and preferences for the hawkroll CLI.
#
# Security Note: passwords and API tokens are NEVER stored in this file.
# They are read from flags, environment variables, a .env file, or an
# interactive prompt.
#
# Location: ` + profilePath + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := profilePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary profile file: %w", err)
	}

	if err := os.Rename(tmpPath, profilePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save profile file: %w", err)
	}

	return nil
}

// ReloadRegistry reloads the registry from disk, discarding any in-memory
// changes. Useful for reading changes made by another process.
func ReloadRegistry() (*Registry, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	globalRegistryOnce = sync.Once{}
	return LoadRegistry()
}
