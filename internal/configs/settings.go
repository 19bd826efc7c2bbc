package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override the XDG locations.
const (
	ConfigDirEnv = "TACT_CONFIG_DIR"
	DataDirEnv   = "TACT_DATA_DIR"
)

// File names inside the settings directories.
const (
	ConfigFileName   = "config.toml"
	DatabaseFileName = "tact.db"
	AuditFileName    = "audit.jsonl"
)

// UserSettings locates tact's files on this machine.
type UserSettings struct {
	// ConfigPath holds config.toml.
	ConfigPath string

	// DataPath holds the record database and the audit log.
	DataPath string
}

// ConfigFile is the path of config.toml.
func (s *UserSettings) ConfigFile() string {
	return filepath.Join(s.ConfigPath, ConfigFileName)
}

// DatabaseFile is the path of the record database.
func (s *UserSettings) DatabaseFile() string {
	return filepath.Join(s.DataPath, DatabaseFileName)
}

// AuditFile is the path of the audit log.
func (s *UserSettings) AuditFile() string {
	return filepath.Join(s.DataPath, AuditFileName)
}

// UserTactSettings is resolved once at startup. Tests point it at
// temporary directories.
var UserTactSettings *UserSettings

func init() {
	settings, err := ResolveSettings()
	if err != nil {
		// Leave paths relative to the working directory rather than
		// failing before a command has a chance to report the problem.
		settings = &UserSettings{ConfigPath: ".tact", DataPath: ".tact"}
	}
	UserTactSettings = settings
}

// ResolveSettings computes the config and data directories from the
// environment. TACT_CONFIG_DIR and TACT_DATA_DIR win; otherwise the XDG
// base directories are used.
func ResolveSettings() (*UserSettings, error) {
	configDir := os.Getenv(ConfigDirEnv)
	if configDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("error getting config directory: %w", err)
		}
		configDir = filepath.Join(base, "tact")
	}

	dataDir := os.Getenv(DataDirEnv)
	if dataDir == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("error getting home directory: %w", err)
			}
			base = filepath.Join(homeDir, ".local", "share")
		}
		dataDir = filepath.Join(base, "tact")
	}

	return &UserSettings{ConfigPath: configDir, DataPath: dataDir}, nil
}
