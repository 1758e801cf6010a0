package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/kroget/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	EnvFile    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "kroget", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "kroget")
}

// ToleratesInvalidConfig reports whether the command named by args runs
// against a config that fails validation, so it can report or rewrite it.
func ToleratesInvalidConfig(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "setup", "init", "doctor":
		return true
	case "config":
		return len(args) > 1 && args[1] == "validate"
	}
	return false
}
