// Package config holds the viper configuration singleton for the
// plexus CLI.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	// Precedence: project .plexus/config.yaml > ~/.config/plexus/config.yaml
	configFileSet := false

	// Walk up from CWD so commands work from subdirectories.
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".plexus", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "plexus", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file,
	// e.g. PLEXUS_CACHE_SIZE, PLEXUS_LOG_FILE.
	v.SetEnvPrefix("PLEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("personal", false)
	v.SetDefault("cache-size", 100_000)
	v.SetDefault("log-file", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("json", false)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// ensure lazily initializes the singleton so tests can use accessors
// without an explicit Initialize call.
func ensure() *viper.Viper {
	if v == nil {
		_ = Initialize()
	}
	return v
}

// GetBool returns a boolean config value.
func GetBool(key string) bool { return ensure().GetBool(key) }

// GetInt returns an integer config value.
func GetInt(key string) int { return ensure().GetInt(key) }

// GetString returns a string config value.
func GetString(key string) string { return ensure().GetString(key) }

// Set overrides a config value (flag binding and tests).
func Set(key string, value any) { ensure().Set(key, value) }
