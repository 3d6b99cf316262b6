// Package config is a reusable loader for the appliance's configuration
// file and environment overrides, versioned the way pkg/config/config.go
// versions the teacher's own loader so callers can depend on a stable
// API contract.
//
// Version: v0.1.0
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/airgap/signer-appliance/internal/apperr"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the configuration for one appliance process, as loaded by the
// device loop (cmd/appliance). The host packaging tool (cmd/uspack) does
// not read it.
type Config struct {
	Usb struct {
		Dir string `mapstructure:"dir" json:"dir"`
	} `mapstructure:"usb" json:"usb"`

	Se struct {
		StatePath string `mapstructure:"state_path" json:"state_path"`
	} `mapstructure:"se" json:"se"`

	Sandbox struct {
		FuelDeadlineMS int `mapstructure:"fuel_deadline_ms" json:"fuel_deadline_ms"`
		MaxMemoryBytes int `mapstructure:"max_memory_bytes" json:"max_memory_bytes"`
	} `mapstructure:"sandbox" json:"sandbox"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load.
var AppConfig Config

// Default fills in the zero-config values a fresh checkout runs with, so
// Load never fails just because no config file exists yet.
func Default() Config {
	var c Config
	c.Usb.Dir = "./usb-sim"
	c.Se.StatePath = "./se-state.json"
	c.Sandbox.FuelDeadlineMS = 2000
	c.Sandbox.MaxMemoryBytes = 16 * 1024 * 1024
	c.Logging.Level = "info"
	return c
}

// Load reads an optional config file named "appliance.yaml" from the
// given directories (search paths are tried in order; a missing file is
// not an error, matching a fresh install with no file yet) merged over
// Default(), then applies AIRGAP_-prefixed environment overrides.
func Load(searchPaths ...string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigName("appliance")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	if len(searchPaths) == 0 {
		v.AddConfigPath(".")
	}

	// Registering every default explicitly (rather than relying on the
	// zero-valued Config struct alone) is what makes AutomaticEnv below
	// actually reach Unmarshal: viper only resolves an env override for
	// a key it already knows about from some other source.
	v.SetDefault("usb.dir", def.Usb.Dir)
	v.SetDefault("se.state_path", def.Se.StatePath)
	v.SetDefault("sandbox.fuel_deadline_ms", def.Sandbox.FuelDeadlineMS)
	v.SetDefault("sandbox.max_memory_bytes", def.Sandbox.MaxMemoryBytes)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, apperr.Wrap(apperr.UsbIo, err, "load appliance config")
		}
	}

	v.SetEnvPrefix("AIRGAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&AppConfig); err != nil {
		return nil, apperr.Wrap(apperr.UsbIo, err, fmt.Sprintf("unmarshal appliance config from %v", searchPaths))
	}
	return &AppConfig, nil
}
