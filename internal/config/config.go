package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Interest InterestConfig
	UI       UIConfig
	Log      LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// InterestConfig holds debt-engine defaults applied when flags are omitted.
// The mapstructure tags bind the underscore config keys; without them
// multiword fields unmarshal to zero values.
type InterestConfig struct {
	CategoryName  string  `mapstructure:"category_name"`
	DefaultScheme string  `mapstructure:"default_scheme"`
	DefaultAPR    float64 `mapstructure:"default_apr"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and env. Env var overrides use prefix DEBTSENSE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "debtsense", "debtsense.db"))
	v.SetDefault("interest.category_name", "Interest & Fees")
	v.SetDefault("interest.default_scheme", "compound_monthly")
	v.SetDefault("interest.default_apr", 0.0)
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("DEBTSENSE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "debtsense"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DEBTSENSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("DEBTSENSE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "debtsense", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("interest.category_name", cfg.Interest.CategoryName)
	v.Set("interest.default_scheme", cfg.Interest.DefaultScheme)
	v.Set("interest.default_apr", cfg.Interest.DefaultAPR)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
