package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"pinlist/pkg/keymaps"
)

// Config holds the application configuration
type Config struct {
	Database          DatabaseConfig    `mapstructure:"database"`
	DefaultCategories []string          `mapstructure:"default_categories"`
	CascadeUnpin      bool              `mapstructure:"cascade_unpin"`
	LogDir            string            `mapstructure:"log_dir"`
	KeyMap            map[string]string `mapstructure:"keymap"`
	Styles            Styles            `mapstructure:"styles"`
}

// DatabaseConfig selects the durable store
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `mapstructure:"border_color"`
	AccentColor string `mapstructure:"accent_color"`

	// Text colors
	NormalTextColor   string `mapstructure:"normal_text_color"`
	SelectedTextColor string `mapstructure:"selected_text_color"`
	SelectedBgColor   string `mapstructure:"selected_bg_color"`
	ErrorColor        string `mapstructure:"error_color"`

	// Task decoration colors
	CategoryColor string `mapstructure:"category_color"`
	PinnedColor   string `mapstructure:"pinned_color"`
	HighColor     string `mapstructure:"high_color"`
	MediumColor   string `mapstructure:"medium_color"`
	LowColor      string `mapstructure:"low_color"`
}

// EnvPrefix prefixes environment overrides, e.g. PINLIST_DATABASE_DRIVER
const EnvPrefix = "PINLIST"

// Dir returns the directory holding the config file and the default database
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "pinlist"), nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", filepath.Join(configDir, "pinlist.db"))
	v.SetDefault("default_categories", []string{"Personal", "Urgent"})
	v.SetDefault("cascade_unpin", false)
	v.SetDefault("log_dir", os.TempDir())
	v.SetDefault("keymap", keymaps.GetDefaultKeyMappings())

	v.SetDefault("styles.border_color", "240")
	v.SetDefault("styles.accent_color", "205")
	v.SetDefault("styles.normal_text_color", "86")
	v.SetDefault("styles.selected_text_color", "229")
	v.SetDefault("styles.selected_bg_color", "57")
	v.SetDefault("styles.error_color", "9")
	v.SetDefault("styles.category_color", "4")
	v.SetDefault("styles.pinned_color", "214")
	v.SetDefault("styles.high_color", "196")
	v.SetDefault("styles.medium_color", "220")
	v.SetDefault("styles.low_color", "2")
}

// Load reads the configuration from configPath, or from ~/.config/pinlist/config.json
// when configPath is empty. A missing file is created with the defaults.
// Environment variables prefixed with PINLIST_ override file values.
func Load(configPath string) (Config, error) {
	configDir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	if configPath == "" {
		configPath = filepath.Join(configDir, "config.json")
	}

	v := viper.New()
	setDefaults(v, configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
		// Config file not found, create it from the defaults only
		if err := writeDefaults(configPath, configDir); err != nil {
			return Config{}, fmt.Errorf("write default config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func writeDefaults(configPath, configDir string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	d := viper.New()
	setDefaults(d, configDir)
	return d.WriteConfigAs(configPath)
}
