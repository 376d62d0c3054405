// Package config loads smlite settings from flags, environment variables
// (SMLITE_ prefix) and an optional smlite.toml file, and builds the logger
// they describe.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Keys shared by the CLI flags and the config file.
const (
	KeyDatabasePath = "database.path"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
)

const (
	DefaultDatabasePath = "smlite.db"
	EnvPrefix           = "SMLITE"
	configName          = "smlite"
)

// Config is the resolved configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment binding set up.
// SMLITE_DATABASE_PATH overrides database.path, and so on.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads cfgFile, or smlite.toml from the working directory when cfgFile
// is empty, and resolves the configuration. A missing default file is not an
// error; a missing explicit file is.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(configName)
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return nil, fmt.Errorf("config: %s is required", KeyDatabasePath)
	}
	return &c, nil
}

// Logger builds a slog logger writing to w at the configured level and
// format ("text" or "json").
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("config: %s: %w", KeyLogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Log.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("config: unsupported %s %q (want text or json)", KeyLogFormat, c.Log.Format)
	}
}
