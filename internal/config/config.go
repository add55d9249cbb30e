package config

import (
	"fmt"
	"os"
	"strings"
	"ttyscreen/internal/text"
	"ttyscreen/internal/tty"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "TTYSCREEN"

type Config struct {
	LogPath     string `mapstructure:"log-path"`
	LogLevel    string `mapstructure:"log-level"`
	Device      string `mapstructure:"device"`
	ModeBackend string `mapstructure:"mode-backend"`
	Color       string `mapstructure:"color"`

	level zerolog.Level
	accent text.Style
}

// RegisterFlags adds every configuration key to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("log-path", "", "write logs to this file (default: discard)")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.String("device", tty.DefaultDevice, "terminal device to open")
	flags.String("mode-backend", "stty", "terminal mode backend: stty or native")
	flags.String("color", "cyan", "status line accent: a color, fg_bg pair, inverse or reset")
}

// Load resolves flags, then TTYSCREEN_* environment variables, then defaults.
func Load(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-path", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("device", tty.DefaultDevice)
	v.SetDefault("mode-backend", "stty")
	v.SetDefault("color", "cyan")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) validate() error {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log-level: %w", err)
	}

	c.level = level

	accent, err := text.ParseStyle(c.Color)
	if err != nil {
		return fmt.Errorf("color: %w", err)
	}

	c.accent = accent

	switch c.ModeBackend {
	case "stty", "native":
	default:
		return fmt.Errorf("mode-backend must be 'stty' or 'native', got %q", c.ModeBackend)
	}

	return nil
}

func (c *Config) Level() zerolog.Level {
	return c.level
}

func (c *Config) Accent() text.Style {
	return c.accent
}

// ModeRunner returns nil for stty so tty.Open can fall back to native modes
// when stty is missing.
func (c *Config) ModeRunner() tty.ModeRunner {
	if c.ModeBackend == "native" {
		return tty.NewNative()
	}

	return nil
}

// OpenLog returns the log destination, the null device when no path is set.
func (c *Config) OpenLog() (*os.File, error) {
	if c.LogPath == "" {
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", os.DevNull, err)
		}

		return f, nil
	}

	f, err := os.OpenFile(c.LogPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return f, nil
}
