// Package config loads quill settings from defaults, a quill.yaml file,
// QUILL_* environment variables and command-line flags.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"quill/internal/lint"
)

// EnvPrefix marks environment variables that map onto config keys:
// QUILL_LOG_LEVEL -> log_level.
const EnvPrefix = "QUILL_"

// Output formats for console records.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputLog  = "log"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// LintConfig toggles the warning-level checks.
type LintConfig struct {
	Shadowing bool `koanf:"shadowing"`
	Unused    bool `koanf:"unused"`
}

// Config holds all CLI configuration options.
type Config struct {
	Output      string     `koanf:"output"`
	Color       string     `koanf:"color"`
	LogLevel    string     `koanf:"log_level"`
	Trace       bool       `koanf:"trace"`
	HistoryFile string     `koanf:"history_file"`
	Lint        LintConfig `koanf:"lint"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Defaults returns the lowest-precedence layer.
func Defaults() map[string]any {
	history := ".quill_history"
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".quill_history")
	}
	return map[string]any{
		"output":         OutputText,
		"color":          ColorAuto,
		"log_level":      "warn",
		"trace":          false,
		"history_file":   history,
		"lint.shadowing": true,
		"lint.unused":    true,
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > quill.yaml > quill.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"quill.yaml", "quill.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds a Config. Precedence (highest to lowest): flags > env vars >
// config file > defaults. Only flags the user changed take part.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "config":
				return "", nil
			case "debug":
				// --debug is shorthand for log_level=debug.
				if on, _ := flags.GetBool("debug"); on {
					return "log_level", "debug"
				}
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated keys.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON, OutputLog:
	default:
		return fmt.Errorf("invalid output %q: want text, json or log", c.Output)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q: want auto, always or never", c.Color)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return lvl, nil
}

// Level is the configured slog level; Validate has already accepted it.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// LintOptions converts the lint section for the checker.
func (c *Config) LintOptions() lint.Options {
	return lint.Options{
		CheckShadowing: c.Lint.Shadowing,
		CheckUnused:    c.Lint.Unused,
	}
}

type loggerKey struct{}
type configKey struct{}

// WithLogger stores the command logger in ctx.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores the loaded config in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the loaded config, or nil before the root command ran.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configKey{}).(*Config)
	return cfg
}
