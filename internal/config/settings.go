package config

import (
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
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Settings are the interpreter and tool options shared by the CLI and the
// embedding API.
type Settings struct {
	RecursionLimit int      `koanf:"recursion_limit"`
	IgnoreOverflow bool     `koanf:"ignore_overflow"`
	LogLevel       string   `koanf:"log_level"`
	Color          string   `koanf:"color"`
	HistoryFile    string   `koanf:"history_file"`
	Prompt         string   `koanf:"prompt"`
	Paths          []string `koanf:"paths"`

	// File is the settings file that was read, if any.
	File string `koanf:"-"`
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() *Settings {
	return &Settings{
		RecursionLimit: DefaultRecursionLimit,
		LogLevel:       "warn",
		Color:          ColorAuto,
		HistoryFile:    defaultHistoryPath(),
		Prompt:         DefaultPrompt,
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultHistoryFile
	}
	return filepath.Join(home, DefaultHistoryFile)
}

// LoadSettings reads settings from defaults, a YAML file, QUILL_*
// environment variables and flags.
// Precedence (highest to lowest): flags > env vars > settings file > defaults
//
// cfgFile names the settings file explicitly; when empty, quill.yaml in the
// working directory is used if it exists. flags may be nil.
func LoadSettings(cfgFile string, flags *pflag.FlagSet) (*Settings, error) {
	k := koanf.New(".")
	defaults := DefaultSettings()

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"recursion_limit": defaults.RecursionLimit,
		"ignore_overflow": defaults.IgnoreOverflow,
		"log_level":       defaults.LogLevel,
		"color":           defaults.Color,
		"history_file":    defaults.HistoryFile,
		"prompt":          defaults.Prompt,
		"paths":           []string{},
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Settings file
	used := findSettingsFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", used, err)
		}
	}

	// 3. Environment: QUILL_RECURSION_LIMIT -> recursion_limit
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	s.File = used
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func findSettingsFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultSettingsFile); err == nil {
		return DefaultSettingsFile
	}
	return ""
}

// Validate checks the settings for values the interpreter cannot use.
func (s *Settings) Validate() error {
	if s.RecursionLimit <= 0 {
		return fmt.Errorf("recursion_limit must be positive, got %d", s.RecursionLimit)
	}
	if s.RecursionLimit > HardRecursionLimit {
		return fmt.Errorf("recursion_limit must not exceed %d, got %d", HardRecursionLimit, s.RecursionLimit)
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	switch s.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always, never, got %q", s.Color)
	}
	return nil
}

// ParseLogLevel maps a level name to its slog level.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}
