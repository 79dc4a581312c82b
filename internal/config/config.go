package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/soochak/internal/config/loader"
	"github.com/dshills/soochak/internal/logging"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "SOOCHAK_"

// Config holds soochak's runtime settings.
type Config struct {
	Log LogConfig `toml:"log" yaml:"log"`

	// Manifest is the listener manifest file, TOML or YAML.
	Manifest string `toml:"manifest" yaml:"manifest"`

	Watch WatchConfig `toml:"watch" yaml:"watch"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// WatchConfig configures manifest live reload.
type WatchConfig struct {
	// Debounce is a time.Duration string such as "100ms".
	Debounce string `toml:"debounce" yaml:"debounce"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Watch: WatchConfig{
			Debounce: "100ms",
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	path      string
	envPrefix string
}

// WithPath sets the config file to read.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithFileSystem replaces the OS file system, mainly for tests.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnvPrefix changes the environment variable prefix.
// An empty prefix disables environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// Load resolves defaults, the config file and the environment into a
// validated Config.
func Load(opts ...Option) (Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		envPrefix: EnvPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}

	if o.path != "" {
		l, err := loader.ForPath(o.fs, o.path)
		if err != nil {
			return Config{}, err
		}
		fileMap, err := l.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, fileMap)
	}

	if o.envPrefix != "" {
		envMap, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, envMap)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn or error"}
	}

	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return &ValidationError{Path: "log.format", Value: c.Log.Format, Message: "must be text or json"}
	}

	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return &ValidationError{Path: "watch.debounce", Value: c.Watch.Debounce, Message: err.Error()}
	}
	if d < 0 {
		return &ValidationError{Path: "watch.debounce", Value: c.Watch.Debounce, Message: "must not be negative"}
	}
	return nil
}

// DebounceDuration returns Watch.Debounce parsed, or zero if it is invalid.
func (c Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0
	}
	return d
}

// toMap flattens a Config into the generic form the loaders produce.
func toMap(c Config) (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	m := make(map[string]any)
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	return m, nil
}

// fromMap decodes a merged map back into a Config.
// Every Config leaf is a string, so scalars the loaders typed (an env
// value of "0" or "true", a bare TOML integer) are formatted back first.
func fromMap(m map[string]any) (Config, error) {
	data, err := toml.Marshal(stringLeaves(m))
	if err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// stringLeaves returns a copy of m with every non-map value formatted as a
// string.
func stringLeaves(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case map[string]any:
			out[k] = stringLeaves(v)
		case string:
			out[k] = v
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
