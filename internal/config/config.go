package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/blockstorm/internal/config/layer"
	"github.com/dshills/blockstorm/internal/config/loader"
)

// Layer names.
const (
	LayerDefaults    = "defaults"
	LayerFile        = "file"
	LayerEnvironment = "environment"
	LayerArguments   = "arguments"
)

// Config provides unified access to the blockstorm configuration.
type Config struct {
	mu sync.RWMutex

	layers *layer.Manager

	file      string
	fs        loader.FileSystem
	envPrefix string

	// configErrors stores errors encountered during section access.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the config file. Its extension selects TOML or YAML.
func WithFile(path string) Option {
	return func(c *Config) {
		c.file = path
	}
}

// WithFileSystem sets the file system the config file is read from.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvPrefix sets the environment variable prefix. The empty prefix
// disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// New creates a Config holding only the built-in defaults.
func New(opts ...Option) *Config {
	c := &Config{
		layers:    layer.NewManager(),
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.layers.AddLayer(layer.NewLayer(LayerDefaults, layer.SourceBuiltin, defaultConfig()))
	return c
}

// Load reads the config file and the environment, then validates the
// merged settings.
func (c *Config) Load(_ context.Context) error {
	c.mu.Lock()
	if err := c.loadFile(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.loadEnvironment(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	return c.Validate()
}

// loadFile loads the config file layer (must hold write lock).
func (c *Config) loadFile() error {
	if c.file == "" {
		return nil
	}
	l, err := loader.ForPath(c.fs, c.file)
	if err != nil {
		return err
	}
	data, err := l.Load()
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, c.file)
	}

	fileLayer := layer.NewLayer(LayerFile, layer.SourceFile, data)
	fileLayer.Path = c.file
	c.layers.AddLayer(fileLayer)
	return nil
}

// loadEnvironment loads the environment layer (must hold write lock).
func (c *Config) loadEnvironment() error {
	if c.envPrefix == "" {
		return nil
	}
	data, err := loader.NewEnvLoader(c.envPrefix).Load()
	if err != nil {
		return err
	}
	if len(data) > 0 {
		c.layers.AddLayer(layer.NewLayer(LayerEnvironment, layer.SourceEnv, data))
	}
	return nil
}

// File returns the config file path, if any.
func (c *Config) File() string {
	return c.file
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, _, ok := c.layers.Get(path)
	return v, ok
}

// Source returns the name of the layer providing path, or "".
func (c *Config) Source(path string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.WhichLayer(path)
}

// Set overrides a value in the arguments layer.
func (c *Config) Set(path string, value any) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrSettingNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.layers.GetLayer(LayerArguments) == nil {
		c.layers.AddLayer(layer.NewLayer(LayerArguments, layer.SourceArgs, nil))
	}
	return c.layers.Set(LayerArguments, path, value)
}

// Merged returns the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Merge()
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, &TypeError{Path: path, Expected: "int", Actual: "float64"}
		}
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetStringSlice returns a string slice at the given path.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, ErrSettingNotFound
	}

	switch val := v.(type) {
	case []string:
		return val, nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
	}
}

// GetDuration returns a duration at the given path. Strings are parsed
// with time.ParseDuration.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("string %q", val)}
		}
		return d, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"voidTypes":   []any{"image", "divider"},
			"inlineTypes": []any{"link", "mention"},
			"maxChanges":  10000,
		},
		"blocks": map[string]any{
			"idFormat": "uuid",
		},
		"logging": map[string]any{
			"level": "info",
		},
		"lua": map[string]any{
			"instructionLimit": 10_000_000,
			"timeout":          "5s",
		},
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	case time.Duration:
		return "duration"
	default:
		return fmt.Sprintf("%T", v)
	}
}
