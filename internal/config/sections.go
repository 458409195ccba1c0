package config

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// to update configuration values.

// EditorConfig provides type-safe access to document engine settings.
type EditorConfig struct {
	// VoidTypes are element types whose content is not editable.
	VoidTypes []string

	// InlineTypes are element types that never count as blocks.
	InlineTypes []string

	// MaxChanges bounds the operation log kept for change tracking.
	MaxChanges int
}

// BlocksConfig provides type-safe access to block plugin settings.
type BlocksConfig struct {
	// IDFormat selects the identifier generator ("uuid" or "compact").
	IDFormat string
}

// LoggingConfig provides type-safe access to logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string
}

// ZapLevel parses Level.
func (l LoggingConfig) ZapLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(l.Level)
}

// LuaConfig provides type-safe access to scripting settings.
type LuaConfig struct {
	// InstructionLimit caps host calls per run. Zero disables the cap.
	InstructionLimit int

	// Timeout caps the wall time of a run. Zero disables the timeout.
	Timeout time.Duration
}

// Editor returns the document engine configuration section.
func (c *Config) Editor() EditorConfig {
	return EditorConfig{
		VoidTypes:   c.getStringSliceOr("editor.voidTypes", []string{"image", "divider"}),
		InlineTypes: c.getStringSliceOr("editor.inlineTypes", []string{"link", "mention"}),
		MaxChanges:  c.getIntOr("editor.maxChanges", 10000),
	}
}

// Blocks returns the block plugin configuration section.
func (c *Config) Blocks() BlocksConfig {
	return BlocksConfig{
		IDFormat: c.getStringOr("blocks.idFormat", "uuid"),
	}
}

// Logging returns the logging configuration section.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.getStringOr("logging.level", "info"),
	}
}

// Lua returns the scripting configuration section.
func (c *Config) Lua() LuaConfig {
	return LuaConfig{
		InstructionLimit: c.getIntOr("lua.instructionLimit", 10_000_000),
		Timeout:          c.getDurationOr("lua.timeout", 5*time.Second),
	}
}

// Helper methods for getting values with defaults.
// These methods only return the default for ErrSettingNotFound.
// Type errors are recorded and return the default to avoid breaking callers,
// but indicate a configuration problem that should be fixed.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	v, err := c.GetDuration(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getStringSliceOr(path string, defaultValue []string) []string {
	v, err := c.GetStringSlice(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		result := make([]string, len(defaultValue))
		copy(result, defaultValue)
		return result
	}
	result := make([]string, len(v))
	copy(result, v)
	return result
}

// recordConfigError stores configuration errors for later retrieval.
// Only the first error for each path is recorded.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

// ConfigErrors returns any configuration errors encountered during access.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	result := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		result[k] = v
	}
	return result
}

// ClearConfigErrors clears any stored configuration errors.
func (c *Config) ClearConfigErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configErrors = nil
}
