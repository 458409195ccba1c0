// Package config provides layered configuration for blockstorm.
//
// # Architecture
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Arguments  │  ← Highest priority (Config.Set)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← BLOCKSTORM_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← blockstorm.toml / blockstorm.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment loaders
//   - layer: layer management and merging
//
// # Basic Usage
//
//	cfg := config.New(config.WithFile("blockstorm.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//
//	editor := cfg.Editor()
//	e := engine.New(
//	    engine.WithVoidTypes(editor.VoidTypes...),
//	    engine.WithMaxChanges(editor.MaxChanges),
//	)
//
// # Settings
//
//	editor.voidTypes         []string  element types without editable content
//	editor.inlineTypes       []string  element types that are not blocks
//	editor.maxChanges        int       operation log capacity
//	blocks.idFormat          string    "uuid" or "compact"
//	logging.level            string    "debug", "info", "warn" or "error"
//	lua.instructionLimit     int       host calls per script run, 0 = unlimited
//	lua.timeout              duration  script run timeout, 0 = none
//
// Section accessors never fail: a value of the wrong type falls back to the
// default and is recorded in ConfigErrors. Load validates the merged
// settings and reports every problem at once.
package config
