// Package config loads soochak's runtime settings.
//
// Settings are resolved in layers, each overriding the one below:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← SOOCHAK_LOG_LEVEL, SOOCHAK_MANIFEST, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← soochak.toml or soochak.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The file format is picked by extension. A missing file is not an error;
// the defaults and environment still apply.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.WithPath("soochak.toml"))
//	if err != nil {
//	    return err
//	}
//	debounce := cfg.DebounceDuration()
package config
