// Package config loads undotree settings.
//
// Settings are resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← UNDOTREE_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← .toml, .yaml or .yml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// Command-line flags are applied by the caller on top of the result.
package config
