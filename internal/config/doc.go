// Package config provides configuration management for splitmix.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - SPLITMIX_* overrides from the environment and .env files
//   - The session metadata a fetch hands to the following split
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Exports to ~/Music/splitmix/{artist}/{album}
//	// 320 kbps MP3, best-effort runs, ID3 tagging enabled
//
// # Loading
//
//	settings, err := config.Load(config.DefaultPath())
//	env, err := config.LoadEnv(".env")
//	err = settings.ApplyEnv(env)
//
// Command line flags are applied last and win over both.
package config
