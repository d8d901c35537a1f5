// Package config manages ambient application settings from defaults, a
// JSON file, and environment variable overrides.
package config
