// Package config loads paychain settings from defaults, an optional JSON
// config file and PAYCHAIN_* environment variables, in that order of
// precedence. Command-line flags are merged on top with Config.Merge.
package config
