// Package config loads runtime configuration for the wpk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. The format follows
//     the extension: .json, .toml, or .yaml/.yml.
//  3. The WPK_VAULT_PASSPHRASE environment variable.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   registry database DSN (SQLite path or postgres:// URL)
//	-i int      connectivity check interval (seconds, 0 disables)
//	-l string   log level: debug, info, warn, error
//	-t int      REST request timeout (seconds)
//
// # File schema
//
// Durations use timex.Duration, so they are strings like "30s" (or integer
// nanoseconds in JSON):
//
//	{
//	  "database_dsn": "~/.wpkeeper/wpkeeper.db",
//	  "connectivity_check_interval": "1m",
//	  "request_timeout": "30s",
//	  "rate_limit": 5,
//	  "log_level": "info",
//	  "backup_schedule": "0 3 * * *",
//	  "s3": {"bucket": "wp-backups", "region": "us-east-1", "base_endpoint": "http://127.0.0.1:9000"}
//	}
package config
