// Package config loads runtime configuration for the field client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "vinscanner.db",
//	  "online_check_interval": "3s",
//	  "debounce_window": "1s",
//	  "sync_interval": "5m",
//	  "status_reset_delay": "3s",
//	  "http_addr": "127.0.0.1:8088"
//	}
//
// This package does not read environment variables.
package config
