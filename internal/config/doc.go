// Package config loads runtime configuration for the textkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (".env" unless Sources.EnvFile says otherwise) holding
//     TEXTKEEPER_* assignments.
//  3. Optional JSON or YAML file selected with -c/--config.
//  4. TEXTKEEPER_* environment variables.
//  5. Command-line flags registered with RegisterFlags.
//
// Later sources override earlier ones. The merged result is validated before
// it is returned.
//
// # File schema
//
// Durations are strings such as "1500ms" or "2s":
//
//	backend: sqlite
//	dsn: /home/me/.config/textkeeper/textkeeper.db
//	preview_addr: 127.0.0.1:8088
//	autosave_delay: 1500ms
//	log_level: info
//	log_format: text
//	output: table
package config
