package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memdb"
)

// Output formats for CLI listings.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config holds runtime settings for the textkeeper CLI.
//
// An empty DSN with the sqlite backend means the default database file in
// the user config directory.
type Config struct {
	Backend       string        `mapstructure:"backend" json:"backend" yaml:"backend"`
	DSN           string        `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
	PreviewAddr   string        `mapstructure:"preview_addr" json:"preview_addr" yaml:"preview_addr"`
	AutosaveDelay time.Duration `mapstructure:"autosave_delay" json:"autosave_delay" yaml:"autosave_delay"`
	LogLevel      string        `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	LogFormat     string        `mapstructure:"log_format" json:"log_format" yaml:"log_format"`
	Output        string        `mapstructure:"output" json:"output" yaml:"output"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Backend = BackendSQLite
	c.DSN = ""
	c.PreviewAddr = "127.0.0.1:8088"
	c.AutosaveDelay = 1500 * time.Millisecond
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.Output = OutputTable
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(BackendSQLite, BackendPostgres, BackendMemory)),
		validation.Field(&c.DSN,
			validation.When(c.Backend == BackendPostgres, validation.Required)),
		validation.Field(&c.PreviewAddr, validation.Required),
		validation.Field(&c.AutosaveDelay, validation.Required,
			validation.Min(10*time.Millisecond), validation.Max(time.Minute)),
		validation.Field(&c.LogLevel, validation.Required,
			validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.Required,
			validation.In("text", "json")),
		validation.Field(&c.Output, validation.Required,
			validation.In(OutputTable, OutputJSON, OutputYAML)),
	)
}
