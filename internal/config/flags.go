package config

import (
	"github.com/spf13/pflag"
)

// Flag names, bound to the configuration keys below.
const (
	FlagConfig        = "config"
	FlagBackend       = "backend"
	FlagDSN           = "dsn"
	FlagPreviewAddr   = "preview-addr"
	FlagAutosaveDelay = "autosave-delay"
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
	FlagOutput        = "output"
)

var flagKeys = map[string]string{
	FlagBackend:       "backend",
	FlagDSN:           "dsn",
	FlagPreviewAddr:   "preview_addr",
	FlagAutosaveDelay: "autosave_delay",
	FlagLogLevel:      "log_level",
	FlagLogFormat:     "log_format",
	FlagOutput:        "output",
}

// RegisterFlags adds every configuration flag to fs, using the defaults as
// flag defaults. Only flags that are explicitly set override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.String(FlagBackend, d.Backend, "storage backend: sqlite, postgres or memdb")
	fs.String(FlagDSN, d.DSN, "database file (sqlite) or connection string (postgres)")
	fs.String(FlagPreviewAddr, d.PreviewAddr, "address of the preview server")
	fs.Duration(FlagAutosaveDelay, d.AutosaveDelay, "idle time before a draft is autosaved")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(FlagLogFormat, d.LogFormat, "log format: text or json")
	fs.StringP(FlagOutput, "o", d.Output, "output format: table, json or yaml")
}
