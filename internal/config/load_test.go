package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(Sources{EnvFile: noEnvFile(t)})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", "backend: memdb\npreview_addr: 0.0.0.0:9000\nautosave_delay: 2s\noutput: yaml\n")

	cfg, err := LoadConfig(Sources{ConfigFile: path, EnvFile: noEnvFile(t)})
	require.NoError(t, err)

	want := defaults()
	want.Backend = BackendMemory
	want.PreviewAddr = "0.0.0.0:9000"
	want.AutosaveDelay = 2 * time.Second
	want.Output = OutputYAML
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_JSONFile(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"dsn": "/tmp/notes.db", "log_level": "DEBUG", "log_format": "json"}`)

	cfg, err := LoadConfig(Sources{ConfigFile: path, EnvFile: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes.db", cfg.DSN)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_Precedence(t *testing.T) {
	envFile := writeTemp(t, ".env", "TEXTKEEPER_PREVIEW_ADDR=dotenv:1\nTEXTKEEPER_LOG_LEVEL=info\nTEXTKEEPER_OUTPUT=json\nOTHER=x\n")
	cfgFile := writeTemp(t, "cfg.yaml", "preview_addr: file:2\nlog_level: error\n")
	t.Setenv("TEXTKEEPER_PREVIEW_ADDR", "env:3")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--autosave-delay", "250ms"}))

	cfg, err := LoadConfig(Sources{ConfigFile: cfgFile, EnvFile: envFile, Flags: fs})
	require.NoError(t, err)

	assert.Equal(t, "env:3", cfg.PreviewAddr, "env beats file and dotenv")
	assert.Equal(t, "error", cfg.LogLevel, "file beats dotenv")
	assert.Equal(t, OutputJSON, cfg.Output, "dotenv beats defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.AutosaveDelay, "flag set explicitly")
	assert.Equal(t, BackendSQLite, cfg.Backend, "unset flag keeps default")
}

func TestLoadConfig_FlagBeatsEnv(t *testing.T) {
	t.Setenv("TEXTKEEPER_BACKEND", "postgres")
	t.Setenv("TEXTKEEPER_DSN", "postgres://env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--backend", "memdb", "-o", "yaml"}))

	cfg, err := LoadConfig(Sources{EnvFile: noEnvFile(t), Flags: fs})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "postgres://env", cfg.DSN)
	assert.Equal(t, OutputYAML, cfg.Output)
}

func TestLoadConfig_ConfigFlag(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", "backend: memdb\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-c", path}))

	cfg, err := LoadConfig(Sources{EnvFile: noEnvFile(t), Flags: fs})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, err := LoadConfig(Sources{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"), EnvFile: noEnvFile(t)})
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTemp(t, "bad.yaml", "backend: [unterminated\n")
		_, err := LoadConfig(Sources{ConfigFile: path, EnvFile: noEnvFile(t)})
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("TEXTKEEPER_OUTPUT", "xml")
		_, err := LoadConfig(Sources{EnvFile: noEnvFile(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})
}
