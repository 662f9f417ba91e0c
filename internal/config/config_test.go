package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, BackendSQLite, c.Backend)
	assert.Equal(t, "", c.DSN)
	assert.Equal(t, "127.0.0.1:8088", c.PreviewAddr)
	assert.Equal(t, 1500*time.Millisecond, c.AutosaveDelay)
	assert.Equal(t, OutputTable, c.Output)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults ok", mutate: func(*Config) {}},
		{name: "memdb ok", mutate: func(c *Config) { c.Backend = BackendMemory }},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "mysql" }, wantErr: "backend"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Backend = BackendPostgres }, wantErr: "dsn"},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.Backend = BackendPostgres
			c.DSN = "postgres://localhost/textkeeper"
		}},
		{name: "delay too short", mutate: func(c *Config) { c.AutosaveDelay = time.Millisecond }, wantErr: "autosave_delay"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "log_level"},
		{name: "bad output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: "output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
