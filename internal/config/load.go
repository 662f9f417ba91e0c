package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "TEXTKEEPER"

// DefaultEnvFile is the dotenv file looked up when Sources.EnvFile is empty.
const DefaultEnvFile = ".env"

// Sources selects where LoadConfig reads from. The zero value reads defaults,
// ./.env and the environment.
type Sources struct {
	// ConfigFile is a JSON or YAML file. When empty the --config flag is
	// consulted.
	ConfigFile string
	EnvFile    string
	Flags      *pflag.FlagSet
}

// LoadConfig builds a Config by layering defaults, the dotenv file, the config
// file, TEXTKEEPER_* variables and flags, then validates it.
func LoadConfig(src Sources) (*Config, error) {
	v := viper.New()

	var d Config
	d.LoadDefaults()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("dsn", d.DSN)
	v.SetDefault("preview_addr", d.PreviewAddr)
	v.SetDefault("autosave_delay", d.AutosaveDelay)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("output", d.Output)

	if err := mergeEnvFile(v, src.EnvFile); err != nil {
		return nil, err
	}

	file := src.ConfigFile
	if file == "" && src.Flags != nil {
		if f := src.Flags.Lookup(FlagConfig); f != nil {
			file = f.Value.String()
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if src.Flags != nil {
		for name, key := range flagKeys {
			f := src.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.Output = strings.ToLower(cfg.Output)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// mergeEnvFile reads TEXTKEEPER_* assignments from a dotenv file into the
// config layer. A missing file is not an error.
func mergeEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	values := make(map[string]any)
	prefix := EnvPrefix + "_"
	for k, val := range vars {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		values[strings.ToLower(strings.TrimPrefix(k, prefix))] = val
	}
	if len(values) == 0 {
		return nil
	}
	return v.MergeConfigMap(values)
}
