package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/moyu-x/doc-renamer/internal"
)

type Config struct {
	Ledger struct {
		Backend  string `mapstructure:"backend"`
		Path     string `mapstructure:"path"`
		Database string `mapstructure:"database"`
	} `mapstructure:"ledger"`
	Naming struct {
		MaxLength   int `mapstructure:"max_length"`
		MaxAttempts int `mapstructure:"max_attempts"`
	} `mapstructure:"naming"`
	Extract struct {
		Workers  int `mapstructure:"workers"`
		MaxChars int `mapstructure:"max_chars"`
	} `mapstructure:"extract"`
	Scanner struct {
		Recursive     bool `mapstructure:"recursive"`
		IncludeHidden bool `mapstructure:"include_hidden"`
	} `mapstructure:"scanner"`
	Logging struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"logging"`
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var cfg Config

// SetDefaults 写入默认配置
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ledger.backend", BackendFile)
	v.SetDefault("ledger.path", "")
	v.SetDefault("ledger.database", internal.DefaultDatabasePath)
	v.SetDefault("naming.max_length", internal.DefaultMaxNameLength)
	v.SetDefault("naming.max_attempts", internal.DefaultMaxAttempts)
	v.SetDefault("extract.workers", internal.DefaultWorkers)
	v.SetDefault("extract.max_chars", internal.DefaultMaxTitleChars)
	v.SetDefault("scanner.recursive", true)
	v.SetDefault("scanner.include_hidden", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom 从指定的 viper 实例读取配置，便于测试
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("$HOME/.doc-renamer")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/doc-renamer")

	v.SetEnvPrefix("DOC_RENAMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if c.Extract.Workers <= 0 {
		c.Extract.Workers = internal.DefaultWorkers
	}
	if c.Naming.MaxLength <= 0 {
		c.Naming.MaxLength = internal.DefaultMaxNameLength
	}
	if c.Extract.MaxChars <= 0 {
		c.Extract.MaxChars = internal.DefaultMaxTitleChars
	}

	cfg = c
	return &cfg, nil
}

func Get() *Config {
	return &cfg
}
