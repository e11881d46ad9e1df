package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultBlocklistURL publishes the rogue server address list, one entry per line.
	DefaultBlocklistURL = "https://content.hl2dm.org/spamfilter/RogueIPs.txt"
	DefaultRulePrefix   = "GameSpamFilter"
	DefaultChunkSize    = 200
	DefaultFetchTimeout = 30
)

type Config struct {
	LogLevel            string   `mapstructure:"log_level"`
	LogFormat           string   `mapstructure:"log_format"`
	LogFile             string   `mapstructure:"log_file"`
	BlocklistURL        string   `mapstructure:"blocklist_url"`
	RulePrefix          string   `mapstructure:"rule_prefix"`
	ChunkSize           int      `mapstructure:"chunk_size"`
	FetchTimeoutSeconds int      `mapstructure:"fetch_timeout_seconds"`
	ExtraLibraryRoots   []string `mapstructure:"extra_library_roots"`
	PayloadDir          string   `mapstructure:"payload_dir"`
	VerifyExecutables   bool     `mapstructure:"verify_executables"`
}

func Default() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "console",
		BlocklistURL:        DefaultBlocklistURL,
		RulePrefix:          DefaultRulePrefix,
		ChunkSize:           DefaultChunkSize,
		FetchTimeoutSeconds: DefaultFetchTimeout,
		VerifyExecutables:   true,
	}
}

// FetchTimeout returns the blocklist download timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Load reads cfgFile, or ins2doi.yaml from the user config dir or the
// working directory when cfgFile is empty. A missing default file is not an
// error. INS2DOI_* environment variables override file values.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("blocklist_url", cfg.BlocklistURL)
	v.SetDefault("rule_prefix", cfg.RulePrefix)
	v.SetDefault("chunk_size", cfg.ChunkSize)
	v.SetDefault("fetch_timeout_seconds", cfg.FetchTimeoutSeconds)
	v.SetDefault("extra_library_roots", cfg.ExtraLibraryRoots)
	v.SetDefault("payload_dir", cfg.PayloadDir)
	v.SetDefault("verify_executables", cfg.VerifyExecutables)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ins2doi")
		v.SetConfigType("yaml")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INS2DOI")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, "ins2doi")
}
