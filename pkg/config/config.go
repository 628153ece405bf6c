package config

// Package config provides a reusable loader for BrightChain configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"brightchain/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for a BrightChain node. It
// mirrors the structure of the YAML files under cmd/config.
type Config struct {
	Block struct {
		// Size selects the fixed block-size rung this node operates at:
		// one of "tiny", "small", "medium", "large", "huge" (spec.md §2).
		Size string `mapstructure:"size" json:"size"`
	} `mapstructure:"block" json:"block"`

	Pool struct {
		RandomsPerTuple   int `mapstructure:"randoms_per_tuple" json:"randoms_per_tuple"`
		WhitenersPerTuple int `mapstructure:"whiteners_per_tuple" json:"whiteners_per_tuple"`
		MinRandomBlocks   int `mapstructure:"min_random_blocks" json:"min_random_blocks"`
		MaxRandomBlocks   int `mapstructure:"max_random_blocks" json:"max_random_blocks"`
	} `mapstructure:"pool" json:"pool"`

	Storage struct {
		CacheDir     string `mapstructure:"cache_dir" json:"cache_dir"`
		CacheMaxSize int64  `mapstructure:"cache_max_size" json:"cache_max_size"`
	} `mapstructure:"storage" json:"storage"`

	FEC struct {
		Enabled      bool   `mapstructure:"enabled" json:"enabled"`
		ModulePath   string `mapstructure:"module_path" json:"module_path"`
		DataShards   int    `mapstructure:"data_shards" json:"data_shards"`
		ParityShards int    `mapstructure:"parity_shards" json:"parity_shards"`
	} `mapstructure:"fec" json:"fec"`

	Encryption struct {
		ECIESEnabled bool `mapstructure:"ecies_enabled" json:"ecies_enabled"`
	} `mapstructure:"encryption" json:"encryption"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	_ = godotenv.Load() // .env is optional; ignore a missing file

	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the BRIGHTCHAIN_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("BRIGHTCHAIN_ENV", ""))
}
