package config

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"strings"
	"summarycube/logger"
	"summarycube/storage"
)

const EnvPrefix = "SUMMARYCUBE"

type StoreConfig struct {
	Path      string `mapstructure:"path"`
	InMemory  bool   `mapstructure:"in_memory"`
	ChunkRows int    `mapstructure:"chunk_rows"`
}

type CacheConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	MaxCost int64 `mapstructure:"max_cost"`
}

// QueryConfig restricts the columns a cube query returns. With both lists
// empty every column is returned.
type QueryConfig struct {
	ValidAttrs []string `mapstructure:"valid_attrs"`
	ValidDims  []string `mapstructure:"valid_dims"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Store StoreConfig `mapstructure:"store"`
	Cache CacheConfig `mapstructure:"cache"`
	Query QueryConfig `mapstructure:"query"`
	Log   LogConfig   `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "")
	v.SetDefault("store.in_memory", false)
	v.SetDefault("store.chunk_rows", storage.DefaultChunkRows)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_cost", storage.DefaultCacheConfig().MaxCost)
	v.SetDefault("query.valid_attrs", []string{})
	v.SetDefault("query.valid_dims", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from an optional file and from SUMMARYCUBE_*
// environment variables, e.g. SUMMARYCUBE_STORE_CHUNK_ROWS for
// store.chunk_rows. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.Store.Path == "" && !cfg.Store.InMemory {
		return errors.New("store.path is required unless store.in_memory is set")
	}
	if cfg.Store.ChunkRows <= 0 {
		return errors.Newf("store.chunk_rows must be positive, got %d", cfg.Store.ChunkRows)
	}
	if cfg.Cache.Enabled && cfg.Cache.MaxCost <= 0 {
		return errors.Newf("cache.max_cost must be positive, got %d", cfg.Cache.MaxCost)
	}
	return nil
}

func (cfg *Config) CacheConfig() storage.CacheConfig {
	cache := storage.DefaultCacheConfig()
	cache.MaxCost = cfg.Cache.MaxCost
	return cache
}

func (cfg *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
}
