package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Raster   RasterConfig   `yaml:"raster" mapstructure:"raster"`
	Classify ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RasterConfig locates the LCZ raster.
type RasterConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// ClassifyConfig holds the default station-table column names.
type ClassifyConfig struct {
	IDColumn  string `yaml:"id_column" mapstructure:"id_column"`
	LonColumn string `yaml:"lon_column" mapstructure:"lon_column"`
	LatColumn string `yaml:"lat_column" mapstructure:"lat_column"`
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`
}

// FetchConfig configures raster downloads.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutMins int    `yaml:"timeout_mins" mapstructure:"timeout_mins"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// BatchConfig bounds concurrent station files in batch mode.
type BatchConfig struct {
	MaxConcurrentFiles int `yaml:"max_concurrent_files" mapstructure:"max_concurrent_files"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LCZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "runs.db")
	v.SetDefault("classify.id_column", "station_id")
	v.SetDefault("classify.lon_column", "longitude")
	v.SetDefault("classify.lat_column", "latitude")
	v.SetDefault("classify.encoding", "utf-8")
	v.SetDefault("fetch.user_agent", "urban-classifier/1.0")
	v.SetDefault("fetch.timeout_mins", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("batch.max_concurrent_files", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
