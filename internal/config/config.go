package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Twitter TwitterConfig `yaml:"twitter" mapstructure:"twitter"`
	Collect CollectConfig `yaml:"collect" mapstructure:"collect"`
	Network NetworkConfig `yaml:"network" mapstructure:"network"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the local datasets.
type DataConfig struct {
	// Database is the NELA sqlite database with newsdata and tweet
	// tables.
	Database string `yaml:"database" mapstructure:"database"`
	// Labels is the source credibility/bias table.
	Labels string `yaml:"labels" mapstructure:"labels"`
	// UserData is the combined handle-keyed profile cache.
	UserData string `yaml:"user_data" mapstructure:"user_data"`
}

// TwitterConfig holds API credentials.
type TwitterConfig struct {
	BearerToken string `yaml:"bearer_token" mapstructure:"bearer_token"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
}

// CollectConfig configures profile and follow collection.
type CollectConfig struct {
	OutDir          string        `yaml:"out_dir" mapstructure:"out_dir"`
	BatchSize       int           `yaml:"batch_size" mapstructure:"batch_size"`
	Cooldown        time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
	CheckpointDB    string        `yaml:"checkpoint_db" mapstructure:"checkpoint_db"`
}

// NetworkConfig carries the graph-builder defaults; flags override them
// per invocation.
type NetworkConfig struct {
	Metric         string   `yaml:"metric" mapstructure:"metric"`
	Scaling        bool     `yaml:"scaling" mapstructure:"scaling"`
	Alpha          float64  `yaml:"alpha" mapstructure:"alpha"`
	MinDegree      int      `yaml:"min_degree" mapstructure:"min_degree"`
	ExcludeAuthors []string `yaml:"exclude_authors" mapstructure:"exclude_authors"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from citegraph.yaml (optional) and the
// CITEGRAPH_* environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("citegraph")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/citegraph")

	// Environment
	v.SetEnvPrefix("CITEGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.labels", "data/labels.csv")
	v.SetDefault("data.user_data", "user_data/user_data.json")
	v.SetDefault("twitter.base_url", "https://api.twitter.com/2")
	v.SetDefault("collect.out_dir", "user_data")
	v.SetDefault("collect.batch_size", 100)
	v.SetDefault("collect.cooldown", 15*time.Minute)
	v.SetDefault("collect.checkpoint_db", "citegraph.db")
	v.SetDefault("network.metric", "probabilistic")
	v.SetDefault("network.alpha", 1.0)
	v.SetDefault("network.min_degree", 5)

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
