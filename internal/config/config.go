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
	Layers   LayersConfig   `yaml:"layers" mapstructure:"layers"`
	Match    MatchConfig    `yaml:"match" mapstructure:"match"`
	Neighbor NeighborConfig `yaml:"neighbor" mapstructure:"neighbor"`
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// LayersConfig configures layer loading defaults.
type LayersConfig struct {
	NameField string `yaml:"name_field" mapstructure:"name_field"`
	CodeField string `yaml:"code_field" mapstructure:"code_field"`
	XColumn   string `yaml:"x_column" mapstructure:"x_column"`
	YColumn   string `yaml:"y_column" mapstructure:"y_column"`
	SRID      int    `yaml:"srid" mapstructure:"srid"`
}

// MatchConfig configures the point-to-region matcher.
type MatchConfig struct {
	// Ambiguous selects the policy for points claimed by more than one
	// region: "fail" or "first".
	Ambiguous string `yaml:"ambiguous" mapstructure:"ambiguous"`
}

// NeighborConfig configures the adjacency builder.
type NeighborConfig struct {
	K           int     `yaml:"k" mapstructure:"k"`
	MinDistance float64 `yaml:"min_distance" mapstructure:"min_distance"`
	MaxDistance float64 `yaml:"max_distance" mapstructure:"max_distance"`
	Contiguity  string  `yaml:"contiguity" mapstructure:"contiguity"`
}

// RenderConfig configures plot output.
type RenderConfig struct {
	OutputDir string  `yaml:"output_dir" mapstructure:"output_dir"`
	Format    string  `yaml:"format" mapstructure:"format"`
	WidthIn   float64 `yaml:"width_in" mapstructure:"width_in"`
	HeightIn  float64 `yaml:"height_in" mapstructure:"height_in"`
}

// FetchConfig configures shapefile downloads.
type FetchConfig struct {
	TempDir        string  `yaml:"temp_dir" mapstructure:"temp_dir"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// StoreConfig configures the optional run store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.SetConfigName("spatial")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SPATIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("layers.name_field", "NAME")
	v.SetDefault("layers.code_field", "GEOID")
	v.SetDefault("layers.x_column", "longitude")
	v.SetDefault("layers.y_column", "latitude")
	v.SetDefault("layers.srid", 4326)
	v.SetDefault("match.ambiguous", "fail")
	v.SetDefault("neighbor.k", 3)
	v.SetDefault("neighbor.min_distance", 0)
	v.SetDefault("neighbor.max_distance", 700)
	v.SetDefault("neighbor.contiguity", "queen")
	v.SetDefault("render.output_dir", "plots")
	v.SetDefault("render.format", "png")
	v.SetDefault("render.width_in", 10)
	v.SetDefault("render.height_in", 10)
	v.SetDefault("fetch.temp_dir", "/tmp/spatial")
	v.SetDefault("fetch.timeout_secs", 600)
	v.SetDefault("fetch.requests_per_sec", 2)
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
