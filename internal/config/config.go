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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Geocoder  GeocoderConfig  `yaml:"geocoder" mapstructure:"geocoder"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GeocoderConfig holds per-backend credentials and the fallback order.
type GeocoderConfig struct {
	Order              string `yaml:"order" mapstructure:"order"`
	NominatimURL       string `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	NominatimUserAgent string `yaml:"nominatim_user_agent" mapstructure:"nominatim_user_agent"`
	NominatimMinGapMS  int    `yaml:"nominatim_min_gap_ms" mapstructure:"nominatim_min_gap_ms"`
	LocationIQKey      string `yaml:"locationiq_key" mapstructure:"locationiq_key"`
	OpenCageKey        string `yaml:"opencage_key" mapstructure:"opencage_key"`
	HereAPIKey         string `yaml:"here_api_key" mapstructure:"here_api_key"`
	MapboxToken        string `yaml:"mapbox_token" mapstructure:"mapbox_token"`
	GoogleAPIKey       string `yaml:"google_api_key" mapstructure:"google_api_key"`
}

// OrderList splits the comma-separated provider order.
func (g GeocoderConfig) OrderList() []string {
	if strings.TrimSpace(g.Order) == "" {
		return nil
	}
	parts := strings.Split(g.Order, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DiscoveryConfig configures the Overpass supplier search.
type DiscoveryConfig struct {
	OverpassURL     string  `yaml:"overpass_url" mapstructure:"overpass_url"`
	FiltersFile     string  `yaml:"filters_file" mapstructure:"filters_file"`
	RadiusMiles     float64 `yaml:"radius_miles" mapstructure:"radius_miles"`
	DedupeDistanceM float64 `yaml:"dedupe_distance_m" mapstructure:"dedupe_distance_m"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// BatchConfig configures batch geocoding.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("AEROMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "aeromap.sqlite3")
	v.SetDefault("geocoder.order", "nominatim,locationiq,opencage,here,mapbox,google")
	v.SetDefault("geocoder.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.nominatim_user_agent", "aeromap/1.0 (ops@skyfield-labs.dev)")
	v.SetDefault("geocoder.nominatim_min_gap_ms", 1000)
	v.SetDefault("discovery.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("discovery.filters_file", "industrial_filters.yaml")
	v.SetDefault("discovery.radius_miles", 60)
	v.SetDefault("discovery.dedupe_distance_m", 50)
	v.SetDefault("discovery.timeout_secs", 120)
	v.SetDefault("batch.max_concurrent", 4)
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
