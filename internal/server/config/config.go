package config

import (
	"papertrade/pkg/config"
)

// Auth holds token issuance configuration.
type Auth struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	TokenTTL  string `mapstructure:"token_ttl"`
}

// Quotes holds quote-provider configuration.
type Quotes struct {
	ChartBaseURL        string `mapstructure:"chart_base_url"`
	SummaryBaseURL      string `mapstructure:"summary_base_url"`
	RequestTimeout      string `mapstructure:"request_timeout"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	CacheTTL            string `mapstructure:"cache_ttl"`
	RefreshInterval     string `mapstructure:"refresh_interval"`
}

// Trading holds settlement configuration.
type Trading struct {
	InitialBalance        float64 `mapstructure:"initial_balance"`
	PriceTolerancePercent float64 `mapstructure:"price_tolerance_percent"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Config holds the full configuration for the trading API service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Auth     Auth            `mapstructure:"auth"`
	Quotes   Quotes          `mapstructure:"quotes"`
	Trading  Trading         `mapstructure:"trading"`
	Gemini   Gemini          `mapstructure:"gemini"`
}

// Load loads the service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
