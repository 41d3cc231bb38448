package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Backend  Backend  `mapstructure:"backend"`
	Poll     Poll     `mapstructure:"poll"`
	Defaults Defaults `mapstructure:"defaults"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Backend holds the configuration for the trading backend API.
type Backend struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Poll holds the re-fetch interval for the market-data views.
type Poll struct {
	WalletInterval int `mapstructure:"wallet_interval"` // seconds
}

// Defaults holds the trading settings applied to newly created profiles.
// They mirror the backend's auto-buy/auto-sell configs and are only used to
// pre-fill the create form; the backend remains authoritative.
type Defaults struct {
	BuyType       string  `mapstructure:"buy_type"`
	BuyAmountType string  `mapstructure:"buy_amount_type"`
	BuyAmount     float64 `mapstructure:"buy_amount"`
	SellMode      string  `mapstructure:"sell_mode"`
	SellType      string  `mapstructure:"sell_type"`
	SellValue     float64 `mapstructure:"sell_value"`
}

// Server holds the configuration for the local dashboard bridge.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the local cache database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("backend.base_url", "http://127.0.0.1:8000")
	viper.SetDefault("backend.rate_limit", 10) // requests per second
	viper.SetDefault("backend.rate_limit_burst", 5)
	viper.SetDefault("poll.wallet_interval", 15)
	viper.SetDefault("database.dsn", "dashboard.db")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
