package config

import (
	"fmt"
	"strings"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger           `mapstructure:"logger"`
	API        API              `mapstructure:"api"`
	Scheduler  Scheduler        `mapstructure:"scheduler"`
	FMP        FMP              `mapstructure:"fmp"`
	Polygon    Polygon          `mapstructure:"polygon"`
	Perplexity Perplexity       `mapstructure:"perplexity"`
	Gemini     Gemini           `mapstructure:"gemini"`
	SMTP       SMTP             `mapstructure:"smtp"`
	Digest     Digest           `mapstructure:"digest"`
	Alerts     PriceTargetAlert `mapstructure:"alerts"`
	Cache      Cache            `mapstructure:"cache"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Scheduler struct {
	DigestCron      string        `mapstructure:"digest_cron"`
	AlertsCron      string        `mapstructure:"alerts_cron"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type FMP struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key" validate:"required"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
}

type Polygon struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key" validate:"required"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
	RatingsLimit     int           `mapstructure:"ratings_limit"`
}

type Perplexity struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
}

type Gemini struct {
	APIKey            string `mapstructure:"api_key"`
	BaseModel         string `mapstructure:"base_model"`
	MaxRequestPerMin  int    `mapstructure:"max_request_per_min"`
	MaxTokenPerMinute int    `mapstructure:"max_token_per_minute"`
}

type SMTP struct {
	Server    string `mapstructure:"server"`
	Port      int    `mapstructure:"port"`
	Sender    string `mapstructure:"sender" validate:"required,email"`
	Password  string `mapstructure:"password" validate:"required"`
	Recipient string `mapstructure:"recipient" validate:"required,email"`
}

type Digest struct {
	MinGainPercent float64 `mapstructure:"min_gain_percent"`
	MinMarketCap   float64 `mapstructure:"min_market_cap"`
	MaxConcurrency int     `mapstructure:"max_concurrency"`
}

type PriceTargetAlert struct {
	WatchlistPath   string        `mapstructure:"watchlist_path"`
	Lookback        time.Duration `mapstructure:"lookback"`
	ChangeThreshold float64       `mapstructure:"change_threshold"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("scheduler.digest_cron", "30 16 * * 1-5")
	viper.SetDefault("scheduler.alerts_cron", "0 8 * * 1-5")
	viper.SetDefault("scheduler.timeout_duration", 15*time.Minute)
	viper.SetDefault("fmp.base_url", "https://financialmodelingprep.com/api/v3")
	viper.SetDefault("fmp.timeout", 30*time.Second)
	viper.SetDefault("fmp.max_request_per_min", 60)
	viper.SetDefault("polygon.base_url", "https://api.polygon.io")
	viper.SetDefault("polygon.timeout", 30*time.Second)
	viper.SetDefault("polygon.max_request_per_min", 60)
	viper.SetDefault("polygon.ratings_limit", 50)
	viper.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	viper.SetDefault("perplexity.model", "sonar")
	viper.SetDefault("perplexity.timeout", 10*time.Second)
	viper.SetDefault("perplexity.max_request_per_min", 120)
	viper.SetDefault("gemini.base_model", "gemini-2.0-flash")
	viper.SetDefault("gemini.max_request_per_min", 10)
	viper.SetDefault("gemini.max_token_per_minute", 250000)
	viper.SetDefault("smtp.server", "smtp.gmail.com")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("digest.min_gain_percent", 10.0)
	viper.SetDefault("digest.min_market_cap", 300_000_000)
	viper.SetDefault("digest.max_concurrency", 4)
	viper.SetDefault("alerts.watchlist_path", "watchlist.txt")
	viper.SetDefault("alerts.lookback", 24*time.Hour)
	viper.SetDefault("alerts.change_threshold", 0.1)
	viper.SetDefault("cache.default_expiration", 10*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 30*time.Minute)
}

func Load() (*Config, error) {
	// .env is optional, same convention as the config file below.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	setDefaults()

	// Secrets are expected from the environment and have no defaults, so
	// they must be bound explicitly for Unmarshal to see them.
	for _, key := range []string{
		"fmp.api_key",
		"polygon.api_key",
		"perplexity.api_key",
		"gemini.api_key",
		"smtp.sender",
		"smtp.password",
		"smtp.recipient",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := goValidator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
