package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port       string
	Env        string
	DBPath     string
	SeasonYear int
	LogLevel   string
	DevLogin   bool

	CacheAddr string
	CacheTTL  time.Duration

	PriceSheetAllowedHosts []string
	PriceSheetMaxBytes     int64
}

func (c AppConfig) IsDev() bool { return c.Env == "dev" }

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() AppConfig {
	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	cfg := AppConfig{
		Port:     get("PORT", "8080"),
		Env:      get("APP_ENV", "prod"),
		DBPath:   get("DB_PATH", "seasonplan.db"),
		LogLevel: get("LOG_LEVEL", "info"),
		DevLogin: get("DEV_LOGIN", "true") == "true",

		CacheAddr: get("CACHE_ADDR", ""),

		PriceSheetMaxBytes: 1500000,
	}

	cfg.SeasonYear = time.Now().Year()
	if v, err := strconv.Atoi(get("SEASON_YEAR", "")); err == nil && v > 0 {
		cfg.SeasonYear = v
	}

	cfg.CacheTTL = 10 * time.Minute
	if d, err := time.ParseDuration(get("CACHE_TTL", "")); err == nil && d > 0 {
		cfg.CacheTTL = d
	}

	if v, err := strconv.ParseInt(get("PRICE_SHEET_MAX_BYTES", ""), 10, 64); err == nil && v > 0 {
		cfg.PriceSheetMaxBytes = v
	}
	for _, h := range strings.Split(get("PRICE_SHEET_ALLOWED_HOSTS", ""), ",") {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			cfg.PriceSheetAllowedHosts = append(cfg.PriceSheetAllowedHosts, h)
		}
	}
	return cfg
}
