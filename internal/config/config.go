package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// CrawlConfig bounds the website crawler.
type CrawlConfig struct {
	Concurrency  int
	FetchTimeout time.Duration
	MaxRedirects int
	MaxBodyBytes int64
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	ScraperBaseURL  string
	OperatorEmail   string
	OperatorHash    string
	PhoneRegion     string
	SheetID         string
	RateLimitLookup RateLimitConfig
	Crawl           CrawlConfig
	TokenTTL        time.Duration
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		Port:           getEnv("PORT", "8080"),
		ScraperBaseURL: getEnv("SCRAPER_BASE_URL", "http://scraper:9000"),
		OperatorEmail:  getEnv("OPERATOR_EMAIL", ""),
		OperatorHash:   getEnv("OPERATOR_PASSWORD_HASH", ""),
		PhoneRegion:    getEnv("PHONE_REGION", "US"),
		SheetID:        getEnv("EXPORT_SHEET_ID", ""),
		TokenTTL:       parseDuration(getEnv("JWT_TTL", "24h")),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_LOOKUP", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOOKUP value: %w", err)
	}
	cfg.RateLimitLookup = rl

	crawl, err := parseCrawl()
	if err != nil {
		return nil, err
	}
	cfg.Crawl = crawl

	return cfg, nil
}

func parseCrawl() (CrawlConfig, error) {
	concurrency, err := parsePositiveInt(getEnv("CRAWL_CONCURRENCY", "5"))
	if err != nil {
		return CrawlConfig{}, fmt.Errorf("invalid CRAWL_CONCURRENCY value: %w", err)
	}

	redirects, err := parsePositiveInt(getEnv("CRAWL_MAX_REDIRECTS", "5"))
	if err != nil {
		return CrawlConfig{}, fmt.Errorf("invalid CRAWL_MAX_REDIRECTS value: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("CRAWL_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return CrawlConfig{}, fmt.Errorf("invalid CRAWL_TIMEOUT value: %q", getEnv("CRAWL_TIMEOUT", "10s"))
	}

	return CrawlConfig{
		Concurrency:  concurrency,
		FetchTimeout: timeout,
		MaxRedirects: redirects,
		MaxBodyBytes: 2 << 20,
	}, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive, got %d", n)
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
