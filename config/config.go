package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort             string
	BaseURL                string
	UserAgent              string
	RefreshIntervalMinutes string
	HTTPTimeoutSeconds     string
	LogLevel               string
}

// ScraperConfig holds configuration parameters for the page scraper
type ScraperConfig struct {
	BaseURL     string        // Target website base URL, one page per tracked model under it
	UserAgent   string        // User-Agent header sent on every fetch
	HTTPTimeout time.Duration // Maximum time to wait for a page fetch
}

// DefaultScraperConfig returns production-ready default configuration
func DefaultScraperConfig() *ScraperConfig {
	return &ScraperConfig{
		BaseURL:     "https://www.nowinstock.net/computers/videocards/nvidia/",
		UserAgent:   "",
		HTTPTimeout: 15 * time.Second,
	}
}

// GetRefreshInterval returns the web snapshot refresh interval from
// environment or the 5 minute default.
func (c *Config) GetRefreshInterval() time.Duration {
	minutes, err := strconv.Atoi(c.RefreshIntervalMinutes)
	if err != nil || minutes <= 0 {
		if c.RefreshIntervalMinutes != "" {
			logrus.Warnf("Invalid REFRESH_INTERVAL_MINUTES value: %s, using default 5 minutes", c.RefreshIntervalMinutes)
		}
		return 5 * time.Minute
	}
	return time.Duration(minutes) * time.Minute
}

// GetHTTPTimeout returns the page fetch timeout from environment or the
// 15 second default.
func (c *Config) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(c.HTTPTimeoutSeconds)
	if err != nil || seconds <= 0 {
		if c.HTTPTimeoutSeconds != "" {
			logrus.Warnf("Invalid HTTP_TIMEOUT_SECONDS value: %s, using default 15 seconds", c.HTTPTimeoutSeconds)
		}
		return 15 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// ScraperConfig builds the scraper configuration from the loaded
// environment, falling back to defaults per field.
func (c *Config) ScraperConfig() *ScraperConfig {
	scraperConfig := DefaultScraperConfig()
	if c.BaseURL != "" {
		scraperConfig.BaseURL = c.BaseURL
	}
	if c.UserAgent != "" {
		scraperConfig.UserAgent = c.UserAgent
	}
	scraperConfig.HTTPTimeout = c.GetHTTPTimeout()
	return scraperConfig
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		BaseURL:                getEnv("BASE_URL", ""),
		UserAgent:              getEnv("USER_AGENT", ""),
		RefreshIntervalMinutes: getEnv("REFRESH_INTERVAL_MINUTES", "5"),
		HTTPTimeoutSeconds:     getEnv("HTTP_TIMEOUT_SECONDS", "15"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
