package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	FetchModeBrowser = "browser"
	FetchModeHTTP    = "http"
)

type Config struct {
	HTTPAddr string

	Platforms []string
	FetchMode string

	BrowserHeadless bool
	BrowserChannel  string
	UserAgent       string
	PageTimeout     time.Duration
	CookiesDir      string

	PlaywrightBrowsersPath string
	PlaywrightNodeJSPath   string
	PlaywrightDriverDir    string
	InstallBrowsers        bool

	PollingInterval time.Duration
	ScrapePlanPath  string
	ScrapeWorkers   int
	ScrapePerMinute int
	MaxRetries      int
	RetryDelay      time.Duration
	SearchTimeout   time.Duration

	NATSURL         string
	NATSConnTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	ChatTimeout   time.Duration

	OTLPEndpoint string
	LogLevel     string
	LogDev       bool
}

func LoadConfig() (*Config, error) {
	config := &Config{
		HTTPAddr: getEnvString("HTTP_ADDR", ":8000"),

		Platforms: getEnvList("PLATFORMS", []string{"boss", "ganji"}),
		FetchMode: getEnvString("FETCH_MODE", FetchModeBrowser),

		BrowserHeadless: getEnvBool("BROWSER_HEADLESS", true),
		BrowserChannel:  getEnvString("BROWSER_CHANNEL", ""),
		UserAgent:       getEnvString("USER_AGENT", ""),
		PageTimeout:     getEnvDuration("PAGE_TIMEOUT", 30*time.Second),
		CookiesDir:      getEnvString("COOKIES_DIR", "cookies"),

		PlaywrightBrowsersPath: getEnvString("PLAYWRIGHT_BROWSERS_PATH", ""),
		PlaywrightNodeJSPath:   getEnvString("PLAYWRIGHT_NODEJS_PATH", ""),
		PlaywrightDriverDir:    getEnvString("PLAYWRIGHT_DRIVER_PATH", ""),
		InstallBrowsers:        getEnvBool("PLAYWRIGHT_INSTALL", true),

		PollingInterval: getEnvDuration("POLLING_INTERVAL", time.Hour),
		ScrapePlanPath:  getEnvString("SCRAPE_PLAN", ""),
		ScrapeWorkers:   getEnvInt("SCRAPE_WORKERS", 3),
		ScrapePerMinute: getEnvInt("SCRAPE_PER_MINUTE", 6),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		RetryDelay:      getEnvDuration("RETRY_DELAY", time.Second),
		SearchTimeout:   getEnvDuration("SEARCH_TIMEOUT", 20*time.Second),

		NATSURL:         getEnvString("NATS_URL", ""),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", time.Hour),

		OpenAIAPIKey:  getEnvString("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnvString("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnvString("OPENAI_MODEL", "gpt-4o-mini"),
		ChatTimeout:   getEnvDuration("CHAT_TIMEOUT", 30*time.Second),

		OTLPEndpoint: getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LogLevel:     getEnvString("LOG_LEVEL", "info"),
		LogDev:       getEnvBool("LOG_DEVELOPMENT", false),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.FetchMode {
	case FetchModeBrowser, FetchModeHTTP:
	default:
		return fmt.Errorf("FETCH_MODE must be %q or %q, got %q", FetchModeBrowser, FetchModeHTTP, c.FetchMode)
	}
	if len(c.Platforms) == 0 {
		return fmt.Errorf("PLATFORMS must name at least one platform")
	}
	if c.ScrapeWorkers < 1 {
		return fmt.Errorf("SCRAPE_WORKERS must be positive, got %d", c.ScrapeWorkers)
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("PAGE_TIMEOUT must be positive, got %s", c.PageTimeout)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
