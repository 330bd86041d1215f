package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all startup configuration. It is built once in main and
// passed around by pointer; nothing mutates it afterwards.
type Config struct {
	Host string
	Port string

	AllowedOrigins string
	RateLimitRPS   float64

	DatabaseURL string
	RedisAddr   string
	RedisDB     int

	Cache        CacheOptions
	MercadoLibre BrowserOptions
	Amazon       BrowserOptions
	AliExpress   BrowserOptions
	ScrapingBee  ScrapingBeeOptions
	ScrapeGraph  ScrapeGraphOptions

	WarmQueries  []string
	WarmInterval time.Duration
}

// CacheOptions controls the search result cache.
type CacheOptions struct {
	Enabled bool
	TTL     time.Duration
}

// BrowserOptions configures one headless-browser provider.
type BrowserOptions struct {
	Enabled         bool
	Headless        bool
	BrowserPath     string
	UserAgent       string
	NavigateTimeout time.Duration
	WaitForSelector time.Duration
	ScrollCount     int
	ScrollWait      time.Duration
}

// ScrapingBeeOptions configures the hosted HTML-extraction provider.
type ScrapingBeeOptions struct {
	APIKey       string
	BaseURL      string
	RenderJS     bool
	JSFallback   bool
	PremiumProxy bool
	CountryCode  string
	Wait         time.Duration
	HTTPTimeout  time.Duration
}

// ScrapeGraphOptions configures the LLM-driven subprocess provider.
type ScrapeGraphOptions struct {
	Enabled    bool
	PythonPath string
	ScriptPath string
	Model      string
	Headless   bool
	Timeout    time.Duration
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		Cache: CacheOptions{
			Enabled: getEnvBool("SEARCH_CACHE_ENABLED", true),
			TTL:     getEnvDuration("SEARCH_CACHE_TTL", 300*time.Second),
		},
		MercadoLibre: BrowserOptions{
			Enabled:         getEnvBool("MERCADOLIBRE_ENABLED", true),
			Headless:        getEnvBool("MERCADOLIBRE_HEADLESS", true),
			BrowserPath:     os.Getenv("BROWSER_PATH"),
			UserAgent:       getEnv("MERCADOLIBRE_USER_AGENT", defaultUserAgent),
			NavigateTimeout: getEnvDuration("MERCADOLIBRE_TIMEOUT", 120*time.Second),
			WaitForSelector: getEnvDuration("MERCADOLIBRE_WAIT_FOR_SELECTOR", 30*time.Second),
			ScrollCount:     getEnvInt("MERCADOLIBRE_SCROLL_COUNT", 10),
			ScrollWait:      getEnvDuration("MERCADOLIBRE_SCROLL_WAIT", 200*time.Millisecond),
		},
		Amazon: BrowserOptions{
			Enabled:         getEnvBool("AMAZON_ENABLED", true),
			Headless:        getEnvBool("AMAZON_HEADLESS", true),
			BrowserPath:     os.Getenv("BROWSER_PATH"),
			UserAgent:       getEnv("AMAZON_USER_AGENT", defaultUserAgent),
			NavigateTimeout: getEnvDuration("AMAZON_TIMEOUT", 120*time.Second),
			WaitForSelector: getEnvDuration("AMAZON_WAIT_FOR_SELECTOR", 30*time.Second),
			ScrollCount:     getEnvInt("AMAZON_SCROLL_COUNT", 2),
			ScrollWait:      getEnvDuration("AMAZON_SCROLL_WAIT", 200*time.Millisecond),
		},
		AliExpress: BrowserOptions{
			Enabled:         getEnvBool("ALIEXPRESS_ENABLED", true),
			Headless:        getEnvBool("ALIEXPRESS_HEADLESS", true),
			BrowserPath:     os.Getenv("BROWSER_PATH"),
			UserAgent:       getEnv("ALIEXPRESS_USER_AGENT", defaultUserAgent),
			NavigateTimeout: getEnvDuration("ALIEXPRESS_TIMEOUT", 120*time.Second),
			WaitForSelector: getEnvDuration("ALIEXPRESS_WAIT_FOR_SELECTOR", 30*time.Second),
			ScrollCount:     getEnvInt("ALIEXPRESS_SCROLL_COUNT", 2),
			ScrollWait:      getEnvDuration("ALIEXPRESS_SCROLL_WAIT", 200*time.Millisecond),
		},
		ScrapingBee: ScrapingBeeOptions{
			APIKey:       os.Getenv("SCRAPINGBEE_API_KEY"),
			BaseURL:      getEnv("SCRAPINGBEE_BASE_URL", "https://app.scrapingbee.com"),
			RenderJS:     getEnvBool("SCRAPINGBEE_RENDER_JS", true),
			JSFallback:   getEnvBool("SCRAPINGBEE_JS_FALLBACK", true),
			PremiumProxy: getEnvBool("SCRAPINGBEE_PREMIUM_PROXY", false),
			CountryCode:  getEnv("SCRAPINGBEE_COUNTRY_CODE", "AR"),
			Wait:         getEnvDuration("SCRAPINGBEE_WAIT", 2*time.Second),
			HTTPTimeout:  getEnvDuration("SCRAPINGBEE_HTTP_TIMEOUT", 90*time.Second),
		},
		ScrapeGraph: ScrapeGraphOptions{
			Enabled:    getEnvBool("SCRAPEGRAPH_ENABLED", true),
			PythonPath: getEnv("SCRAPEGRAPH_PYTHON", "python"),
			ScriptPath: getEnv("SCRAPEGRAPH_SCRIPT", "scripts/scrapegraph_meli.py"),
			Model:      getEnv("SCRAPEGRAPH_MODEL", "openai/gpt-4o-mini"),
			Headless:   getEnvBool("SCRAPEGRAPH_HEADLESS", true),
			Timeout:    getEnvDuration("SCRAPEGRAPH_TIMEOUT", 120*time.Second),
		},
		WarmQueries:  splitCSV(os.Getenv("CACHE_WARM_QUERIES")),
		WarmInterval: getEnvDuration("CACHE_WARM_INTERVAL", 4*time.Minute),
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
