package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Browser      BrowserConfig
	Scraper      ScraperConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig
	Log          LogConfig
	Engine       EngineConfig
	AdaptivePool AdaptivePoolConfig
	LLM          LLMConfig
	Mongo        MongoConfig
}

// Fetch modes accepted by ScraperConfig.FetchMode.
const (
	FetchModeBrowser = "browser"
	FetchModeHTTP    = "http"
	FetchModeAuto    = "auto"
)

// EngineConfig controls the fetch engine chain.
type EngineConfig struct {
	// HTTPTimeout is the deadline for the pure HTTP engine.
	HTTPTimeout time.Duration // default: 10s

	// DomainMemoryTTL is how long a domain's winning engine is remembered.
	DomainMemoryTTL time.Duration // default: 24h
}

// AdaptivePoolConfig controls the adaptive tab pool sizing.
type AdaptivePoolConfig struct {
	// MinPages is the minimum number of tabs kept in the pool.
	MinPages int // default: 1

	// HardMax is the absolute maximum number of concurrent tabs.
	HardMax int // default: 8

	// MemThreshold is the heap memory fraction (0.0-1.0) above which the pool shrinks.
	MemThreshold float64 // default: 0.9

	// ScaleStep is the fraction of pool size to grow or shrink per interval.
	ScaleStep float64 // default: 0.1
}

// CacheConfig controls the scrape result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 500

	// DefaultMaxAge is used when the client does not send max_age.
	DefaultMaxAge time.Duration // default: 0 (no caching)
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// DefaultProxy is the proxy URL for all browser traffic.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth injects the go-rod/stealth evasion script into every tab.
	Stealth bool // default: true

	// UserAgent is sent by both the browser and the HTTP engine.
	UserAgent string
}

// ScraperConfig controls portfolio scraping behavior.
type ScraperConfig struct {
	// FetchMode selects the engine chain: browser, http or auto.
	FetchMode string // default: "browser"

	// PrimaryWaitTimeout bounds the network-idle navigation attempt.
	PrimaryWaitTimeout time.Duration // default: 30s

	// FallbackWaitTimeout bounds the load-event navigation attempt.
	FallbackWaitTimeout time.Duration // default: 20s

	// SettleDelay is waited after navigation so client-side frameworks can render.
	SettleDelay time.Duration // default: 3s

	// ScrollPasses scrolls the page this many screens before capture.
	ScrollPasses int // default: 0

	// ErrorPageMaxChars is the body-text length under which error phrases count.
	ErrorPageMaxChars int // default: 1000

	// MaxTimeout is the overall deadline for a single portfolio scrape.
	MaxTimeout time.Duration // default: 90s

	// BlockedResourceTypes lists CDP resource types to block.
	// Stylesheets stay allowed so computed colours are meaningful.
	BlockedResourceTypes []string // default: ["Font", "Media"]

	// BlockAds drops requests to well-known ad and tracker hosts.
	BlockAds bool // default: true

	// RespectRobots rejects URLs disallowed by the site's robots.txt.
	RespectRobots bool // default: false

	// VocabularyFile optionally overrides the built-in skill and role vocabulary.
	VocabularyFile string

	// BatchMaxURLs caps the number of URLs accepted per batch job.
	BatchMaxURLs int // default: 20
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// LLMConfig selects and configures the text generation backend.
type LLMConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "gemini".
	Provider string // default: "openai"

	APIKey string

	// BaseURL is the OpenAI-compatible endpoint; ignored for gemini.
	BaseURL string // default: "https://api.groq.com/openai/v1"

	Model string // default: "llama-3.3-70b-versatile"

	Temperature float64 // default: 0.7

	Timeout time.Duration // default: 60s
}

// Enabled reports whether an API key has been configured.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

// MongoConfig controls optional snapshot persistence.
type MongoConfig struct {
	// URI enables persistence when non-empty.
	URI string

	Database   string // default: "folio"
	Collection string // default: "snapshots"

	Timeout time.Duration // default: 10s
}

// Enabled reports whether persistence is configured.
func (c MongoConfig) Enabled() bool { return c.URI != "" }

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("FOLIO_HOST", "0.0.0.0"),
			Port: envIntOr("FOLIO_PORT", 8080),
			Mode: envOr("FOLIO_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("FOLIO_HEADLESS", true),
			DefaultProxy: os.Getenv("FOLIO_PROXY"),
			NoSandbox:    envBoolOr("FOLIO_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("FOLIO_BROWSER_BIN"),
			Stealth:      envBoolOr("FOLIO_STEALTH", true),
			UserAgent:    envOr("FOLIO_USER_AGENT", DefaultUserAgent),
		},
		Scraper: ScraperConfig{
			FetchMode:           strings.ToLower(envOr("FOLIO_FETCH_MODE", FetchModeBrowser)),
			PrimaryWaitTimeout:  envDurationOr("FOLIO_PRIMARY_WAIT_TIMEOUT", 30*time.Second),
			FallbackWaitTimeout: envDurationOr("FOLIO_FALLBACK_WAIT_TIMEOUT", 20*time.Second),
			SettleDelay:         envDurationOr("FOLIO_SETTLE_DELAY", 3*time.Second),
			ScrollPasses:        envIntOr("FOLIO_SCROLL_PASSES", 0),
			ErrorPageMaxChars:   envIntOr("FOLIO_ERROR_PAGE_MAX_CHARS", 1000),
			MaxTimeout:          envDurationOr("FOLIO_MAX_TIMEOUT", 90*time.Second),
			BlockedResourceTypes: envSliceOr("FOLIO_BLOCKED_RESOURCES", []string{
				"Font", "Media",
			}),
			BlockAds:       envBoolOr("FOLIO_BLOCK_ADS", true),
			RespectRobots:  envBoolOr("FOLIO_RESPECT_ROBOTS", false),
			VocabularyFile: os.Getenv("FOLIO_VOCABULARY_FILE"),
			BatchMaxURLs:   envIntOr("FOLIO_BATCH_MAX_URLS", 20),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FOLIO_AUTH_ENABLED", false),
			APIKeys: envSliceOr("FOLIO_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FOLIO_RATE_RPS", 2.0),
			Burst:             envIntOr("FOLIO_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries:    envIntOr("FOLIO_CACHE_MAX_ENTRIES", 500),
			DefaultMaxAge: envDurationOr("FOLIO_CACHE_MAX_AGE", 0),
		},
		Log: LogConfig{
			Level:  envOr("FOLIO_LOG_LEVEL", "info"),
			Format: envOr("FOLIO_LOG_FORMAT", "json"),
		},
		Engine: EngineConfig{
			HTTPTimeout:     envDurationOr("FOLIO_HTTP_TIMEOUT", 10*time.Second),
			DomainMemoryTTL: envDurationOr("FOLIO_DOMAIN_MEMORY_TTL", 24*time.Hour),
		},
		AdaptivePool: AdaptivePoolConfig{
			MinPages:     envIntOr("FOLIO_MIN_PAGES", 1),
			HardMax:      envIntOr("FOLIO_HARD_MAX_PAGES", 8),
			MemThreshold: envFloatOr("FOLIO_MEM_THRESHOLD", 0.9),
			ScaleStep:    envFloatOr("FOLIO_SCALE_STEP", 0.1),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(envOr("FOLIO_LLM_PROVIDER", "openai")),
			APIKey:      firstEnv("FOLIO_LLM_API_KEY", "GROQ_API_KEY"),
			BaseURL:     envOr("FOLIO_LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:       envOr("FOLIO_LLM_MODEL", "llama-3.3-70b-versatile"),
			Temperature: envFloatOr("FOLIO_LLM_TEMPERATURE", 0.7),
			Timeout:     envDurationOr("FOLIO_LLM_TIMEOUT", 60*time.Second),
		},
		Mongo: MongoConfig{
			URI:        os.Getenv("FOLIO_MONGO_URI"),
			Database:   envOr("FOLIO_MONGO_DATABASE", "folio"),
			Collection: envOr("FOLIO_MONGO_COLLECTION", "snapshots"),
			Timeout:    envDurationOr("FOLIO_MONGO_TIMEOUT", 10*time.Second),
		},
	}
}

// DefaultUserAgent is a desktop Chrome UA string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// --- helper functions ---

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
