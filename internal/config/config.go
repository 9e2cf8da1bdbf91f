package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Email transports.
const (
	EmailTransportSMTP = "smtp"
	EmailTransportAPI  = "api"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string
	ViewsDir   string
	StaticDir  string

	// Session
	SessionSecret      string // Used for signing cookies (min 32 chars)
	SessionIdleTimeout time.Duration
	RedisURL           string // Optional shared session storage

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Account store
	StoreDriver    string // file, postgres, mongo
	DataFile       string
	DatabaseURL    string
	MongoURI       string
	MongoDatabase  string
	AdminUsernames []string // Accounts created with these usernames get the admin role

	// Search API
	SearchAPIURL     string
	SearchAPIKey     string
	SearchTimeout    time.Duration
	SearchRatePerSec float64
	CredibilityFile  string // Optional override of the embedded credibility lists

	// Email
	EmailTransport string // smtp or api
	SMTPEnabled    bool
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPTLS        string // "none", "tls", "starttls"
	EmailAPIURL    string
	EmailAPIKey    string
	EmailFrom      string
	EmailFromName  string
	EmailWorkers   int
	EmailQueueSize int

	// Jobs
	FeedURLs            []string
	FeedRefreshInterval time.Duration
	HistoryRetention    time.Duration

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "YUVAi"
	SiteTagline string // env: SITE_TAGLINE
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                getEnv("ENV", "development"),
		ServerAddr:         getEnv("SERVER_ADDR", ":3000"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:3000"),
		ViewsDir:           getEnv("VIEWS_DIR", "./views"),
		StaticDir:          getEnv("STATIC_DIR", "./static"),
		SessionSecret:      getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		RedisURL:           getEnv("REDIS_URL", ""),
		CORSOrigins:        getEnv("CORS_ORIGINS", ""),

		StoreDriver:    getEnv("STORE_DRIVER", StoreFile),
		DataFile:       getEnv("DATA_FILE", "local_db.json"),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/yuvai?sslmode=disable"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "news_verification"),
		AdminUsernames: getEnvList("ADMIN_USERNAMES"),

		SearchAPIURL:     getEnv("SEARCH_API_URL", "https://google.serper.dev/search"),
		SearchAPIKey:     getEnv("SEARCH_API_KEY", ""),
		SearchTimeout:    getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
		SearchRatePerSec: getEnvFloat("SEARCH_RATE_PER_SEC", 5),
		CredibilityFile:  getEnv("CREDIBILITY_FILE", ""),

		EmailTransport: getEnv("EMAIL_TRANSPORT", EmailTransportSMTP),
		SMTPEnabled:    getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvInt("SMTP_PORT", 587),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPTLS:        getEnv("SMTP_TLS", "starttls"),
		EmailAPIURL:    getEnv("EMAIL_API_URL", "https://api.brevo.com/v3/smtp/email"),
		EmailAPIKey:    getEnv("EMAIL_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "YUVAi"),
		EmailWorkers:   getEnvInt("EMAIL_WORKERS", 2),
		EmailQueueSize: getEnvInt("EMAIL_QUEUE_SIZE", 100),

		FeedURLs:            getEnvList("FEED_URLS"),
		FeedRefreshInterval: getEnvDuration("FEED_REFRESH_INTERVAL", 15*time.Minute),
		HistoryRetention:    getEnvRetention("HISTORY_RETENTION", 30*24*time.Hour),

		SiteTitle:   getEnv("SITE_TITLE", "YUVAi"),
		SiteTagline: getEnv("SITE_TAGLINE", "Check a headline before you share it"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration returns fallback unless the variable holds a positive duration.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// getEnvRetention is getEnvDuration where "0" means keep forever.
func getEnvRetention(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v == "0" {
		return 0
	}
	return getEnvDuration(key, fallback)
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if the configured transport has what it needs to send.
func (c *Config) IsEmailEnabled() bool {
	if c.EmailFrom == "" {
		return false
	}
	if c.EmailTransport == EmailTransportAPI {
		return c.EmailAPIURL != "" && c.EmailAPIKey != ""
	}
	return c.SMTPEnabled && c.SMTPHost != ""
}

// IsAdmin reports whether username is listed in ADMIN_USERNAMES.
func (c *Config) IsAdmin(username string) bool {
	for _, u := range c.AdminUsernames {
		if strings.EqualFold(u, username) {
			return true
		}
	}
	return false
}
