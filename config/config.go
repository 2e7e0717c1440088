package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Fetch modes.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BaseURL     string
	Bound       int
	ReportDir   string
	PublishPath string

	FetchMode      string
	HTTPTimeoutSec int
	UserAgent      string
	MaxRetries     int
	RateLimitMs    int
	ChromeBin      string

	SnapshotToPostgres bool
	PostgresHost       string
	PostgresPort       string
	PostgresUser       string
	PostgresPassword   string
	PostgresDB         string
	PostgresSSLMode    string

	Debug bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		BaseURL:     getEnv("METASTATS_BASE_URL", "http://metastats.net"),
		Bound:       getEnvInt("ARCHETYPE_BOUND", 9),
		ReportDir:   getEnv("REPORT_DIR", "."),
		PublishPath: getEnv("PUBLISH_PATH", "decks.txt"),

		FetchMode:      strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 30),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		MaxRetries:  getEnvInt("MAX_RETRIES", 1),
		RateLimitMs: getEnvInt("RATE_LIMIT_MS", 0),
		ChromeBin:   getEnv("CHROME_BIN", ""),

		SnapshotToPostgres: getEnvBool("SNAPSHOT_TO_POSTGRES", false),
		PostgresHost:       getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:       getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:       getEnv("POSTGRES_USER", "metastats"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "metastats"),
		PostgresDB:         getEnv("POSTGRES_DB", "metastats"),
		PostgresSSLMode:    getEnv("POSTGRES_SSLMODE", "disable"),

		Debug: getEnvBool("DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
