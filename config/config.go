package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Search parameters passed through to the FINN clients.
	TransactionType string // "sale" or "rent"
	Location        string // location name or FINN taxonomy code
	PriceFrom       int
	PriceTo         int
	AreaFrom        int
	BedroomsFrom    int
	SortOrder       string

	PagesToScrape  int
	RateLimitMs    int
	MaxRetries     int
	UseSearchAPI   bool // scrape the JSON search API instead of rendered pages
	MaxConcurrency int

	CSVOutputPath string
	ChromeBin     string

	ServeAPI  bool
	ServeAddr string
	Debug     bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "landomo"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "landomo123"),
		PostgresDB:       getEnv("POSTGRES_DB", "finn_listings"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		TransactionType: getEnv("TRANSACTION_TYPE", "rent"),
		Location:        getEnv("LOCATION", "oslo"),
		PriceFrom:       getEnvInt("PRICE_FROM", 0),
		PriceTo:         getEnvInt("PRICE_TO", 0),
		AreaFrom:        getEnvInt("AREA_FROM", 0),
		BedroomsFrom:    getEnvInt("BEDROOMS_FROM", 0),
		SortOrder:       getEnv("SORT_ORDER", "PUBLISHED_DESC"),

		PagesToScrape:  getEnvInt("PAGES_TO_SCRAPE", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		UseSearchAPI:   getEnvBool("USE_SEARCH_API", false),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_listings.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),

		ServeAPI:  getEnvBool("SERVE_API", false),
		ServeAddr: getEnv("SERVE_ADDR", ":8080"),
		Debug:     getEnvBool("DEBUG", false),
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
