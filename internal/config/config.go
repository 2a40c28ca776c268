package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultDatabasePath       = "data/foodhive.db"
	defaultPort               = "8080"
	defaultSpoonacularBaseURL = "https://api.spoonacular.com"
	defaultOpenFoodFactsURL   = "https://world.openfoodfacts.org"
	defaultMongoDatabase      = "foodhive"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	Port         string
	JWTSecret    string

	// Document store. "sqlite" keeps documents next to the metrics tables,
	// "mongo" moves them to MongoURI.
	DocStoreDriver string
	MongoURI       string
	MongoDatabase  string

	SpoonacularAPIKey  string
	SpoonacularBaseURL string
	OpenFoodFactsURL   string
	VisionAPIKey       string

	GeminiAPIKey string
	GroqAPIKey   string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	// Avatar storage (any S3-compatible endpoint)
	AvatarBucket    string
	AvatarRegion    string
	AvatarEndpoint  string
	AvatarAccessKey string
	AvatarSecretKey string
	AvatarPublicURL string
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are not an error.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("Warning: failed to load %s: %v", p, err)
		}
	}
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	spoonacularKey := os.Getenv("SPOONACULAR_API_KEY")
	if spoonacularKey == "" {
		return nil, fmt.Errorf("SPOONACULAR_API_KEY environment variable not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	driver := strings.ToLower(getEnv("DOCSTORE_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "mongo" {
		return nil, fmt.Errorf("DOCSTORE_DRIVER must be sqlite or mongo, got %q", driver)
	}
	mongoURI := os.Getenv("MONGO_URI")
	if driver == "mongo" && mongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}

	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if raw := os.Getenv("TELEGRAM_ADMIN_ID"); raw != "" {
		adminID, err = strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID: %w", err)
		}
	}

	return &Config{
		DatabasePath:           getEnv("DATABASE_PATH", defaultDatabasePath),
		Port:                   getEnv("PORT", defaultPort),
		JWTSecret:              jwtSecret,
		DocStoreDriver:         driver,
		MongoURI:               mongoURI,
		MongoDatabase:          getEnv("MONGO_DATABASE", defaultMongoDatabase),
		SpoonacularAPIKey:      spoonacularKey,
		SpoonacularBaseURL:     strings.TrimRight(getEnv("SPOONACULAR_BASE_URL", defaultSpoonacularBaseURL), "/"),
		OpenFoodFactsURL:       strings.TrimRight(getEnv("OPENFOODFACTS_URL", defaultOpenFoodFactsURL), "/"),
		VisionAPIKey:           os.Getenv("VISION_API_KEY"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
		AvatarBucket:           os.Getenv("AVATAR_BUCKET"),
		AvatarRegion:           getEnv("AVATAR_REGION", "us-east-1"),
		AvatarEndpoint:         os.Getenv("AVATAR_ENDPOINT"),
		AvatarAccessKey:        os.Getenv("AVATAR_ACCESS_KEY"),
		AvatarSecretKey:        os.Getenv("AVATAR_SECRET_KEY"),
		AvatarPublicURL:        strings.TrimRight(os.Getenv("AVATAR_PUBLIC_URL"), "/"),
	}, nil
}

// TelegramEnabled reports whether the bot front-end is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramWebhookURL != ""
}

// AvatarStorageEnabled reports whether avatar uploads can be stored.
func (c *Config) AvatarStorageEnabled() bool {
	return c.AvatarBucket != "" && c.AvatarAccessKey != "" && c.AvatarSecretKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
