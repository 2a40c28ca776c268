package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("SPOONACULAR_API_KEY", "spoon_key")
		setEnv("JWT_SECRET", "secret")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")
		setEnv("TELEGRAM_ADMIN_ID", "12")
		setEnv("SPOONACULAR_BASE_URL", "http://spoon.test/")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.SpoonacularAPIKey != "spoon_key" {
			t.Errorf("Expected SpoonacularAPIKey to be 'spoon_key', got '%s'", cfg.SpoonacularAPIKey)
		}
		if cfg.SpoonacularBaseURL != "http://spoon.test" {
			t.Errorf("Expected trailing slash to be trimmed, got '%s'", cfg.SpoonacularBaseURL)
		}
		if cfg.DatabasePath != defaultDatabasePath {
			t.Errorf("Expected default DatabasePath, got '%s'", cfg.DatabasePath)
		}
		if cfg.DocStoreDriver != "sqlite" {
			t.Errorf("Expected sqlite driver by default, got '%s'", cfg.DocStoreDriver)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 34 {
			t.Errorf("Unexpected allowed IDs: %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 12 {
			t.Errorf("Expected AdminTelegramID 12, got %d", cfg.AdminTelegramID)
		}
		if cfg.TelegramEnabled() {
			t.Error("Telegram should be disabled without a token")
		}
	})

	t.Run("MissingSpoonacularKey", func(t *testing.T) {
		setEnv("JWT_SECRET", "secret")
		os.Unsetenv("SPOONACULAR_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing SPOONACULAR_API_KEY, got nil")
		}
		expectedError := "SPOONACULAR_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingJWTSecret", func(t *testing.T) {
		setEnv("SPOONACULAR_API_KEY", "spoon_key")
		os.Unsetenv("JWT_SECRET")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing JWT_SECRET, got nil")
		}
		expectedError := "JWT_SECRET environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MongoWithoutURI", func(t *testing.T) {
		setEnv("SPOONACULAR_API_KEY", "spoon_key")
		setEnv("JWT_SECRET", "secret")
		setEnv("DOCSTORE_DRIVER", "mongo")
		os.Unsetenv("MONGO_URI")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for mongo driver without MONGO_URI")
		}
	})

	t.Run("InvalidAllowedIDs", func(t *testing.T) {
		setEnv("SPOONACULAR_API_KEY", "spoon_key")
		setEnv("JWT_SECRET", "secret")
		setEnv("DOCSTORE_DRIVER", "sqlite")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for a non-numeric user id")
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FOODHIVE_DOTENV_TEST=loaded\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("FOODHIVE_DOTENV_TEST", "")
	os.Unsetenv("FOODHIVE_DOTENV_TEST")

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))

	if got := os.Getenv("FOODHIVE_DOTENV_TEST"); got != "loaded" {
		t.Errorf("Expected value from .env, got %q", got)
	}
}
