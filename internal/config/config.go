package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBPath          string
	GeminiAPIKey    string
	GeminiModel     string
	WeatherAPIURL   string
	WeatherTimeout  time.Duration
	AlertWebhookURL string
	AlertInterval   time.Duration
	SeedDemoData    bool
}

func Load() (*Config, error) {
	// A missing .env file is fine; env vars may come from the environment.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/kisanbazaar.db"
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, advice will use rule-based generation only")
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}

	weatherAPIURL := os.Getenv("WEATHER_API_URL")
	if weatherAPIURL == "" {
		slog.Info("WEATHER_API_URL not set, weather will use static city data")
	}

	weatherTimeout := 5 * time.Second
	if v := os.Getenv("WEATHER_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WEATHER_TIMEOUT %q: %w", v, err)
		}
		weatherTimeout = parsed
	}

	alertWebhookURL := os.Getenv("ALERT_WEBHOOK_URL")
	if alertWebhookURL == "" {
		slog.Info("ALERT_WEBHOOK_URL not set, advisory alerts will be skipped")
	}

	alertIntervalStr := os.Getenv("ALERT_UPDATE_INTERVAL")
	if alertIntervalStr == "" {
		alertIntervalStr = "10m"
	}
	alertInterval, err := time.ParseDuration(alertIntervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_UPDATE_INTERVAL %q: %w", alertIntervalStr, err)
	}

	seedDemoData := true
	if v := os.Getenv("SEED_DEMO_DATA"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_DEMO_DATA %q: %w", v, err)
		}
		seedDemoData = parsed
	}

	return &Config{
		Port:            port,
		DBPath:          dbPath,
		GeminiAPIKey:    geminiAPIKey,
		GeminiModel:     geminiModel,
		WeatherAPIURL:   weatherAPIURL,
		WeatherTimeout:  weatherTimeout,
		AlertWebhookURL: alertWebhookURL,
		AlertInterval:   alertInterval,
		SeedDemoData:    seedDemoData,
	}, nil
}
