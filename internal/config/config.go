package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App  AppConfig
	Api  ApiConfig
	Keys APIKeys
}

type AppConfig struct {
	Environment   string
	LogFilePath   string
	StateFilePath string
}

type ApiConfig struct {
	BaseURL string
	Timeout time.Duration
}

type APIKeys struct {
	GeocoderBaseURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment:   getEnv("GO_ENV", "development"),
			LogFilePath:   getEnv("LOG_FILE_PATH", "logs/echolearn.log"),
			StateFilePath: getEnv("STATE_FILE_PATH", defaultStatePath()),
		},
		Api: ApiConfig{
			BaseURL: getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
			Timeout: time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", 120)) * time.Second,
		},
		Keys: APIKeys{
			GeocoderBaseURL: getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		},
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "echolearn.state"
	}
	return filepath.Join(home, ".echolearn", "state.bin")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
