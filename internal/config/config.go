// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/terraincognita07/ovumcy-bot/internal/security"
	"github.com/terraincognita07/ovumcy-bot/internal/telegram"
)

const (
	minSecretKeyLength = 32
	notifyAtLayout     = "15:04"
)

var insecureSecretPlaceholders = []string{
	"change_me_in_production",
	"replace_with_at_least_32_random_characters",
}

type Config struct {
	Location         *time.Location
	DBPath           string
	Port             string
	SecretKey        string
	TelegramBotToken string
	TelegramAPIURL   string
	DefaultLanguage  string
	// NotifyAt carries only the hour and minute of the daily notification, in Location.
	NotifyAt    time.Time
	APITokenTTL time.Duration
	PollTimeout time.Duration
}

// NotifyAtText renders the daily notification time as HH:MM.
func (cfg Config) NotifyAtText() string {
	return cfg.NotifyAt.Format(notifyAtLayout)
}

// Load applies the given env files (".env" when none are named; a missing file is ignored) and
// then reads every setting. Variables already present in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	location := resolveLocation(getEnv("TZ", "UTC"))

	secretKey, err := resolveSecretKey()
	if err != nil {
		return Config{}, err
	}
	port, err := resolvePort()
	if err != nil {
		return Config{}, err
	}
	notifyAt, err := resolveNotifyAt(location)
	if err != nil {
		return Config{}, err
	}
	tokenTTL, err := resolveDuration("API_TOKEN_TTL", security.DefaultTokenTTL)
	if err != nil {
		return Config{}, err
	}
	pollTimeout, err := resolveDuration("TELEGRAM_POLL_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Location:         location,
		DBPath:           getEnv("DB_PATH", filepath.Join("data", "ovumcy-bot.db")),
		Port:             port,
		SecretKey:        secretKey,
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", telegram.DefaultAPIURL),
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "ru"),
		NotifyAt:         notifyAt,
		APITokenTTL:      tokenTTL,
		PollTimeout:      pollTimeout,
	}, nil
}

func loadEnvFiles(envFiles []string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func resolveLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	for _, placeholder := range insecureSecretPlaceholders {
		if strings.EqualFold(secret, placeholder) {
			return "", errors.New("SECRET_KEY uses an insecure placeholder value")
		}
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort() (string, error) {
	raw := getEnv("PORT", "8080")
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return raw, nil
}

func resolveNotifyAt(location *time.Location) (time.Time, error) {
	raw := getEnv("NOTIFY_AT", "09:00")
	parsed, err := time.Parse(notifyAtLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid NOTIFY_AT %q: expected HH:MM", raw)
	}
	return time.Date(0, time.January, 1, parsed.Hour(), parsed.Minute(), 0, 0, location), nil
}

func resolveDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return value, nil
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
