package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvironment    = "development"
	defaultLockTimeout    = 5 * time.Second
	defaultMeetingBaseURL = "https://meet.jit.si/skillmatch"
	defaultRateLimitRPS   = 1.0
	defaultRateLimitBurst = 5
)

type Config struct {
	TelegramToken  string
	DBDSN          string
	Environment    string
	MigrationsDir  string        // пусто = встроенные миграции
	DBLockTimeout  time.Duration // ограничение ожидания блокировок строк
	MeetingBaseURL string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load читает конфигурацию из .env и переменных окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию только из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		Environment:    os.Getenv("ENV"),
		MigrationsDir:  os.Getenv("MIGRATIONS_DIR"),
		MeetingBaseURL: os.Getenv("MEETING_BASE_URL"),
		DBLockTimeout:  defaultLockTimeout,
		RateLimitRPS:   defaultRateLimitRPS,
		RateLimitBurst: defaultRateLimitBurst,
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
	if cfg.MeetingBaseURL == "" {
		cfg.MeetingBaseURL = defaultMeetingBaseURL
	}

	if v := os.Getenv("DB_LOCK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse DB_LOCK_TIMEOUT: %w", err)
		}
		cfg.DBLockTimeout = d
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = rps
	}

	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = burst
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
