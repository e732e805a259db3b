package app

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Config описывает настройки запуска сервиса.
type Config struct {
	// HTTPAddr — адрес REST API.
	HTTPAddr string
	// MetricsAddr — адрес HTTP-сервера метрик и health checks.
	MetricsAddr string
	// PostgresDSN — строка подключения к PostgreSQL. Пустая строка
	// включает in-memory хранилище.
	PostgresDSN string
	// KafkaBrokers — список брокеров через запятую. Пустая строка
	// отключает публикацию событий.
	KafkaBrokers string
	// LogLevel — уровень логирования logrus.
	LogLevel string
}

// DefaultConfig возвращает базовые адреса сервиса.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		LogLevel:    "info",
	}
}

// LoadConfigFromEnv читает настройки из переменных окружения поверх значений
// по умолчанию.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if addr := os.Getenv("ECOM_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr := os.Getenv("ECOM_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}
	cfg.PostgresDSN = os.Getenv("ECOM_POSTGRES_DSN")
	cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	if level := os.Getenv("ECOM_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg
}

// ApplyLogLevel настраивает глобальный уровень logrus.
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("log_level", c.LogLevel).Warn("unknown log level, falling back to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
