package app

import (
	"os"
	"strconv"
	"strings"
)

// StorageDriver определяет используемое хранилище заказов.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пустой список
	// отключает публикацию событий.
	KafkaBrokers string

	LogLevel string
}

// DefaultConfig возвращает конфигурацию для локального запуска:
// in-memory хранилище с предзаполненным каталогом блюд.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		LogLevel:            "info",
	}
}

// LoadConfigFromEnv читает конфигурацию из переменных окружения
// поверх значений по умолчанию. Наличие CAFE_POSTGRES_DSN
// переключает хранилище на postgres, если драйвер не задан явно.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("CAFE_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("CAFE_METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("CAFE_POSTGRES_DSN")); v != "" {
		cfg.PostgresDSN = v
		cfg.StorageDriver = StorageDriverPostgres
	}
	if v := strings.TrimSpace(os.Getenv("CAFE_STORAGE_DRIVER")); v != "" {
		cfg.StorageDriver = StorageDriver(v)
	}
	if v := strings.TrimSpace(os.Getenv("CAFE_POSTGRES_AUTO_MIGRATE")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := strings.TrimSpace(os.Getenv("CAFE_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}
