package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var (
	// ErrInvalidConfig возвращается, если конфигурация не прошла проверку
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Redis    RedisConfig    `toml:"redis"`
	Import   ImportConfig   `toml:"import"`
	Storage  StorageConfig  `toml:"storage"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int   `toml:"http_port"`
	ReadTimeout     int   `toml:"read_timeout"`
	WriteTimeout    int   `toml:"write_timeout"`
	IdleTimeout     int   `toml:"idle_timeout"`
	ShutdownTimeout int   `toml:"shutdown_timeout"`
	MaxUploadBytes  int64 `toml:"max_upload_bytes"`
}

// DatabaseConfig настройки PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// RedisConfig настройки кеша списков
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      int    `toml:"ttl"` // секунды
}

// ImportConfig настройки импорта фида
type ImportConfig struct {
	FeedURL        string `toml:"feed_url"` // пусто - периодический импорт выключен
	FeedToken      string `toml:"feed_token"`
	Cron           string `toml:"cron"`
	Timeout        int    `toml:"timeout"` // секунды на один прогон
	MaxFeedBytes   int64  `toml:"max_feed_bytes"`
	RunOnStart     bool   `toml:"run_on_start"`
	AllowOvernight bool   `toml:"allow_overnight"`
	PhoneRegion    string `toml:"phone_region"`
}

// FeedEnabled возвращает true, если задан адрес фида
func (c ImportConfig) FeedEnabled() bool {
	return strings.TrimSpace(c.FeedURL) != ""
}

// StorageConfig выбор хранилища
type StorageConfig struct {
	Driver string `toml:"driver"` // postgres | memory
}

// Load читает config.toml и накладывает переменные окружения (и .env, если он есть)
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, ".env")
}

// LoadWithEnv как Load, но с явным путем к .env файлу
func LoadWithEnv(path, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envPath, err)
		}
	}

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    60,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
			MaxUploadBytes:  32 << 20,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			AutoMigrate:     true,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			ServiceName: "branch-directory",
			Path:        "/metrics",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  300,
		},
		Import: ImportConfig{
			Cron:         "0 3 * * *",
			Timeout:      120,
			MaxFeedBytes: 64 << 20,
			PhoneRegion:  "UA",
		},
		Storage: StorageConfig{
			Driver: StorageDriverPostgres,
		},
	}
}

// applyEnv секреты и адреса из окружения имеют приоритет над файлом
func (c *Config) applyEnv() {
	overlay := map[string]*string{
		"DB_HOST":        &c.Database.Host,
		"DB_USER":        &c.Database.User,
		"DB_PASSWORD":    &c.Database.Password,
		"DB_NAME":        &c.Database.DBName,
		"REDIS_ADDR":     &c.Redis.Addr,
		"REDIS_PASSWORD": &c.Redis.Password,
		"FEED_URL":       &c.Import.FeedURL,
		"FEED_TOKEN":     &c.Import.FeedToken,
		"STORAGE_DRIVER": &c.Storage.Driver,
	}

	for name, dst := range overlay {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}
	if c.Server.MaxUploadBytes <= 0 {
		problems = append(problems, "server.max_upload_bytes must be positive")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" {
			problems = append(problems, "database.host is required")
		}
		if c.Database.DBName == "" {
			problems = append(problems, "database.dbname is required")
		}
		if c.Database.User == "" {
			problems = append(problems, "database.user is required")
		}
	case StorageDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("storage.driver %q is not supported", c.Storage.Driver))
	}

	if c.Metrics.Enabled && c.Metrics.ServiceName == "" {
		problems = append(problems, "metrics.service_name is required when metrics are enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, "redis.addr is required when redis is enabled")
	}

	if c.Import.FeedEnabled() {
		if strings.TrimSpace(c.Import.Cron) == "" {
			problems = append(problems, "import.cron is required when import.feed_url is set")
		}
		if c.Import.Timeout <= 0 {
			problems = append(problems, "import.timeout must be positive")
		}
		if c.Import.MaxFeedBytes <= 0 {
			problems = append(problems, "import.max_feed_bytes must be positive")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
