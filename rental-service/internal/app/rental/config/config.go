package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	UserStoreMongo    = "mongo"
	UserStorePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Auth      AuthConfig
	UserStore UserStoreConfig
	Cron      CronConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host      string // Адрес хоста (по умолчанию 0.0.0.0)
	Port      string // Порт сервера (по умолчанию 5001)
	BodyLimit int64  // Максимальный размер тела запроса в байтах
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      string
	Password  string
	DB        int
	ReportTTL time.Duration // Время жизни закешированной сводки
}

type KafkaConfig struct {
	Brokers []string // Пустой список отключает публикацию событий
	Topic   string
}

type JWTConfig struct {
	Secret        string
	TokenDuration time.Duration
}

type AuthConfig struct {
	Required bool // Требовать токен для изменяющих запросов
}

type UserStoreConfig struct {
	Driver   string // mongo | postgres
	Postgres PostgresConfig
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CronConfig struct {
	ReportRefresh string // Расписание пересчёта сводного отчёта
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "0.0.0.0"),
			Port:      getEnv("PORT", "5001"),
			BodyLimit: int64(getEnvInt("BODY_LIMIT_MB", 10)) << 20,
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "rental"),
		},
		Redis: RedisConfig{
			Enabled:   getEnvBool("REDIS_ENABLED", true),
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			ReportTTL: getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "rental_events"),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			TokenDuration: getEnvDuration("JWT_TOKEN_DURATION", 24*time.Hour),
		},
		Auth: AuthConfig{
			Required: getEnvBool("AUTH_REQUIRED", false),
		},
		UserStore: UserStoreConfig{
			Driver: strings.ToLower(getEnv("USER_STORE", UserStoreMongo)),
			Postgres: PostgresConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "postgres"),
				Password: getEnv("DB_PASSWORD", "postgres"),
				DBName:   getEnv("DB_NAME", "rental_users"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
		},
		Cron: CronConfig{
			ReportRefresh: getEnv("REPORT_REFRESH_SCHEDULE", "*/10 * * * *"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.UserStore.Driver {
	case UserStoreMongo, UserStorePostgres:
	default:
		return fmt.Errorf("unsupported USER_STORE %q: expected %q or %q", c.UserStore.Driver, UserStoreMongo, UserStorePostgres)
	}
	if c.Server.BodyLimit <= 0 {
		return errors.New("BODY_LIMIT_MB must be positive")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	return nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// DSN формирует строку подключения для pgx
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
