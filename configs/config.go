package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Notification NotificationConfig
	Stream       StreamConfig
	Log          LogConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	Environment    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

// NotificationConfig selects and parameterizes the notifier. Mode "email"
// dispatches through SendGrid; mode "stream" publishes the rendered payload
// onto the NOTIFICATION stream for a downstream mailer.
type NotificationConfig struct {
	Mode           string
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	// Template ids forwarded to the downstream mailer in stream mode.
	TemplateEmailVerification string
	TemplateResetPassword     string
	// Per-action link bases; the urlsafe-base64 secret is appended.
	URLEmailVerification      string
	URLOwnerEmailVerification string
	URLResetPassword          string
}

type StreamConfig struct {
	OwnerStream        string
	NotificationStream string
	Group              string
	Consumer           string
	BatchSize          int64
	BlockTimeout       time.Duration
	ClaimMinIdle       time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "auth-service"
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			AllowedOrigins: strings.Split(
				getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "auth_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Notification: NotificationConfig{
			Mode:                      getEnv("NOTIFICATION_MODE", "email"),
			SendGridAPIKey:            getEnv("SENDGRID_API_KEY", ""),
			FromEmail:                 getEnv("FROM_EMAIL", "noreply@sima.org.br"),
			FromName:                  getEnv("FROM_NAME", "SIMA"),
			TemplateEmailVerification: getEnv("TEMPLATE_EMAIL_VERIFICATION", "email_verification"),
			TemplateResetPassword:     getEnv("TEMPLATE_RESET_PASSWORD", "reset_password"),
			URLEmailVerification:      getEnvRequired("URL_EMAIL_VERIFICATION"),
			URLOwnerEmailVerification: getEnvRequired("URL_OWNER_EMAIL_VERIFICATION"),
			URLResetPassword:          getEnvRequired("URL_RESET_PASSWORD"),
		},
		Stream: StreamConfig{
			OwnerStream:        getEnv("OWNER_STREAM", "NEW_OWNER"),
			NotificationStream: getEnv("NOTIFICATION_STREAM", "NOTIFICATION"),
			Group:              getEnv("CONSUMER_GROUP", "AUTH"),
			Consumer:           getEnv("CONSUMER_NAME", hostname),
			BatchSize:          int64(getIntEnv("CONSUMER_BATCH_SIZE", 10)),
			BlockTimeout:       getDurationEnv("CONSUMER_BLOCK_TIMEOUT", 5*time.Second),
			ClaimMinIdle:       getDurationEnv("CONSUMER_CLAIM_MIN_IDLE", time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Notification.Mode == "email" && cfg.Notification.SendGridAPIKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is required when NOTIFICATION_MODE=email")
	}

	// Build database DSN
	cfg.Database.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
