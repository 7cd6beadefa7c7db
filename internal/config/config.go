// Package config loads the closed, recognised configuration set for the
// pipeline from the environment. Every key here corresponds to one named in
// spec §6; there is no open-ended config surface.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	S3       S3Config
	Sentry   SentryConfig
	Mailer   MailerConfig
	Operator OperatorConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server configuration. Keys: host, port.
type ServerConfig struct {
	Host string
	Port string
	Env  string
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds the operator-session JWT configuration.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// S3Config holds optional S3-compatible artifact storage configuration.
// When Endpoint/Bucket are empty, artifacts stay on the local filesystem.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// SentryConfig holds error-monitoring configuration.
type SentryConfig struct {
	DSN         string
	Environment string
}

// MailerConfig holds operator-notification email configuration.
type MailerConfig struct {
	APIKey        string
	FromAddress   string
	OperatorEmail string
}

// OperatorConfig holds the single operator account's login credential (spec
// §6: "the teacher's richer multi-user auth module is collapsed to a single
// bcrypt-hashed operator credential plus JWT session"). The login identity
// itself is Mailer.OperatorEmail — one deployment, one operator, one email
// serving both as notification target and login name.
type OperatorConfig struct {
	PasswordHash string
}

// LLMConfig holds the `generate_json` backend configuration. Keys:
// anthropic_api_key, anthropic_model, cv_rewrite_temperature,
// cv_summary_temperature, quality_score_minimum.
type LLMConfig struct {
	APIKey               string
	Model                string
	CVRewriteTemperature float64
	CVSummaryTemperature float64
	QualityScoreMinimum  float64
}

// PipelineConfig holds the remaining closed recognised keys from spec §6:
// scraper delays/session limits, consecutive-zero threshold, human review
// timers, submit confirmation timeout, and retention windows.
type PipelineConfig struct {
	ScraperDefaultDelayMin        time.Duration
	ScraperDefaultDelayMax        time.Duration
	ScraperSessionMaxMinutes      int
	ScraperSessionMaxJobs         int
	ScraperConsecutiveZeroDisable int
	HumanReviewTimeoutMinutes     int
	HumanReviewWarnMinutes        int
	SubmitConfirmTimeoutSeconds   int
	JobsRetentionDays             int
	ApplicationsRetentionDays     int
	LogsRetentionDays             int
	BackupsRollingDays            int
	SetupComplete                 bool
	ArtifactsDir                  string
	BackupsDir                    string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "canje"),
			Password:        getEnv("DB_PASSWORD", "canje"),
			DBName:          getEnv("DB_NAME", "canje"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "eu-central"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Environment: getEnv("SERVER_ENV", "development"),
		},
		Mailer: MailerConfig{
			APIKey:        getEnv("RESEND_API_KEY", ""),
			FromAddress:   getEnv("RESEND_FROM_ADDRESS", "pipeline@canje.example.com"),
			OperatorEmail: getEnv("OPERATOR_EMAIL", ""),
		},
		Operator: OperatorConfig{
			PasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		},
		LLM: LLMConfig{
			APIKey:               getEnv("ANTHROPIC_API_KEY", ""),
			Model:                getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
			CVRewriteTemperature: getEnvAsFloat("CV_REWRITE_TEMPERATURE", 0.3),
			CVSummaryTemperature: getEnvAsFloat("CV_SUMMARY_TEMPERATURE", 0.5),
			QualityScoreMinimum:  getEnvAsFloat("QUALITY_SCORE_MINIMUM", 7.0),
		},
		Pipeline: PipelineConfig{
			ScraperDefaultDelayMin:        getEnvAsDuration("SCRAPER_DEFAULT_DELAY_MIN", 3*time.Second),
			ScraperDefaultDelayMax:        getEnvAsDuration("SCRAPER_DEFAULT_DELAY_MAX", 8*time.Second),
			ScraperSessionMaxMinutes:      getEnvAsInt("SCRAPER_SESSION_MAX_MINUTES", 30),
			ScraperSessionMaxJobs:         getEnvAsInt("SCRAPER_SESSION_MAX_JOBS", 500),
			ScraperConsecutiveZeroDisable: getEnvAsInt("SCRAPER_CONSECUTIVE_ZERO_DISABLE", 5),
			HumanReviewTimeoutMinutes:     getEnvAsInt("HUMAN_REVIEW_TIMEOUT_MINUTES", 30),
			HumanReviewWarnMinutes:        getEnvAsInt("HUMAN_REVIEW_WARN_MINUTES", 25),
			SubmitConfirmTimeoutSeconds:   getEnvAsInt("SUBMIT_CONFIRM_TIMEOUT_SECONDS", 10),
			JobsRetentionDays:             getEnvAsInt("JOBS_RETENTION_DAYS", 90),
			ApplicationsRetentionDays:     getEnvAsInt("APPLICATIONS_RETENTION_DAYS", 365),
			LogsRetentionDays:             getEnvAsInt("LOGS_RETENTION_DAYS", 30),
			BackupsRollingDays:            getEnvAsInt("BACKUPS_ROLLING_DAYS", 14),
			SetupComplete:                 getEnvAsBool("SETUP_COMPLETE", false),
			ArtifactsDir:                  getEnv("ARTIFACTS_DIR", "./data/artifacts"),
			BackupsDir:                    getEnv("BACKUPS_DIR", "./data/backups"),
		},
	}

	if cfg.JWT.AccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	return cfg, nil
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the Redis address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
