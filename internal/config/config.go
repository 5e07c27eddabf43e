package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Worker   WorkerConfig
	Session  SessionConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type GeminiConfig struct {
	APIKey              string
	APIKeyFile          string
	Model               string
	Timeout             time.Duration
	MaxAttempts         int
	RetryDelay          time.Duration
	AnalyzeTemperature  float32
	OptimizeTemperature float32
	Language            string
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type LogConfig struct {
	JSON          bool
	Debug         bool
	MaxPreviewLen int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and defaults.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", true),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cv_master_ats"),
		},
		Gemini: GeminiConfig{
			APIKey:              getEnv("GEMINI_API_KEY", ""),
			APIKeyFile:          getEnv("GEMINI_API_KEY_FILE", ""),
			Model:               getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:             getEnvAsDuration("GEMINI_TIMEOUT", "90s"),
			MaxAttempts:         getEnvAsInt("GEMINI_MAX_ATTEMPTS", 1),
			RetryDelay:          getEnvAsDuration("GEMINI_RETRY_DELAY", "2s"),
			AnalyzeTemperature:  getEnvAsFloat32("ANALYZE_TEMPERATURE", 0.2),
			OptimizeTemperature: getEnvAsFloat32("OPTIMIZE_TEMPERATURE", 0.4),
			Language:            getEnv("RESPONSE_LANGUAGE", "English"),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:   getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
		Session: SessionConfig{
			TTL:           getEnvAsDuration("SESSION_TTL", "2h"),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", "1m"),
		},
		Log: LogConfig{
			JSON:          getEnvAsBool("LOG_JSON", false),
			Debug:         getEnvAsBool("LOG_DEBUG", false),
			MaxPreviewLen: getEnvAsInt("LOG_MAX_PREVIEW", 200),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		errs = append(errs, errors.New("GEMINI_MODEL must not be empty"))
	}
	if c.Gemini.Timeout <= 0 {
		errs = append(errs, errors.New("GEMINI_TIMEOUT must be positive"))
	}
	if c.Gemini.MaxAttempts < 1 {
		errs = append(errs, errors.New("GEMINI_MAX_ATTEMPTS must be at least 1"))
	}
	if !validTemperature(c.Gemini.AnalyzeTemperature) {
		errs = append(errs, errors.New("ANALYZE_TEMPERATURE must be within [0, 2]"))
	}
	if !validTemperature(c.Gemini.OptimizeTemperature) {
		errs = append(errs, errors.New("OPTIMIZE_TEMPERATURE must be within [0, 2]"))
	}
	if c.Worker.Concurrency <= 0 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be positive"))
	}
	if c.Worker.QueueSize <= 0 {
		errs = append(errs, errors.New("WORKER_QUEUE_SIZE must be positive"))
	}
	if c.Session.TTL <= 0 || c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func validTemperature(t float32) bool {
	return t >= 0 && t <= 2
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
