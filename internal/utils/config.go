package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server
	AppPort     string `yaml:"APP_PORT"`
	AppTimezone string `yaml:"APP_TIMEZONE"`
	CORSOrigins string `yaml:"CORS_ALLOW_ORIGINS"`
	RateLimit   int    `yaml:"RATE_LIMIT_PER_SECOND"`

	// Database configuration
	DatabaseURL string `yaml:"DATABASE_URL"`
	DBUser      string `yaml:"DB_USER"`
	DBName      string `yaml:"DB_NAME"`
	DBPassword  string `yaml:"DB_PASSWORD"`
	DBPort      string `yaml:"DB_PORT"`
	DBHost      string `yaml:"DB_HOST"`
	DBSSLMode   string `yaml:"DB_SSLMODE"`

	// JWT
	JWTSecret     string `yaml:"JWT_SECRET"`
	JWTTTLMinutes int    `yaml:"JWT_TTL_MINUTES"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`
	AlertEmail       string `yaml:"ALERT_EMAIL"`

	// AWS S3 configuration
	AWSS3Bucket   string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region   string `yaml:"AWS_S3_REGION"`
	AWSAccessKey  string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey  string `yaml:"AWS_SECRET_KEY"`
	AWSS3Endpoint string `yaml:"AWS_S3_ENDPOINT"`

	// Gemini API configuration
	GeminiAPIKey     string `yaml:"GEMINI_API_KEY"`
	GeminiModel      string `yaml:"GEMINI_MODEL"`
	AITimeoutSeconds int    `yaml:"AI_TIMEOUT_SECONDS"`
	SkipPortion      bool   `yaml:"SKIP_PORTION_CLARIFICATION"`

	// Analysis cache
	RedisAddr     string `yaml:"REDIS_ADDR"`
	RedisPassword string `yaml:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"REDIS_DB"`

	// Logging
	LogLevel     string `yaml:"LOG_LEVEL"`
	LogFormat    string `yaml:"LOG_FORMAT"`
	LogFile      string `yaml:"LOG_FILE"`
	LogstashURL  string `yaml:"LOGSTASH_URL"`
	ElasticURL   string `yaml:"ELASTIC_URL"`
	ElasticIndex string `yaml:"ELASTIC_INDEX"`
}

func DefaultConfig() Config {
	return Config{
		AppPort:          "8080",
		AppTimezone:      "UTC",
		CORSOrigins:      "*",
		RateLimit:        20,
		DBPort:           "5432",
		DBSSLMode:        "disable",
		JWTTTLMinutes:    24 * 60,
		GeminiModel:      "gemini-1.5-flash",
		AITimeoutSeconds: 20,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// LoadConfig layers defaults, the optional YAML file, .env and finally the
// process environment. Missing files are not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(file, &cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	if err := applyEnv(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overrides every field whose yaml key is set in the environment.
func applyEnv(v *viper.Viper, cfg *Config) error {
	rv := reflect.ValueOf(cfg).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		key := rt.Field(i).Tag.Get("yaml")
		if key == "" || !v.IsSet(key) {
			continue
		}
		raw := strings.TrimSpace(v.GetString(key))
		field := rv.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			field.SetInt(int64(n))
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			field.SetBool(b)
		}
	}
	return nil
}

func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != "" || (c.DBHost != "" && c.DBName != "")
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) Location() (*time.Location, error) {
	if c.AppTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) AITimeout() time.Duration {
	if c.AITimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

func (c *Config) JWTTTL() time.Duration {
	if c.JWTTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c *Config) S3Configured() bool {
	return c.AWSS3Bucket != "" && c.AWSS3Region != ""
}

func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.AlertEmail != ""
}
