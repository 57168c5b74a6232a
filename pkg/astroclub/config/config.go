package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when ASTROCLUB_CONFIG is not set
const DefaultFile = "config.yaml"

// Config holds every runtime setting. It is built once in main and passed
// to the components that need it.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Redis    RedisConfig    `yaml:"redis"`
	Broker   BrokerConfig   `yaml:"broker"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port    string `yaml:"port"`
	Mode    string `yaml:"mode"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	Issuer string        `yaml:"issuer"`
}

type AuthConfig struct {
	BcryptCost    int    `yaml:"bcrypt_cost"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// UploadsConfig controls where uploaded images end up
type UploadsConfig struct {
	Driver       string `yaml:"driver"`
	Dir          string `yaml:"dir"`
	MaxFileBytes int64  `yaml:"max_file_bytes"`
	S3Bucket     string `yaml:"s3_bucket"`
	S3Region     string `yaml:"s3_region"`
	S3Endpoint   string `yaml:"s3_endpoint"`
	S3PublicURL  string `yaml:"s3_public_url"`
	S3AccessKey  string `yaml:"s3_access_key"`
	S3SecretKey  string `yaml:"s3_secret_key"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// BrokerConfig configures domain event publishing. An empty URL disables it.
type BrokerConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a Config populated with development defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "3000",
			Mode:    "debug",
			BaseURL: "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "astroclub.db",
		},
		JWT: JWTConfig{
			TTL:    7 * 24 * time.Hour,
			Issuer: "astroclub",
		},
		Auth: AuthConfig{
			BcryptCost: bcrypt.DefaultCost,
		},
		Uploads: UploadsConfig{
			Driver:       "local",
			Dir:          "uploads",
			MaxFileBytes: 10 << 20,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DefaultTTL: time.Hour,
		},
		Broker: BrokerConfig{
			Queue: "astroclub.events",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// process environment, in that order of precedence (environment wins).
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("ASTROCLUB_CONFIG")
	if path == "" {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Mode, "GIN_MODE")
	setString(&c.Server.BaseURL, "API_URL")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")

	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.JWT.Issuer, "JWT_ISSUER")
	if err := setDuration(&c.JWT.TTL, "JWT_TTL"); err != nil {
		return err
	}

	if err := setInt(&c.Auth.BcryptCost, "BCRYPT_COST"); err != nil {
		return err
	}
	setString(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")

	setString(&c.Uploads.Driver, "UPLOADS_DRIVER")
	setString(&c.Uploads.Dir, "UPLOADS_DIR")
	setString(&c.Uploads.S3Bucket, "S3_BUCKET")
	setString(&c.Uploads.S3Region, "S3_REGION")
	setString(&c.Uploads.S3Endpoint, "S3_ENDPOINT")
	setString(&c.Uploads.S3PublicURL, "S3_PUBLIC_URL")
	setString(&c.Uploads.S3AccessKey, "S3_ACCESS_KEY")
	setString(&c.Uploads.S3SecretKey, "S3_SECRET_KEY")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}

	setString(&c.Broker.URL, "RABBITMQ_URL")
	setString(&c.Broker.Queue, "RABBITMQ_QUEUE")

	setString(&c.Logging.Level, "LOG_LEVEL")
	if v, ok := lookup("LOG_PRETTY"); ok {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid bool for LOG_PRETTY: %q", v)
		}
		c.Logging.Pretty = pretty
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if c.Server.Mode == "release" {
			return errors.New("JWT_SECRET is required in release mode")
		}
		c.JWT.Secret = "astroclub-dev-secret-change-in-production"
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Uploads.Driver {
	case "local":
		if c.Uploads.Dir == "" {
			return errors.New("uploads dir is required for the local driver")
		}
	case "s3":
		if c.Uploads.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 uploads driver")
		}
	default:
		return fmt.Errorf("unsupported uploads driver %q", c.Uploads.Driver)
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid int for %s: %q", key, v)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %q", key, v)
	}
	*dst = d
	return nil
}
