package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Neo4j    Neo4jConfig
	JWT      JWTConfig
	Backup   BackupConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StoreConfig struct {
	Backend          string
	SaveRetries      int
	SaveRetryDelay   time.Duration
	AutosaveInterval time.Duration
	SeedSampleData   bool
}

type Neo4jConfig struct {
	URI      string
	User     string
	Password string
}

type JWTConfig struct {
	Secret     string
	Expiration string
}

type BackupConfig struct {
	Provider string
	Path     string
	Interval time.Duration
	S3       S3Config
}

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Prefix          string
	Endpoint        string
	ForcePathStyle  bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "./data/organizer.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "task_organizer"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Store: StoreConfig{
			Backend:          getEnv("STORE_BACKEND", "gorm"),
			SaveRetries:      getEnvAsInt("SAVE_RETRIES", 3),
			SaveRetryDelay:   time.Duration(getEnvAsInt("SAVE_RETRY_DELAY_MS", 200)) * time.Millisecond,
			AutosaveInterval: time.Duration(getEnvAsInt("AUTOSAVE_INTERVAL_SECONDS", 30)) * time.Second,
			SeedSampleData:   getEnvAsBool("SEED_SAMPLE_DATA", true),
		},
		Neo4j: Neo4jConfig{
			URI:      getEnv("NEO4J_URI", "neo4j://localhost:7687"),
			User:     getEnv("NEO4J_USER", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", "password"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: getEnv("JWT_EXPIRATION", "24h"),
		},
		Backup: BackupConfig{
			Provider: getEnv("BACKUP_PROVIDER", "local"),
			Path:     getEnv("BACKUP_PATH", "./data/backups"),
			Interval: time.Duration(getEnvAsInt("BACKUP_INTERVAL_MINUTES", 0)) * time.Minute,
			S3: S3Config{
				Region:          getEnv("AWS_REGION", "us-east-1"),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				BucketName:      getEnv("AWS_BUCKET_NAME", ""),
				Prefix:          getEnv("AWS_BACKUP_PREFIX", "organizer/"),
				Endpoint:        getEnv("AWS_ENDPOINT", ""),
				ForcePathStyle:  getEnvAsBool("AWS_FORCE_PATH_STYLE", false),
			},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects unknown backend and driver names.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Store.Backend {
	case "gorm", "neo4j":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Backup.Provider {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown BACKUP_PROVIDER %q", c.Backup.Provider)
	}
	if _, err := c.JWT.TTL(); err != nil {
		return err
	}
	return nil
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// TTL parses the token expiration.
func (j *JWTConfig) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(j.Expiration)
	if err != nil {
		return 0, fmt.Errorf("invalid JWT_EXPIRATION %q: %v", j.Expiration, err)
	}
	return d, nil
}

// AuthEnabled reports whether API requests need a bearer token.
func (j *JWTConfig) AuthEnabled() bool {
	return j.Secret != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
