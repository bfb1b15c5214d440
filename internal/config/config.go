package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port            string        `yaml:"port"`
	StoreDriver     string        `yaml:"store_driver"`
	MongoURI        string        `yaml:"mongodb_uri"`
	DBUsername      string        `yaml:"db_username"`
	DBPassword      string        `yaml:"db_password"`
	DBHost          string        `yaml:"db_host"`
	DBAppName       string        `yaml:"db_app_name"`
	DBName          string        `yaml:"db_name"`
	SQLiteDSN       string        `yaml:"sqlite_dsn"`
	StoreTimeout    time.Duration `yaml:"store_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RedisAddr       string        `yaml:"redis_addr"`
	IdempotencyTTL  time.Duration `yaml:"idempotency_ttl"`
	SearchLiteral   bool          `yaml:"search_literal"`
	SeedDemo        bool          `yaml:"seed_demo"`
	LogFile         string        `yaml:"log_file"`
}

func Defaults() Config {
	return Config{
		Port:            "3000",
		StoreDriver:     DriverMongo,
		DBHost:          "smartdeals.wzjrdtw.mongodb.net",
		DBAppName:       "smartDeals",
		DBName:          "exportImportdb",
		SQLiteDSN:       "exportimport.db",
		StoreTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		IdempotencyTTL:  30 * time.Minute,
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the environment.
// Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[warn] could not read .env: %v", err)
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.MongoURI == "" && cfg.StoreDriver == DriverMongo {
		cfg.MongoURI = buildMongoURI(cfg)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	log.Printf("[config] PORT=%s STORE_DRIVER=%s DB_NAME=%s STORE_TIMEOUT=%s REDIS_ADDR=%s LOG_FILE=%s",
		cfg.Port, cfg.StoreDriver, cfg.DBName, cfg.StoreTimeout, cfg.RedisAddr, cfg.LogFile)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("STORE_DRIVER", &cfg.StoreDriver)
	str("MONGODB_URI", &cfg.MongoURI)
	str("DB_USERNAME", &cfg.DBUsername)
	str("DB_PASSWORD", &cfg.DBPassword)
	str("DB_HOST", &cfg.DBHost)
	str("DB_APP_NAME", &cfg.DBAppName)
	str("DB_NAME", &cfg.DBName)
	str("SQLITE_DSN", &cfg.SQLiteDSN)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("LOG_FILE", &cfg.LogFile)

	for key, dst := range map[string]*time.Duration{
		"STORE_TIMEOUT":    &cfg.StoreTimeout,
		"SHUTDOWN_TIMEOUT": &cfg.ShutdownTimeout,
		"IDEMPOTENCY_TTL":  &cfg.IdempotencyTTL,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	for key, dst := range map[string]*bool{
		"SEARCH_LITERAL": &cfg.SearchLiteral,
		"SEED_DEMO":      &cfg.SeedDemo,
	} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func buildMongoURI(cfg Config) string {
	u := url.URL{Scheme: "mongodb+srv", Host: cfg.DBHost, Path: "/"}
	if cfg.DBUsername != "" {
		u.User = url.UserPassword(cfg.DBUsername, cfg.DBPassword)
	}
	if cfg.DBAppName != "" {
		u.RawQuery = url.Values{"appName": {cfg.DBAppName}}.Encode()
	}
	return u.String()
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverSQLite, c.StoreDriver)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	return nil
}
