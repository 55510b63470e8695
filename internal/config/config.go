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
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		APIKeys     []string `yaml:"api_keys"`
		RateLimit   int      `yaml:"rate_limit"` // requests per minute per client, 0 = off
		CORSOrigins []string `yaml:"cors_origins"`
		MaxUploadMB int      `yaml:"max_upload_mb"`
	} `yaml:"server"`

	Store struct {
		Driver   string `yaml:"driver"` // memory | mysql | postgres | sqlite
		DSN      string `yaml:"dsn"`
		Database struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Name     string `yaml:"name"`
		} `yaml:"database"`
	} `yaml:"store"`

	Analysis struct {
		Workers   int           `yaml:"workers"`
		QueueSize int           `yaml:"queue_size"`
		Timeout   time.Duration `yaml:"timeout"`
		MaxCodeKB int           `yaml:"max_code_kb"`
	} `yaml:"analysis"`

	Storage struct {
		Driver    string `yaml:"driver"` // none | minio | s3
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"storage"`

	AI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"ai"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | text
		File   string `yaml:"file"`
	} `yaml:"logging"`
}

func Default() *Config {
	var c Config
	c.Server.Port = 5000
	c.Server.RateLimit = 120
	c.Server.CORSOrigins = []string{"*"}
	c.Server.MaxUploadMB = 10
	c.Store.Driver = "memory"
	c.Analysis.Workers = 4
	c.Analysis.QueueSize = 100
	c.Analysis.Timeout = 30 * time.Second
	c.Analysis.MaxCodeKB = 1024
	c.Storage.Driver = "none"
	c.Storage.Bucket = "codeguard-reports"
	c.Storage.Region = "us-east-1"
	c.AI.Model = "gpt-4o-mini"
	c.Logging.Level = "info"
	c.Logging.Format = "json"
	return &c
}

// Load baca file config.yaml; file tidak ada = pakai default
func Load(path string) (*Config, error) {
	// .env optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnv applies CODEGUARD_* overrides (and PORT / OPENAI_API_KEY).
func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	list := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			var out []string
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			*dst = out
		}
	}

	if err := num("PORT", &c.Server.Port); err != nil {
		return err
	}
	if err := num("CODEGUARD_PORT", &c.Server.Port); err != nil {
		return err
	}
	list("CODEGUARD_API_KEYS", &c.Server.APIKeys)
	list("CODEGUARD_CORS_ORIGINS", &c.Server.CORSOrigins)
	if err := num("CODEGUARD_RATE_LIMIT", &c.Server.RateLimit); err != nil {
		return err
	}

	str("CODEGUARD_STORE_DRIVER", &c.Store.Driver)
	str("CODEGUARD_STORE_DSN", &c.Store.DSN)
	str("CODEGUARD_DB_PASSWORD", &c.Store.Database.Password)

	if err := num("CODEGUARD_WORKERS", &c.Analysis.Workers); err != nil {
		return err
	}
	if v := os.Getenv("CODEGUARD_ANALYSIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CODEGUARD_ANALYSIS_TIMEOUT: %w", err)
		}
		c.Analysis.Timeout = d
	}

	str("CODEGUARD_STORAGE_DRIVER", &c.Storage.Driver)
	str("CODEGUARD_STORAGE_ENDPOINT", &c.Storage.Endpoint)
	str("CODEGUARD_STORAGE_ACCESS_KEY", &c.Storage.AccessKey)
	str("CODEGUARD_STORAGE_SECRET_KEY", &c.Storage.SecretKey)

	str("OPENAI_API_KEY", &c.AI.APIKey)
	str("CODEGUARD_AI_API_KEY", &c.AI.APIKey)
	str("CODEGUARD_AI_MODEL", &c.AI.Model)

	str("CODEGUARD_LOG_LEVEL", &c.Logging.Level)
	str("CODEGUARD_LOG_FORMAT", &c.Logging.Format)
	str("CODEGUARD_LOG_FILE", &c.Logging.File)
	return nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("store.driver %q not supported", c.Store.Driver)
	}
	switch c.Storage.Driver {
	case "", "none", "minio", "s3":
	default:
		return fmt.Errorf("storage.driver %q not supported", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = 1
	}
	if c.Analysis.QueueSize <= 0 {
		c.Analysis.QueueSize = c.Analysis.Workers
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	d := c.Store.Database
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

func (c *Config) PostgresDSN() string {
	d := c.Store.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// StoreDSN returns store.dsn when set, otherwise builds one for the driver.
func (c *Config) StoreDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	switch c.Store.Driver {
	case "mysql":
		return c.MySQLDSN()
	case "postgres":
		return c.PostgresDSN()
	case "sqlite":
		return "./data/codeguard.db"
	}
	return ""
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func (c *Config) MaxCodeBytes() int {
	return c.Analysis.MaxCodeKB << 10
}
