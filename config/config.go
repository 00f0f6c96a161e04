// Package config loads settings shared by the gallery server and client.
// Values come from an optional YAML file, then GALLERY_* environment
// variables, then defaults for anything still empty.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server Server `yaml:"server"`
	Client Client `yaml:"client"`
}

type Server struct {
	Addr      string  `yaml:"addr"`
	DBPath    string  `yaml:"db_path"`
	UploadDir string  `yaml:"upload_dir"`
	PublicURL string  `yaml:"public_url"`
	LogFormat string  `yaml:"log_format"`
	LogLevel  string  `yaml:"log_level"`
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
	Minio     Minio   `yaml:"minio"`
}

// Minio switches uploads to object storage when Endpoint is set.
type Minio struct {
	Endpoint  string `yaml:"endpoint"`
	KeyID     string `yaml:"key_id"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

type Client struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	LogFile string `yaml:"log_file"`
}

// Load reads path (if non-empty) and applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	str("GALLERY_ADDR", &c.Server.Addr)
	str("GALLERY_DB_PATH", &c.Server.DBPath)
	str("GALLERY_UPLOAD_DIR", &c.Server.UploadDir)
	str("GALLERY_PUBLIC_URL", &c.Server.PublicURL)
	str("GALLERY_LOG_FORMAT", &c.Server.LogFormat)
	str("GALLERY_LOG_LEVEL", &c.Server.LogLevel)
	str("GALLERY_MINIO_ENDPOINT", &c.Server.Minio.Endpoint)
	str("GALLERY_MINIO_KEY_ID", &c.Server.Minio.KeyID)
	str("GALLERY_MINIO_SECRET_KEY", &c.Server.Minio.SecretKey)
	str("GALLERY_MINIO_BUCKET", &c.Server.Minio.Bucket)
	str("GALLERY_BASE_URL", &c.Client.BaseURL)
	str("GALLERY_TOKEN", &c.Client.Token)
	str("GALLERY_LOG_FILE", &c.Client.LogFile)

	if v, ok := lookup("GALLERY_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("GALLERY_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = f
	}
	if v, ok := lookup("GALLERY_RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GALLERY_RATE_BURST: %w", err)
		}
		c.Server.RateBurst = n
	}
	if v, ok := lookup("GALLERY_MINIO_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GALLERY_MINIO_SECURE: %w", err)
		}
		c.Server.Minio.Secure = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = "database/gallery.db"
	}
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = "uploads"
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = "http://localhost" + c.Server.Addr
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "text"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 20
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 40
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:8080"
	}
	if c.Client.LogFile == "" {
		c.Client.LogFile = "gallery.log"
	}
}
