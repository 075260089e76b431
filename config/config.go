// Package config loads the service configuration from YAML with env overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "NEWSCLF_"

type Config struct {
	Http   HttpConfig   `yaml:"http"`
	Models ModelsConfig `yaml:"models"`
	Log    LogConfig    `yaml:"log"`
}

type HttpConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

// ModelsConfig locates the three serialized artifacts.
type ModelsConfig struct {
	Dir             string `yaml:"dir"`
	TransformerFile string `yaml:"transformer_file"`
	ClassifierFile  string `yaml:"classifier_file"`
	DecoderFile     string `yaml:"decoder_file"`
	Watch           bool   `yaml:"watch"`
	CacheSize       int    `yaml:"cache_size"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Http: HttpConfig{
			Host:    "0.0.0.0",
			Port:    8000,
			Timeout: 30 * time.Second,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://frontend:3000",
			},
			MaxBodyBytes: 1 << 20,
		},
		Models: ModelsConfig{
			Dir:             "models",
			TransformerFile: "tfidf_vectorizer.json",
			ClassifierFile:  "svm_model.json",
			DecoderFile:     "label_encoder.json",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads path on top of the defaults and then applies NEWSCLF_* env
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("open config: %w", err)
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http.port %d", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return fmt.Errorf("invalid http.timeout %s", c.Http.Timeout)
	}
	if c.Models.Dir == "" {
		return errors.New("models.dir is required")
	}
	if c.Models.TransformerFile == "" || c.Models.ClassifierFile == "" || c.Models.DecoderFile == "" {
		return errors.New("models.*_file names must not be empty")
	}
	if c.Models.CacheSize < 0 {
		return fmt.Errorf("invalid models.cache_size %d", c.Models.CacheSize)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Http.Host, c.Http.Port)
}

// ArtifactPaths returns the transformer, classifier and decoder file paths.
func (m ModelsConfig) ArtifactPaths() (transformer, classifier, decoder string) {
	return filepath.Join(m.Dir, m.TransformerFile),
		filepath.Join(m.Dir, m.ClassifierFile),
		filepath.Join(m.Dir, m.DecoderFile)
}

func applyEnv(cfg *Config) error {
	var err error
	setString("HTTP_HOST", &cfg.Http.Host)
	if err = setInt("HTTP_PORT", &cfg.Http.Port); err != nil {
		return err
	}
	if v, ok := lookup("HTTP_TIMEOUT"); ok {
		d, perr := time.ParseDuration(v)
		if perr != nil {
			return fmt.Errorf("%sHTTP_TIMEOUT: %w", EnvPrefix, perr)
		}
		cfg.Http.Timeout = d
	}
	if v, ok := lookup("HTTP_ALLOWED_ORIGINS"); ok {
		cfg.Http.AllowedOrigins = splitList(v)
	}

	setString("MODELS_DIR", &cfg.Models.Dir)
	setString("MODELS_TRANSFORMER_FILE", &cfg.Models.TransformerFile)
	setString("MODELS_CLASSIFIER_FILE", &cfg.Models.ClassifierFile)
	setString("MODELS_DECODER_FILE", &cfg.Models.DecoderFile)
	if v, ok := lookup("MODELS_WATCH"); ok {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return fmt.Errorf("%sMODELS_WATCH: %w", EnvPrefix, perr)
		}
		cfg.Models.Watch = b
	}
	if err = setInt("MODELS_CACHE_SIZE", &cfg.Models.CacheSize); err != nil {
		return err
	}

	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
	setString("LOG_FILE", &cfg.Log.File)
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
