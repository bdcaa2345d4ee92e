package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mindweb/internal/logger"
)

const DefaultPath = "config.yml"

type Config struct {
	Env        string        `yaml:"env" env:"APP_ENV"`
	ListenAddr string        `yaml:"listen_addr" env:"LISTEN_ADDR"`
	Store      StoreConfig   `yaml:"store"`
	Workers    WorkerConfig  `yaml:"workers"`
	Fetch      FetchConfig   `yaml:"fetch"`
	Summary    SummaryConfig `yaml:"summary"`
	LLM        LLMConfig     `yaml:"llm"`
	Logging    logger.Config `yaml:"logging"`
}

type StoreConfig struct {
	// Backend is one of memory, redis, postgres.
	Backend     string `yaml:"backend" env:"STORE_BACKEND"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPass   string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB     int    `yaml:"redis_db" env:"REDIS_DB"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

type WorkerConfig struct {
	Count      int           `yaml:"count" env:"SCRAPE_WORKERS"`
	QueueSize  int           `yaml:"queue_size" env:"SCRAPE_QUEUE_SIZE"`
	JobTimeout time.Duration `yaml:"job_timeout" env:"JOB_TIMEOUT"`
}

type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout" env:"FETCH_TIMEOUT"`
	UserAgent    string        `yaml:"user_agent" env:"FETCH_USER_AGENT"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"FETCH_MAX_BODY_BYTES"`
	Retries      int           `yaml:"retries" env:"FETCH_RETRIES"`
}

type SummaryConfig struct {
	DefaultLength int `yaml:"default_length" env:"SUMMARY_DEFAULT_LENGTH"`
	MaxLength     int `yaml:"max_length" env:"SUMMARY_MAX_LENGTH"`
}

type LLMConfig struct {
	APIKey    string        `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	Model     string        `yaml:"model" env:"ANTHROPIC_MODEL"`
	MaxTokens int           `yaml:"max_tokens" env:"ANTHROPIC_MAX_TOKENS"`
	Timeout   time.Duration `yaml:"timeout" env:"ANTHROPIC_TIMEOUT"`
}

// Enabled reports whether the model-backed summarizer should be wired.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

func (c *Config) SetDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = "localhost:6379"
	}
	if c.Store.RedisPrefix == "" {
		c.Store.RedisPrefix = "mindweb"
	}
	if c.Workers.Count == 0 {
		c.Workers.Count = 4
	}
	if c.Workers.QueueSize == 0 {
		c.Workers.QueueSize = 256
	}
	if c.Workers.JobTimeout == 0 {
		c.Workers.JobTimeout = 60 * time.Second
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 20 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Fetch.MaxBodyBytes == 0 {
		c.Fetch.MaxBodyBytes = 5 << 20
	}
	if c.Summary.DefaultLength == 0 {
		c.Summary.DefaultLength = 300
	}
	if c.Summary.MaxLength == 0 {
		c.Summary.MaxLength = 2000
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "claude-3-5-haiku-latest"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	c.Logging.SetDefaults()
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "redis":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Workers.Count < 1 {
		return fmt.Errorf("workers.count must be positive, got %d", c.Workers.Count)
	}
	if c.Summary.DefaultLength > c.Summary.MaxLength {
		return fmt.Errorf("summary.default_length %d exceeds summary.max_length %d", c.Summary.DefaultLength, c.Summary.MaxLength)
	}
	return nil
}

// Path returns the config file path from CONFIG_PATH, or DefaultPath.
func Path() string {
	return getenv("CONFIG_PATH", DefaultPath)
}

// Load reads .env files, the YAML file at path (optional), defaults and
// environment overrides, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env + defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return &cfg, err
	}
	return &cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg any) {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field)
			continue
		}
		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		if val := os.Getenv(key); val != "" {
			setField(field, val)
		}
	}
}

func setField(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Bool:
		s := strings.ToLower(strings.TrimSpace(val))
		field.SetBool(s == "true" || s == "1" || s == "yes")
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(val, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
}
