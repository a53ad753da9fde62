package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL    = "http://localhost:8080"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "shortlink-client"
	DefaultLogLevel  = "info"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config содержит конфигурацию клиента
type Config struct {
	APIURL     string        `json:"api_url" env:"API_URL" validate:"required,http_url"`
	BaseURL    string        `json:"base_url" env:"BASE_URL" validate:"omitempty,http_url"`
	Timeout    time.Duration `json:"-" env:"API_TIMEOUT" validate:"gt=0"`
	UserAgent  string        `json:"user_agent" env:"USER_AGENT"`
	LogLevel   string        `json:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFile    string        `json:"log_file" env:"LOG_FILE"`
	StateLog   string        `json:"state_log_file" env:"STATE_LOG_FILE"`
	NotifyURL  string        `json:"notify_url" env:"NOTIFY_URL" validate:"omitempty,http_url"`
	StaleGuard bool          `json:"stale_guard" env:"STALE_GUARD"`
}

// NewConfig конфигурация со значениями по умолчанию
func NewConfig() *Config {
	return &Config{
		APIURL:    DefaultAPIURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		LogLevel:  DefaultLogLevel,
	}
}

// Load собирает конфигурацию: умолчания, JSON файл, окружение, флаги.
// Флаги подкоманды должны быть объявлены в fs до вызова, Load сам вызывает fs.Parse.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	c := NewConfig()
	if err := c.loadFromFile(getConfigPath(args)); err != nil {
		return nil, err
	}
	if err := c.getArgsFromEnv(); err != nil {
		return nil, err
	}

	c.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// BindFlags регистрирует общие флаги клиента, текущие значения становятся умолчаниями
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.APIURL, "api", c.APIURL, "API base URL")
	fs.StringVar(&c.BaseURL, "base", c.BaseURL, "base URL for displayed short links")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "per-request timeout")
	fs.StringVar(&c.UserAgent, "user-agent", c.UserAgent, "User-Agent header")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log file path (stderr if empty)")
	fs.StringVar(&c.StateLog, "state-log", c.StateLog, "append state events as JSON lines to file")
	fs.StringVar(&c.NotifyURL, "notify-url", c.NotifyURL, "POST state events to URL")
	fs.BoolVar(&c.StaleGuard, "stale-guard", c.StaleGuard, "drop completions of superseded calls")
	fs.String("c", "", "config file path")
	fs.String("config", "", "config file path")
}

// Validate проверяет итоговую конфигурацию
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetBaseURL адрес для показа коротких ссылок, по умолчанию адрес API
func (c Config) GetBaseURL() string {
	if c.BaseURL == "" {
		return c.APIURL
	}
	return c.BaseURL
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimSuffix(strings.TrimSpace(c.APIURL), "/")
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func getConfigPath(args []string) string {
	for i, arg := range args {
		switch {
		case (arg == "-c" || arg == "-config" || arg == "--config") && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "-c="):
			return strings.TrimPrefix(arg, "-c=")
		case strings.HasPrefix(arg, "-config="):
			return strings.TrimPrefix(arg, "-config=")
		}
	}
	return os.Getenv("CONFIG")
}

func (c *Config) loadFromFile(filename string) error {
	if filename == "" {
		return nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config %s: %w", filename, err)
	}

	// длительность в файле задаётся строкой вида "5s"
	file := struct {
		*Config
		Timeout string `json:"api_timeout"`
	}{Config: c}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("parse config %s: api_timeout: %w", filename, err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) getArgsFromEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
