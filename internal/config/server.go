package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

const (
	DefaultServerAddr = ":8080"
	DefaultBaseURL    = "http://localhost:8080"
	DefaultCORSOrigin = "http://localhost:4200"
	DefaultRateLimit  = 20
	DefaultRateBurst  = 40
)

// ServerConfig конфигурация локального API
type ServerConfig struct {
	ServerAddr  string   `json:"server_address" env:"SERVER_ADDRESS" validate:"required"`
	BaseURL     string   `json:"base_url" env:"BASE_URL" validate:"required,http_url"`
	CORSOrigins []string `json:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	// RateLimit запросов в секунду с одного IP, 0 отключает ограничение
	RateLimit float64 `json:"rate_limit" env:"RATE_LIMIT" validate:"gte=0"`
	RateBurst int     `json:"rate_burst" env:"RATE_BURST" validate:"gte=0"`
	LogLevel  string  `json:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFile   string  `json:"log_file" env:"LOG_FILE"`
	// DatabaseDSN PostgreSQL для ссылок и переходов, пустая строка хранит всё в памяти
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:  DefaultServerAddr,
		BaseURL:     DefaultBaseURL,
		CORSOrigins: []string{DefaultCORSOrigin},
		RateLimit:   DefaultRateLimit,
		RateBurst:   DefaultRateBurst,
		LogLevel:    DefaultLogLevel,
	}
}

// LoadServer умолчания, JSON файл, окружение, флаги
func LoadServer(fs *flag.FlagSet, args []string) (*ServerConfig, error) {
	_ = godotenv.Load()

	c := NewServerConfig()
	if path := getConfigPath(args); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cors := strings.Join(c.CORSOrigins, ",")
	fs.StringVar(&c.ServerAddr, "a", c.ServerAddr, "server host")
	fs.StringVar(&c.BaseURL, "b", c.BaseURL, "base url for short links")
	fs.StringVar(&cors, "cors", cors, "comma separated allowed origins")
	fs.Float64Var(&c.RateLimit, "rate", c.RateLimit, "requests per second per IP, 0 disables")
	fs.IntVar(&c.RateBurst, "burst", c.RateBurst, "rate limiter burst")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log file path")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	fs.String("c", "", "config file path")
	fs.String("config", "", "config file path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c.CORSOrigins = splitOrigins(cors)
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (c ServerConfig) GetAddress() string {
	return c.ServerAddr
}

func (c ServerConfig) GetBaseURL() string {
	return c.BaseURL
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
