package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Secrets are read from the environment after the file, so they can stay out of YAML.
const (
	envAdminSecret      = "ADMIN_SECRET"
	envDatabasePassword = "DATABASE_PASSWORD"
	envRedisPassword    = "REDIS_PASSWORD"
)

// maxShortCodeLength leaves room for the one-character fallback within VARCHAR(16).
const maxShortCodeLength = 15

type Config struct {
	Env             string   `yaml:"env"`
	BaseURL         string   `yaml:"base_url"`
	ShortCodeLength int      `yaml:"short_code_length"`
	AdminSecret     string   `yaml:"admin_secret"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	BlockedHosts    []string `yaml:"blocked_hosts"`
	HTTPServer      `yaml:"http_server"`
	Postgres        `yaml:"postgres"`
	Redis           `yaml:"redis"`
	RateLimit       `yaml:"rate_limit"`
	Logger          `yaml:"logger"`
}

type HTTPServer struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`
	CertFile        string        `yaml:"cert_file"`
	KeyFile         string        `yaml:"key_file"`
	// TrustProxyHeaders resolves client addresses from X-Forwarded-For and X-Real-IP.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

var defaultHTTPServer = HTTPServer{
	Port:            8080,
	ReadTimeout:     5 * time.Second,
	WriteTimeout:    10 * time.Second,
	IdleTimeout:     time.Minute,
	ShutdownTimeout: 10 * time.Second,
	MaxHeaderBytes:  1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	ConnectAttempts int           `yaml:"connect_attempts"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
	QueryTimeout:    3 * time.Second,
	ConnectAttempts: 5,
}

func (p *Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     p.DB,
		RawQuery: "sslmode=" + p.SSLMode,
	}

	return u.String()
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var defaultRedis = Redis{
	Addr: "localhost:6379",
}

type RateLimit struct {
	Enabled  bool          `yaml:"enabled"`
	Backend  string        `yaml:"backend"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

var defaultRateLimit = RateLimit{
	Enabled:  true,
	Backend:  RateLimitMemory,
	Requests: 100,
	Window:   15 * time.Minute,
}

type Logger struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	Concise    bool   `yaml:"concise"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

var defaultLogger = Logger{
	Level:      "info",
	MaxSizeMB:  100,
	MaxBackups: 7,
	MaxAgeDays: 28,
}

const envConfigPath = "CONFIG_PATH"

// loadDotEnv loads .env from the working directory if it exists.
// Variables already set in the environment win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// Path returns CONFIG_PATH, also looking into .env, or fallback when it is unset.
func Path(fallback string) (string, error) {
	const op = "config.Path"

	if err := loadDotEnv(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if path := os.Getenv(envConfigPath); path != "" {
		return path, nil
	}

	return fallback, nil
}

// Load reads a best-effort .env file, decodes the YAML config at path over the
// defaults and applies secret overrides from the environment.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BaseURL = "http://localhost:8080"
	cfg.ShortCodeLength = 7
	cfg.AllowedOrigins = []string{"*"}
	cfg.BlockedHosts = []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"}
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Redis = defaultRedis
	cfg.RateLimit = defaultRateLimit
	cfg.Logger = defaultLogger
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envAdminSecret); v != "" {
		cfg.AdminSecret = v
	}
	if v := os.Getenv(envDatabasePassword); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv(envRedisPassword); v != "" {
		cfg.Redis.Password = v
	}
}

func (c *Config) Validate() error {
	if c.ShortCodeLength < 1 || c.ShortCodeLength > maxShortCodeLength {
		return fmt.Errorf("short_code_length must be between 1 and %d, got %d", maxShortCodeLength, c.ShortCodeLength)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) url, got %q", c.BaseURL)
	}

	if c.RateLimit.Enabled {
		switch c.RateLimit.Backend {
		case RateLimitMemory, RateLimitRedis:
		default:
			return fmt.Errorf("unknown rate_limit.backend %q", c.RateLimit.Backend)
		}

		if c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0 {
			return errors.New("rate_limit.requests and rate_limit.window must be positive")
		}
	}

	return nil
}
