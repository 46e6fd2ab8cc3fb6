package configs

import (
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Environment string            `koanf:"environment"`
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Database    DatabaseConfig    `koanf:"database"`
	Auth        AuthConfig        `koanf:"auth"`
	Realtime    RealtimeConfig    `koanf:"realtime"`
	Logger      LoggerConfig      `koanf:"logger"`
	Tracing     TracingConfig     `koanf:"tracing"`
	Sentry      SentryConfig      `koanf:"sentry"`
}

type HTTPConfig struct {
	Host            string        `koanf:"host"`
	Port            uint16        `koanf:"port"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	AllowedHeaders  []string      `koanf:"allowed_headers"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type RateLimiterConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type DatabaseConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	SlowThreshold   time.Duration `koanf:"slow_threshold"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
	Debug           bool          `koanf:"debug"`
}

type AuthConfig struct {
	JWTSecret    string        `koanf:"jwt_secret"`
	TokenTTL     time.Duration `koanf:"token_ttl"`
	Issuer       string        `koanf:"issuer"`
	SecureCookie bool          `koanf:"secure_cookie"`
}

type RealtimeConfig struct {
	HeartbeatInterval time.Duration      `koanf:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration      `koanf:"heartbeat_timeout"`
	WriteWait         time.Duration      `koanf:"write_wait"`
	MaxMessageSize    int64              `koanf:"max_message_size"`
	SendBuffer        int                `koanf:"send_buffer"`
	AllowedOrigins    []string           `koanf:"allowed_origins"`
	Distribution      DistributionConfig `koanf:"distribution"`
}

type DistributionConfig struct {
	Driver         string        `koanf:"driver"`
	Address        string        `koanf:"address"`
	Channel        string        `koanf:"channel"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	RetryAttempts  int           `koanf:"retry_attempts"`
	RetryInterval  time.Duration `koanf:"retry_interval"`
	PublishTimeout time.Duration `koanf:"publish_timeout"`
}

type LoggerConfig struct {
	FilePath string `koanf:"file_path"`
	Encoding string `koanf:"encoding"`
	Level    string `koanf:"level"`
}

type TracingConfig struct {
	Exporter    string  `koanf:"exporter"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRatio float64 `koanf:"sample_ratio"`
	Insecure    bool    `koanf:"insecure"`
}

type SentryConfig struct {
	DSN              string  `koanf:"dsn"`
	TracesSampleRate float64 `koanf:"traces_sample_rate"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "environment", "development")

	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.request_timeout", 60*time.Second)
	setDefault(k, "http.shutdown_timeout", 15*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})
	setDefault(k, "http.allowed_headers", []string{"Content-Type", "Authorization"})

	// Rate limiter defaults
	setDefault(k, "rateLimiter.enabled", true)
	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	// Database defaults
	setDefault(k, "database.dsn", "host=localhost user=dealerdesk password=dealerdesk dbname=dealerdesk port=5432 sslmode=disable")
	setDefault(k, "database.max_open_conns", 25)
	setDefault(k, "database.max_idle_conns", 5)
	setDefault(k, "database.conn_max_lifetime", 30*time.Minute)
	setDefault(k, "database.slow_threshold", 200*time.Millisecond)
	setDefault(k, "database.auto_migrate", true)

	// Auth defaults
	setDefault(k, "auth.token_ttl", 24*time.Hour)
	setDefault(k, "auth.issuer", "dealerdesk")
	setDefault(k, "auth.secure_cookie", false)

	// Realtime defaults
	setDefault(k, "realtime.heartbeat_interval", 30*time.Second)
	setDefault(k, "realtime.heartbeat_timeout", 60*time.Second)
	setDefault(k, "realtime.write_wait", 10*time.Second)
	setDefault(k, "realtime.max_message_size", 32*1024)
	setDefault(k, "realtime.send_buffer", 64)
	setDefault(k, "realtime.allowed_origins", []string{"*"})
	setDefault(k, "realtime.distribution.driver", "none")
	setDefault(k, "realtime.distribution.connect_timeout", 10*time.Second)
	setDefault(k, "realtime.distribution.retry_attempts", 3)
	setDefault(k, "realtime.distribution.retry_interval", 2*time.Second)
	setDefault(k, "realtime.distribution.publish_timeout", 2*time.Second)

	// Logger defaults
	setDefault(k, "logger.encoding", "json")
	setDefault(k, "logger.level", "info")

	// Tracing defaults
	setDefault(k, "tracing.exporter", "none")
	setDefault(k, "tracing.service_name", "dealerdesk")
	setDefault(k, "tracing.sample_ratio", 1.0)
}

func applyEnvOverrides(k *koanf.Koanf) {
	if e := env.GetString("DEALERDESK_ENV", ""); e != "" {
		k.Set("environment", e)
	}

	// HTTP config from env
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}
	if origins := env.GetStrings("HTTP_ALLOWED_ORIGINS", nil); len(origins) > 0 {
		k.Set("http.allowed_origins", origins)
	}

	// Rate limiter config from env
	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}
	if sourceKey := env.GetString("RATE_LIMIT_SOURCE_HEADER_KEY", ""); sourceKey != "" {
		k.Set("rateLimiter.sourceHeaderKey", sourceKey)
	}

	// Database config from env
	if dsn := env.GetString("DATABASE_DSN", ""); dsn != "" {
		k.Set("database.dsn", dsn)
	}

	// Auth config from env
	if secret := env.GetString("JWT_SECRET", ""); secret != "" {
		k.Set("auth.jwt_secret", secret)
	}
	if ttl := env.GetDuration("JWT_TTL", 0); ttl > 0 {
		k.Set("auth.token_ttl", ttl)
	}

	// Realtime config from env
	if interval := env.GetDuration("REALTIME_HEARTBEAT_INTERVAL", 0); interval > 0 {
		k.Set("realtime.heartbeat_interval", interval)
	}
	if timeout := env.GetDuration("REALTIME_HEARTBEAT_TIMEOUT", 0); timeout > 0 {
		k.Set("realtime.heartbeat_timeout", timeout)
	}
	if origins := env.GetStrings("REALTIME_ALLOWED_ORIGINS", nil); len(origins) > 0 {
		k.Set("realtime.allowed_origins", origins)
	}
	if driver := env.GetString("REALTIME_DISTRIBUTION_DRIVER", ""); driver != "" {
		k.Set("realtime.distribution.driver", driver)
	}
	if addr := env.GetString("REALTIME_DISTRIBUTION_ADDRESS", ""); addr != "" {
		k.Set("realtime.distribution.address", addr)
	}

	// Logger config from env
	if level := env.GetString("LOGGER_LEVEL", ""); level != "" {
		k.Set("logger.level", level)
	}
	if encoding := env.GetString("LOGGER_ENCODING", ""); encoding != "" {
		k.Set("logger.encoding", encoding)
	}
	if path := env.GetString("LOGGER_FILE_PATH", ""); path != "" {
		k.Set("logger.file_path", path)
	}

	// Observability config from env
	if exporter := env.GetString("TRACING_EXPORTER", ""); exporter != "" {
		k.Set("tracing.exporter", exporter)
	}
	if endpoint := env.GetString("TRACING_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.endpoint", endpoint)
	}
	if dsn := env.GetString("SENTRY_DSN", ""); dsn != "" {
		k.Set("sentry.dsn", dsn)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value any) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port == 0 {
		errs = append(errs, errors.New("http.port must be set"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must be set"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}

	rt := c.Realtime
	if rt.HeartbeatInterval <= 0 {
		errs = append(errs, errors.New("realtime.heartbeat_interval must be positive"))
	}
	if rt.HeartbeatTimeout <= rt.HeartbeatInterval {
		errs = append(errs, errors.New("realtime.heartbeat_timeout must exceed realtime.heartbeat_interval"))
	}

	switch rt.Distribution.Driver {
	case "", "none":
	case "redis", "rabbitmq":
		if rt.Distribution.Address == "" {
			errs = append(errs, fmt.Errorf("realtime.distribution.address is required for driver %q", rt.Distribution.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown realtime.distribution.driver %q", rt.Distribution.Driver))
	}

	switch c.Tracing.Exporter {
	case "", "none", "otlp", "jaeger":
	default:
		errs = append(errs, fmt.Errorf("unknown tracing.exporter %q", c.Tracing.Exporter))
	}

	return errors.Join(errs...)
}
