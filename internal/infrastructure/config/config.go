package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/erp/posting/internal/domain/finance"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the whole service configuration. Keys are addressed as
// <section>.<key> in config.toml and as POSTING_<SECTION>_<KEY> in the
// environment.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Posting   PostingConfig   `mapstructure:"posting"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

// DatabaseConfig selects the store. Connection lifetimes are in minutes.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds Redis connection settings. Redis backs the payment
// idempotency store when enabled; otherwise an in-process store is used.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the host:port address of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type HTTPConfig struct {
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	MaxBodySize    int64         `mapstructure:"max_body_size"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
}

// TelemetryConfig drives OTLP export of traces and metrics. ServiceName
// defaults to the app name.
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

// PostingConfig names the well-known accounts payments post to and bounds
// posting transactions.
type PostingConfig struct {
	CashAccount       string        `mapstructure:"cash_account"`
	PayableAccount    string        `mapstructure:"payable_account"`
	ReceivableAccount string        `mapstructure:"receivable_account"`
	IdempotencyTTL    time.Duration `mapstructure:"idempotency_ttl"`
	LockTimeout       time.Duration `mapstructure:"lock_timeout"`
}

// defaults lists every key. Registering a key here is also what makes it
// reachable from the environment.
func defaults() map[string]any {
	accounts := finance.DefaultWellKnownAccounts()
	return map[string]any{
		"app.name": "posting-engine",
		"app.env":  "development",
		"app.port": "8080",

		"database.driver":             DriverPostgres,
		"database.host":               "localhost",
		"database.port":               5432,
		"database.user":               "postgres",
		"database.password":           "",
		"database.dbname":             "posting",
		"database.sslmode":            "disable",
		"database.sqlite_path":        "posting.db",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  30,
		"database.conn_max_idle_time": 10,

		"redis.enabled":  false,
		"redis.host":     "localhost",
		"redis.port":     6379,
		"redis.password": "",
		"redis.db":       0,

		"log.level":  "info",
		"log.format": "console",
		"log.output": "stdout",

		"http.read_timeout":     15 * time.Second,
		"http.write_timeout":    15 * time.Second,
		"http.idle_timeout":     time.Minute,
		"http.max_header_bytes": 1 << 20,
		"http.max_body_size":    int64(1 << 20),
		"http.trusted_proxies":  []string{},

		"telemetry.enabled":                 false,
		"telemetry.collector_endpoint":      "localhost:4317",
		"telemetry.sampling_ratio":          1.0,
		"telemetry.service_name":            "",
		"telemetry.insecure":                false,
		"telemetry.db_trace_enabled":        true,
		"telemetry.db_slow_query_threshold": 200 * time.Millisecond,

		"posting.cash_account":       accounts.Cash,
		"posting.payable_account":    accounts.Payable,
		"posting.receivable_account": accounts.Receivable,
		"posting.idempotency_ttl":    24 * time.Hour,
		"posting.lock_timeout":       10 * time.Second,
	}
}

// Load reads configuration. Highest precedence first: POSTING_* environment
// variables, a .env file in the working directory, config.toml, defaults.
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/posting")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.SetEnvPrefix("POSTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for the postgres driver")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if strings.TrimSpace(c.Posting.CashAccount) == "" ||
		strings.TrimSpace(c.Posting.PayableAccount) == "" ||
		strings.TrimSpace(c.Posting.ReceivableAccount) == "" {
		return fmt.Errorf("posting account codes cannot be empty")
	}
	if c.Posting.LockTimeout < 0 {
		return fmt.Errorf("posting.lock_timeout cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Log.Level == "debug" {
			return fmt.Errorf("log.level cannot be 'debug' in production")
		}
		if c.Database.Driver == DriverPostgres && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN is the sqlite file path, or a postgres URL with escaped credentials.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
