package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"POSTING_APP_NAME",
	"POSTING_APP_ENV",
	"POSTING_APP_PORT",
	"POSTING_DATABASE_DRIVER",
	"POSTING_DATABASE_HOST",
	"POSTING_DATABASE_PORT",
	"POSTING_DATABASE_USER",
	"POSTING_DATABASE_PASSWORD",
	"POSTING_DATABASE_DBNAME",
	"POSTING_DATABASE_SSLMODE",
	"POSTING_DATABASE_SQLITE_PATH",
	"POSTING_DATABASE_MAX_OPEN_CONNS",
	"POSTING_DATABASE_MAX_IDLE_CONNS",
	"POSTING_LOG_LEVEL",
	"POSTING_REDIS_ENABLED",
	"POSTING_POSTING_CASH_ACCOUNT",
	"POSTING_POSTING_PAYABLE_ACCOUNT",
	"POSTING_POSTING_RECEIVABLE_ACCOUNT",
	"POSTING_POSTING_IDEMPOTENCY_TTL",
	"POSTING_POSTING_LOCK_TIMEOUT",
	"POSTING_TELEMETRY_SAMPLING_RATIO",
}

// clearConfigEnv unsets every key for the duration of the test and restores
// the original values afterwards
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		if original, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, original) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "posting-engine", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "posting", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "CASH001", cfg.Posting.CashAccount)
		assert.Equal(t, "AP001", cfg.Posting.PayableAccount)
		assert.Equal(t, "AR001", cfg.Posting.ReceivableAccount)
		assert.Equal(t, 24*time.Hour, cfg.Posting.IdempotencyTTL)
		assert.Equal(t, 10*time.Second, cfg.Posting.LockTimeout)
		assert.Equal(t, "posting-engine", cfg.Telemetry.ServiceName)
		assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodySize)
		assert.True(t, cfg.Telemetry.DBTraceEnabled)
		assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
	})

	t.Run("every default key decodes into the struct", func(t *testing.T) {
		clearConfigEnv(t)
		v := viper.New()
		for key, value := range defaults() {
			v.SetDefault(key, value)
		}
		var cfg Config
		require.NoError(t, v.UnmarshalExact(&cfg))
		assert.Equal(t, "posting.db", cfg.Database.SQLitePath)
		assert.Equal(t, 10, cfg.Database.ConnMaxIdleTime)
	})

	t.Run("loads values from environment variables with POSTING prefix", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_APP_NAME", "test-app")
		os.Setenv("POSTING_APP_PORT", "9000")
		os.Setenv("POSTING_DATABASE_HOST", "testdb.local")
		os.Setenv("POSTING_DATABASE_PORT", "5433")
		os.Setenv("POSTING_DATABASE_SSLMODE", "require")
		os.Setenv("POSTING_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("POSTING_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("POSTING_REDIS_ENABLED", "true")
		os.Setenv("POSTING_POSTING_CASH_ACCOUNT", "1000")
		os.Setenv("POSTING_POSTING_IDEMPOTENCY_TTL", "2h")
		os.Setenv("POSTING_TELEMETRY_SAMPLING_RATIO", "0.25")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "1000", cfg.Posting.CashAccount)
		assert.Equal(t, 2*time.Hour, cfg.Posting.IdempotencyTTL)
		assert.Equal(t, 0.25, cfg.Telemetry.SamplingRatio)
	})

	t.Run("accepts the sqlite driver", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_DATABASE_DRIVER", "sqlite")
		os.Setenv("POSTING_DATABASE_SQLITE_PATH", "/tmp/posting-test.db")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "/tmp/posting-test.db", cfg.Database.DSN())
	})

	t.Run("rejects an unknown driver", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("POSTING_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects sampling ratio outside range", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("rejects debug logging in production", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_APP_ENV", "production")
		os.Setenv("POSTING_DATABASE_SSLMODE", "require")
		os.Setenv("POSTING_LOG_LEVEL", "debug")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.level")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_APP_ENV", "production")
		os.Setenv("POSTING_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("POSTING_APP_ENV", "production")
		os.Setenv("POSTING_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestConfig_Validate_AccountCodes(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Posting.PayableAccount = "  "
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account codes")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "p@ss:word/1",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotContains(t, dsn, "p@ss:word/1")
		assert.Contains(t, dsn, "p%40ss%3Aword%2F1")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
