package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SALESDESK_APP_NAME":                os.Getenv("SALESDESK_APP_NAME"),
		"SALESDESK_APP_ENV":                 os.Getenv("SALESDESK_APP_ENV"),
		"SALESDESK_APP_PORT":                os.Getenv("SALESDESK_APP_PORT"),
		"SALESDESK_DATABASE_HOST":           os.Getenv("SALESDESK_DATABASE_HOST"),
		"SALESDESK_DATABASE_PORT":           os.Getenv("SALESDESK_DATABASE_PORT"),
		"SALESDESK_DATABASE_USER":           os.Getenv("SALESDESK_DATABASE_USER"),
		"SALESDESK_DATABASE_PASSWORD":       os.Getenv("SALESDESK_DATABASE_PASSWORD"),
		"SALESDESK_DATABASE_DBNAME":         os.Getenv("SALESDESK_DATABASE_DBNAME"),
		"SALESDESK_DATABASE_SSLMODE":        os.Getenv("SALESDESK_DATABASE_SSLMODE"),
		"SALESDESK_DATABASE_MAX_OPEN_CONNS": os.Getenv("SALESDESK_DATABASE_MAX_OPEN_CONNS"),
		"SALESDESK_DATABASE_MAX_IDLE_CONNS": os.Getenv("SALESDESK_DATABASE_MAX_IDLE_CONNS"),
		"SALESDESK_JWT_SECRET":              os.Getenv("SALESDESK_JWT_SECRET"),
		"SALESDESK_CSV_MAX_FILE_SIZE":       os.Getenv("SALESDESK_CSV_MAX_FILE_SIZE"),
		"SALESDESK_CSV_MAX_EXPORT_ROWS":     os.Getenv("SALESDESK_CSV_MAX_EXPORT_ROWS"),
		"SALESDESK_LOCALE_TIMEZONE":         os.Getenv("SALESDESK_LOCALE_TIMEZONE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "salesdesk-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "salesdesk", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, int64(5<<20), cfg.CSV.MaxFileSize)
		assert.Equal(t, 10000, cfg.CSV.MaxExportRows)
		assert.Equal(t, "Asia/Tokyo", cfg.Locale.Timezone)
		assert.Equal(t, 20, cfg.Locale.PageSize)
	})

	t.Run("loads values from environment variables with SALESDESK prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALESDESK_APP_NAME", "test-app")
		os.Setenv("SALESDESK_APP_ENV", "testing")
		os.Setenv("SALESDESK_APP_PORT", "9000")
		os.Setenv("SALESDESK_DATABASE_HOST", "testdb.local")
		os.Setenv("SALESDESK_DATABASE_PORT", "5433")
		os.Setenv("SALESDESK_DATABASE_PASSWORD", "testpass")
		os.Setenv("SALESDESK_CSV_MAX_FILE_SIZE", "1048576")
		os.Setenv("SALESDESK_CSV_MAX_EXPORT_ROWS", "500")
		os.Setenv("SALESDESK_LOCALE_TIMEZONE", "UTC")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, int64(1048576), cfg.CSV.MaxFileSize)
		assert.Equal(t, 500, cfg.CSV.MaxExportRows)
		assert.Equal(t, "UTC", cfg.Locale.Timezone)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALESDESK_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SALESDESK_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALESDESK_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"SALESDESK_APP_ENV":           os.Getenv("SALESDESK_APP_ENV"),
		"SALESDESK_JWT_SECRET":        os.Getenv("SALESDESK_JWT_SECRET"),
		"SALESDESK_DATABASE_PASSWORD": os.Getenv("SALESDESK_DATABASE_PASSWORD"),
		"SALESDESK_DATABASE_SSLMODE":  os.Getenv("SALESDESK_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALESDESK_APP_ENV", "production")
		os.Setenv("SALESDESK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SALESDESK_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALESDESK_APP_ENV", "production")
		os.Setenv("SALESDESK_JWT_SECRET", "short-secret")
		os.Setenv("SALESDESK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SALESDESK_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALESDESK_APP_ENV", "production")
		os.Setenv("SALESDESK_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("SALESDESK_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALESDESK_APP_ENV", "production")
		os.Setenv("SALESDESK_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("SALESDESK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SALESDESK_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALESDESK_APP_ENV", "production")
		os.Setenv("SALESDESK_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("SALESDESK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SALESDESK_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
