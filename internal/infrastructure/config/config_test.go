package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	keys := []string{
		"NEXUS_APP_NAME", "NEXUS_APP_ENV", "NEXUS_APP_PORT",
		"NEXUS_DATABASE_HOST", "NEXUS_DATABASE_PORT", "NEXUS_DATABASE_PASSWORD", "NEXUS_DATABASE_SSLMODE",
		"NEXUS_DATABASE_MAX_OPEN_CONNS", "NEXUS_DATABASE_MAX_IDLE_CONNS",
		"NEXUS_JWT_SECRET", "NEXUS_JWT_ALLOW_USER_HEADER",
		"NEXUS_MATCHING_WEIGHT_VENDOR", "NEXUS_MATCHING_WEIGHT_PO_NUMBER", "NEXUS_MATCHING_WEIGHT_AMOUNT",
		"NEXUS_MATCHING_WEIGHT_DATE", "NEXUS_MATCHING_WEIGHT_LINE_ITEMS",
		"NEXUS_MATCHING_REVIEW_THRESHOLD", "NEXUS_MATCHING_AUTO_APPROVE_THRESHOLD",
		"NEXUS_VISION_API_KEY", "NEXUS_VISION_API_KEY_FILE",
		"NEXUS_CONNECTORS_ENCRYPTION_KEY", "NEXUS_TELEMETRY_SAMPLING_RATIO",
	}
	clearEnv := func(t *testing.T) {
		for _, k := range keys {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "nexus-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "nexus", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "gemini-2.5-flash", cfg.Vision.Model)
		assert.Equal(t, 60*time.Second, cfg.Vision.Timeout)
		assert.Equal(t, "0 */6 * * *", cfg.Scheduler.AutoMatchCron)
		assert.Equal(t, 0.25, cfg.Matching.WeightVendor)
		assert.Equal(t, 0.35, cfg.Matching.WeightPONumber)
		assert.Equal(t, 90, cfg.Matching.AutoApproveThreshold)
		assert.Equal(t, 70, cfg.Matching.ReviewThreshold)
		assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.Connectors.Gmail.TokenURL)
		assert.NotEmpty(t, cfg.Connectors.GoogleDrive.Scopes)
	})

	t.Run("loads values from environment variables with NEXUS prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXUS_APP_PORT", "9000")
		t.Setenv("NEXUS_DATABASE_HOST", "db.internal")
		t.Setenv("NEXUS_DATABASE_PORT", "5433")
		t.Setenv("NEXUS_MATCHING_REVIEW_THRESHOLD", "60")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 60, cfg.Matching.ReviewThreshold)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXUS_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("NEXUS_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("partial weight override is rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXUS_MATCHING_WEIGHT_VENDOR", "0.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "matching")
	})

	t.Run("full weight override is accepted", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXUS_MATCHING_WEIGHT_VENDOR", "0.2")
		t.Setenv("NEXUS_MATCHING_WEIGHT_PO_NUMBER", "0.4")
		t.Setenv("NEXUS_MATCHING_WEIGHT_AMOUNT", "0.2")
		t.Setenv("NEXUS_MATCHING_WEIGHT_DATE", "0.1")
		t.Setenv("NEXUS_MATCHING_WEIGHT_LINE_ITEMS", "0.1")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 0.4, cfg.Matching.WeightPONumber)
	})

	t.Run("review threshold above auto approve is rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXUS_MATCHING_REVIEW_THRESHOLD", "95")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("reads vision key from file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "key")
		require.NoError(t, os.WriteFile(path, []byte("  secret-key\n"), 0o600))
		t.Setenv("NEXUS_VISION_API_KEY_FILE", path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "secret-key", cfg.Vision.APIKey)
	})

	t.Run("empty secret file is an error", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "key")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))
		t.Setenv("NEXUS_VISION_API_KEY_FILE", path)

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production requirements", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXUS_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")

		t.Setenv("NEXUS_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("NEXUS_DATABASE_PASSWORD", "pw")
		t.Setenv("NEXUS_DATABASE_SSLMODE", "require")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encryption_key")

		t.Setenv("NEXUS_CONNECTORS_ENCRYPTION_KEY", "k")
		_, err = Load()
		require.NoError(t, err)

		t.Setenv("NEXUS_JWT_ALLOW_USER_HEADER", "true")
		_, err = Load()
		assert.Error(t, err)
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXUS_TELEMETRY_SAMPLING_RATIO", "1.5")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "nexus", SSLMode: "require"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/nexus?sslmode=require", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
