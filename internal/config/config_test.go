package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "concert_tickets", cfg.Database.DBName)
	assert.Equal(t, 5*time.Second, cfg.Database.CommitTimeout)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "https://api.spotify.com/v1", cfg.Spotify.BaseURL)
	assert.Equal(t, 20, cfg.Spotify.Limit)
	assert.Equal(t, 1*time.Hour, cfg.Worker.Interval)
	assert.Equal(t, 100, cfg.Worker.BatchSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_COMMIT_TIMEOUT", "2s")
	t.Setenv("SPOTIFY_TOP_LIMIT", "10")
	t.Setenv("FANSCORE_REFRESH_INTERVAL", "30m")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 2*time.Second, cfg.Database.CommitTimeout)
	assert.Equal(t, 10, cfg.Spotify.Limit)
	assert.Equal(t, 30*time.Minute, cfg.Worker.Interval)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("DB_COMMIT_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 5*time.Second, cfg.Database.CommitTimeout)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: "5432", User: "postgres",
		Password: "secret", DBName: "concert_tickets", SSLMode: "disable",
	}

	dsn := c.DSN()

	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=concert_tickets")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	c := RedisConfig{Host: "localhost", Port: "6379"}
	assert.Equal(t, "localhost:6379", c.Addr())
}
