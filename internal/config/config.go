package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Spotify  SpotifyConfig
	Worker   WorkerConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MetricsUser / MetricsPassword は /metrics のBasic認証情報
	MetricsUser     string
	MetricsPassword string
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// CommitTimeout は予約コミットの上限時間。超過時はロールバックして
	// ストレージ利用不可として呼び出し側へ返す
	CommitTimeout time.Duration
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SpotifyConfig はSpotify Web API設定
type SpotifyConfig struct {
	BaseURL string
	Timeout time.Duration
	// Limit はランキング取得件数（プロバイダー上限20）
	Limit int
}

// WorkerConfig はファンスコア定期リフレッシュの設定
type WorkerConfig struct {
	Interval     time.Duration
	RefreshAfter time.Duration
	BatchSize    int
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			MetricsUser:     getEnv("METRICS_USER", ""),
			MetricsPassword: getEnv("METRICS_PASSWORD", ""),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "concert_tickets"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			CommitTimeout: getDurationEnv("DB_COMMIT_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Spotify: SpotifyConfig{
			BaseURL: getEnv("SPOTIFY_API_BASE_URL", "https://api.spotify.com/v1"),
			Timeout: getDurationEnv("SPOTIFY_TIMEOUT", 10*time.Second),
			Limit:   getIntEnv("SPOTIFY_TOP_LIMIT", 20),
		},
		Worker: WorkerConfig{
			Interval:     getDurationEnv("FANSCORE_REFRESH_INTERVAL", 1*time.Hour),
			RefreshAfter: getDurationEnv("FANSCORE_REFRESH_AFTER", 24*time.Hour),
			BatchSize:    getIntEnv("FANSCORE_REFRESH_BATCH", 100),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
