package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Provider (USDA FoodData Central)
	USDAAPIKey          string
	USDABaseURL         string
	ProviderTimeout     time.Duration
	ProviderCacheTTL    time.Duration
	ProviderPerMinute   int // プロバイダへの60秒ウィンドウあたりの最大リクエスト数
	ProviderPerHour     int // プロバイダへの1時間あたりの最大リクエスト数
	ProviderSearchLimit int // 検索のデフォルトページサイズ

	// Aggregation
	TrendMaxConcurrent int // トレンド集計の最大並列日数

	// Rate Limit (inbound API)
	RateLimitGeneral int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.USDAAPIKey = os.Getenv("USDA_API_KEY")
	if cfg.USDAAPIKey == "" {
		missing = append(missing, "USDA_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.USDABaseURL = getEnvString("USDA_BASE_URL", "https://api.nal.usda.gov/fdc/v1")
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second)
	cfg.ProviderCacheTTL = getEnvDuration("PROVIDER_CACHE_TTL", 1*time.Hour)
	cfg.ProviderPerMinute = getEnvInt("PROVIDER_RATE_PER_MINUTE", 60)
	cfg.ProviderPerHour = getEnvInt("PROVIDER_RATE_PER_HOUR", 1000)
	cfg.ProviderSearchLimit = getEnvInt("PROVIDER_SEARCH_LIMIT", 20)
	cfg.TrendMaxConcurrent = getEnvInt("TREND_MAX_CONCURRENT", 4)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
