package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionSecret string
	SessionMaxAge int

	// Auth / Bootstrap タイムアウト予算
	// ブートストラップの挙動互換のため既定値は元実装の値をそのまま使う。
	BootstrapMountTimeout time.Duration // マウント時の上限タイマー（既定5秒）
	LoadUserTimeout       time.Duration // ユーザー読込手続き全体（既定12秒）
	ProfileQueryTimeout   time.Duration // usersテーブル照会（既定5秒）
	EmployeeQueryTimeout  time.Duration // employeesテーブル照会（既定5秒）
	RelationLookupTimeout time.Duration // 部署・職位・メール照会（既定2秒）

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitPayroll int

	// Cleanup
	NotificationRetentionDays int

	// Payroll worker
	PayrollRunInterval time.Duration
	// PayrollDefaultBasicSalary はドラフト自動生成時に基本給が未設定の従業員へ
	// 適用するデフォルト基本給。
	PayrollDefaultBasicSalary float64

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

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

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.BootstrapMountTimeout = getEnvDuration("BOOTSTRAP_MOUNT_TIMEOUT", 5*time.Second)
	cfg.LoadUserTimeout = getEnvDuration("LOAD_USER_TIMEOUT", 12*time.Second)
	cfg.ProfileQueryTimeout = getEnvDuration("PROFILE_QUERY_TIMEOUT", 5*time.Second)
	cfg.EmployeeQueryTimeout = getEnvDuration("EMPLOYEE_QUERY_TIMEOUT", 5*time.Second)
	cfg.RelationLookupTimeout = getEnvDuration("RELATION_LOOKUP_TIMEOUT", 2*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitPayroll = getEnvInt("RATE_LIMIT_PAYROLL", 10)
	cfg.NotificationRetentionDays = getEnvInt("NOTIFICATION_RETENTION_DAYS", 90)
	cfg.PayrollRunInterval = getEnvDuration("PAYROLL_RUN_INTERVAL", 6*time.Hour)
	cfg.PayrollDefaultBasicSalary = getEnvFloat("PAYROLL_DEFAULT_BASIC_SALARY", 250000)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
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

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
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
