// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvDevelopment は開発環境を表すAPP_ENVの値。
const EnvDevelopment = "development"

// DevelopmentCookieSecret は開発環境でCOOKIE_SECRET未設定時に使われる既定値。
// 本番環境では使用できない。
const DevelopmentCookieSecret = "insecure-development-cookie-secret-change-me"

// ErrInvalidConfig は起動に必要な設定が不足・不正な場合のエラー。
var ErrInvalidConfig = errors.New("invalid configuration")

// Config はアプリケーション設定を表す。
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"production"`
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`

	// MigrationsDir が空の場合はバイナリに埋め込まれたマイグレーションを使う。
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	// AutoMigrate が有効な場合、サーバー起動時に未適用のマイグレーションを適用する。
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"false"`

	// 暗号化用シークレット（16進文字列）
	EncryptionKey string `env:"ENCRYPTION_KEY"`
	EncryptionIV  string `env:"ENCRYPTION_IV"`

	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	CookieSecret string        `env:"COOKIE_SECRET"`
	// CookieMaxAge は秒単位。
	CookieMaxAge int `env:"SESSION_COOKIE_MAX_AGE" envDefault:"1000"`

	// KMSKeyName が設定されている場合、シークレットはKMS暗号文（Base64）として扱う。
	KMSKeyName         string `env:"KMS_KEY_NAME"`
	GoogleCloudProject string `env:"GOOGLE_CLOUD_PROJECT"`

	OtelEnabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OtelServiceName  string  `env:"OTEL_SERVICE_NAME" envDefault:"reservation-service"`
	OtelSamplingRate float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0"`
}

// Load は環境変数から設定を読み込む。
// .envの読み込みは呼び出し側で行う。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment は開発環境かどうかを返す。
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Validate はAPIサーバー起動に必要な設定を検証する。
// COOKIE_SECRET未設定の場合、開発環境でのみ既定値で補完する。
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL is not set", ErrInvalidConfig)
	}
	if c.EncryptionKey == "" || c.EncryptionIV == "" {
		return fmt.Errorf("%w: ENCRYPTION_KEY and ENCRYPTION_IV are required", ErrInvalidConfig)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is not set", ErrInvalidConfig)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrInvalidConfig)
	}
	if c.CookieMaxAge <= 0 {
		return fmt.Errorf("%w: SESSION_COOKIE_MAX_AGE must be positive", ErrInvalidConfig)
	}
	if c.CookieSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("%w: COOKIE_SECRET is required outside development", ErrInvalidConfig)
		}
		slog.Warn("COOKIE_SECRET is not set, using insecure development fallback")
		c.CookieSecret = DevelopmentCookieSecret
	}
	return nil
}
