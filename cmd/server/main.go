// Package main はAPIサーバーのエントリポイント。
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"reservation-service/config"
	"reservation-service/internal/domain"
	"reservation-service/internal/encryption"
	"reservation-service/internal/handler"
	"reservation-service/internal/infra"
	"reservation-service/internal/repository"
	"reservation-service/internal/session"
	"reservation-service/internal/token"
	"reservation-service/internal/usecase"
	"reservation-service/migrations"
)

func main() {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	// 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// トレース情報付きロガーを設定
	infra.SetupLogger(cfg, infra.ParseLogLevel(cfg.LogLevel))

	// KMS_KEY_NAMEが設定されている場合はシークレットを復号する
	if cfg.KMSKeyName != "" {
		kmsClient, err := infra.NewKMSClient(ctx, cfg.KMSKeyName)
		if err != nil {
			slog.Error("failed to init KMS client", "error", err)
			os.Exit(1)
		}
		err = infra.UnwrapSecrets(ctx, kmsClient, cfg)
		if closeErr := kmsClient.Close(); closeErr != nil {
			slog.Error("failed to close KMS client", "error", closeErr)
		}
		if err != nil {
			slog.Error("failed to unwrap secrets", "error", err)
			os.Exit(1)
		}
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// DB初期化
	db, err := infra.NewDB(cfg.DatabaseURL, cfg.OtelEnabled)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		runner := usecase.NewMigrationService(repository.NewMigrationRepository(db), migrations.Source(cfg.MigrationsDir))
		applied, err := runner.ApplyMigrations(ctx)
		if err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations up to date", "applied", applied)
	}

	// 鍵素材は起動時に一度だけ読み込む
	material, err := encryption.NewKeyMaterial(cfg.EncryptionKey, cfg.EncryptionIV)
	if err != nil {
		slog.Error("failed to load key material", "error", err)
		os.Exit(1)
	}
	cipher := encryption.NewCipher(material)

	tokens, err := token.NewService([]byte(cfg.JWTSecret))
	if err != nil {
		slog.Error("failed to init token service", "error", err)
		os.Exit(1)
	}

	// DI
	users := repository.NewUserRepository(db)
	branches := repository.NewBranchRepository(db)
	services := repository.NewServiceRepository(db)

	auth := usecase.NewAuthService(users, cipher)
	cookies := session.NewCookieIssuer(tokens, cipher, []byte(cfg.CookieSecret), cfg.TokenTTL, cfg.CookieMaxAge)
	bearer := session.NewBearerIssuer(tokens, cfg.TokenTTL)

	router := handler.NewRouter(handler.Handlers{
		Member:  handler.NewAuthHandler(auth, domain.RoleCustomer, cookies),
		Admin:   handler.NewAuthHandler(auth, domain.RoleAdmin, bearer),
		Crypto:  handler.NewCryptoHandler(cipher),
		Branch:  handler.NewBranchHandler(usecase.NewBranchService(branches)),
		Service: handler.NewServiceHandler(usecase.NewCatalogService(services, branches)),
	}, tokens)

	// サーバー起動
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, cfg.OtelServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port, "env", cfg.Env)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
