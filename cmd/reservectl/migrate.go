package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"reservation-service/config"
	"reservation-service/internal/domain"
	"reservation-service/internal/infra"
	"reservation-service/internal/repository"
	"reservation-service/internal/usecase"
	"reservation-service/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  "Manage database migrations for the reservation service",
	}
	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateStatusCmd())
	return cmd
}

// newMigrationService は設定からDB接続とMigrationServiceを初期化する。
// SQLは接続先の方言（mysql, sqlite）のディレクトリから読み込む。
func newMigrationService() (*usecase.MigrationService, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	// データベース接続
	db, err := infra.NewDB(cfg.DatabaseURL, false)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrationRepo := repository.NewMigrationRepository(db)
	return usecase.NewMigrationService(migrationRepo, migrations.Source(cfg.MigrationsDir)), nil
}

// migrateUpCmd は未適用のマイグレーションを適用するコマンド。
func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Long:  "Apply all pending migrations to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			migrationService, err := newMigrationService()
			if err != nil {
				return err
			}

			// マイグレーション実行
			appliedCount, err := migrationService.ApplyMigrations(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if appliedCount == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", appliedCount)
			}

			return nil
		},
	}
}

// migrateStatusCmd はマイグレーションの適用状況を表示するコマンド。
func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  "Show the status of all migrations (applied/pending)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			migrationService, err := newMigrationService()
			if err != nil {
				return err
			}

			// マイグレーションステータスを取得
			migrations, err := migrationService.GetMigrationStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			// テーブル形式で出力
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tDIALECT\tSTATUS\tAPPLIED AT")
			fmt.Fprintln(w, "-------\t----\t-------\t------\t----------")

			for _, migration := range migrations {
				appliedAt := "-"
				if migration.AppliedAt != nil {
					appliedAt = migration.AppliedAt.Format("2006-01-02 15:04:05")
				}

				status := "pending"
				if migration.Status == domain.MigrationStatusApplied {
					status = "applied"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", migration.Version, migration.Name, migration.Dialect, status, appliedAt)
			}

			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to flush output: %w", err)
			}

			return nil
		},
	}
}
