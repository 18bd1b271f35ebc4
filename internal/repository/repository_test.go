package repository

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"reservation-service/internal/infra"
	"reservation-service/internal/usecase"
	"reservation-service/migrations"
)

// setupTestDB は同梱のSQLite用マイグレーションを適用したインメモリDBを作成する。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := infra.NewDB("sqlite://:memory:", false)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	runner := usecase.NewMigrationService(NewMigrationRepository(db), migrations.Source(""))
	if _, err := runner.ApplyMigrations(context.Background()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return db
}
