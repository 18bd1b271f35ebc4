package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"reservation-service/internal/domain"
)

// SchemaMigrationModel はschema_migrationsテーブルのモデル。
type SchemaMigrationModel struct {
	Version   string    `gorm:"column:version;primaryKey;type:varchar(14)"`
	Name      string    `gorm:"column:name;type:varchar(128)"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

// TableName はテーブル名を返す。
func (SchemaMigrationModel) TableName() string {
	return "schema_migrations"
}

// MigrationRepository はスキーマ変更の実行と適用履歴を扱う。
type MigrationRepository struct {
	db *gorm.DB
}

// NewMigrationRepository は新しいMigrationRepositoryを生成する。
func NewMigrationRepository(db *gorm.DB) *MigrationRepository {
	return &MigrationRepository{db: db}
}

// Dialect は接続先データベースの方言を返す。
func (r *MigrationRepository) Dialect() domain.Dialect {
	return domain.Dialect(r.db.Dialector.Name())
}

// EnsureSchema は履歴テーブルが無ければ作成する。
func (r *MigrationRepository) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&SchemaMigrationModel{}); err != nil {
		slog.ErrorContext(ctx, "failed to ensure schema_migrations table",
			"operation", "ensure_schema",
			"error", err,
		)
		return err
	}
	return nil
}

// FindAllApplied は適用済みのマイグレーションをバージョン順に返す。
func (r *MigrationRepository) FindAllApplied(ctx context.Context) ([]*domain.Migration, error) {
	var models []SchemaMigrationModel
	if err := r.db.WithContext(ctx).Order("version ASC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to list applied migrations",
			"operation", "find_all_applied",
			"error", err,
		)
		return nil, err
	}

	applied := make([]*domain.Migration, len(models))
	for i := range models {
		appliedAt := models[i].AppliedAt
		applied[i] = &domain.Migration{
			Version:   models[i].Version,
			Name:      models[i].Name,
			Status:    domain.MigrationStatusApplied,
			AppliedAt: &appliedAt,
		}
	}
	return applied, nil
}

// Apply はマイグレーションの各文を順に実行し、同じトランザクションで履歴を記録する。
// MySQLのDDLは暗黙コミットされるため、途中で失敗した文より前の変更は残る。
func (r *MigrationRepository) Apply(ctx context.Context, m *domain.Migration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, stmt := range m.Statements {
			if err := tx.Exec(stmt).Error; err != nil {
				slog.ErrorContext(ctx, "failed to execute migration statement",
					"operation", "apply",
					"version", m.Version,
					"statement", i+1,
					"error", err,
				)
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}

		now := time.Now().UTC()
		record := &SchemaMigrationModel{
			Version:   m.Version,
			Name:      m.Name,
			AppliedAt: now,
		}
		if err := tx.Create(record).Error; err != nil {
			slog.ErrorContext(ctx, "failed to record migration",
				"operation", "apply",
				"version", m.Version,
				"error", err,
			)
			return fmt.Errorf("recording migration: %w", err)
		}

		m.Status = domain.MigrationStatusApplied
		m.AppliedAt = &now
		return nil
	})
}
