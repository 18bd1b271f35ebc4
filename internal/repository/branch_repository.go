package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reservation-service/internal/domain"
)

// BranchModel はgorm用のモデル定義。
type BranchModel struct {
	ID           string    `gorm:"type:char(36);primaryKey"`
	Name         string    `gorm:"type:varchar(128);not null;uniqueIndex:uk_branch_name"`
	Address      string    `gorm:"type:varchar(255);not null;uniqueIndex:uk_branch_address"`
	ContactPhone string    `gorm:"type:varchar(32)"`
	ContactEmail string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"type:datetime(6);not null;autoUpdateTime"`
}

// TableName はテーブル名を返す。
func (BranchModel) TableName() string {
	return "branches"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (b *BranchModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

func (b *BranchModel) toDomain() *domain.Branch {
	return &domain.Branch{
		ID:           b.ID,
		Name:         b.Name,
		Address:      b.Address,
		ContactPhone: b.ContactPhone,
		ContactEmail: b.ContactEmail,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// BranchRepository は店舗のデータアクセスを提供する。
type BranchRepository struct {
	db *gorm.DB
}

// NewBranchRepository は新しいBranchRepositoryを生成する。
func NewBranchRepository(db *gorm.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// ExistsByNameOrAddress は同じ名前または住所の店舗が存在するか確認する。
// excludeIDが空でなければその店舗自身は数えない。
func (r *BranchRepository) ExistsByNameOrAddress(ctx context.Context, name, address, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&BranchModel{}).
		Where("(name = ? OR address = ?)", name, address)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to count branches",
			"operation", "exists_by_name_or_address",
			"name", name,
			"error", err,
		)
		return false, err
	}
	return count > 0, nil
}

// Create は新しい店舗を保存する。
func (r *BranchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	model := &BranchModel{
		ID:           branch.ID,
		Name:         branch.Name,
		Address:      branch.Address,
		ContactPhone: branch.ContactPhone,
		ContactEmail: branch.ContactEmail,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrBranchAlreadyExists
		}
		slog.ErrorContext(ctx, "failed to create branch",
			"operation", "create",
			"name", branch.Name,
			"error", err,
		)
		return err
	}
	branch.ID = model.ID
	branch.CreatedAt = model.CreatedAt
	branch.UpdatedAt = model.UpdatedAt
	return nil
}

// Update は店舗の属性を更新する。
func (r *BranchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	err := r.db.WithContext(ctx).
		Model(&BranchModel{}).
		Where("id = ?", branch.ID).
		Updates(map[string]any{
			"name":          branch.Name,
			"address":       branch.Address,
			"contact_phone": branch.ContactPhone,
			"contact_email": branch.ContactEmail,
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrBranchAlreadyExists
		}
		slog.ErrorContext(ctx, "failed to update branch",
			"operation", "update",
			"id", branch.ID,
			"error", err,
		)
		return err
	}
	return nil
}

// FindByID はIDで店舗を取得する。存在しない場合はnilを返す。
func (r *BranchRepository) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	return r.findOne(ctx, "find_by_id", "id = ?", id)
}

// FindByName は名前で店舗を取得する。存在しない場合はnilを返す。
func (r *BranchRepository) FindByName(ctx context.Context, name string) (*domain.Branch, error) {
	return r.findOne(ctx, "find_by_name", "name = ?", name)
}

func (r *BranchRepository) findOne(ctx context.Context, operation, query string, arg any) (*domain.Branch, error) {
	var model BranchModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find branch",
			"operation", operation,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// FindAll は全店舗を名前順に取得する。
func (r *BranchRepository) FindAll(ctx context.Context) ([]*domain.Branch, error) {
	var models []BranchModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to find all branches",
			"operation", "find_all",
			"error", err,
		)
		return nil, err
	}

	branches := make([]*domain.Branch, len(models))
	for i, m := range models {
		branches[i] = m.toDomain()
	}
	return branches, nil
}

// Delete は指定されたIDの店舗を削除する。
func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BranchModel{}).Error; err != nil {
		slog.ErrorContext(ctx, "failed to delete branch",
			"operation", "delete",
			"id", id,
			"error", err,
		)
		return err
	}
	return nil
}
