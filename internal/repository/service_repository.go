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

// ServiceModel はgorm用のモデル定義。
type ServiceModel struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	BranchID    *string   `gorm:"type:char(36);index:idx_branch_id"`
	Name        string    `gorm:"type:varchar(128);not null;index:idx_service_name"`
	Price       string    `gorm:"type:varchar(32);not null"`
	Duration    int       `gorm:"not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:datetime(6);not null;autoUpdateTime"`
}

// TableName はテーブル名を返す。
func (ServiceModel) TableName() string {
	return "services"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (s *ServiceModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (s *ServiceModel) toDomain() *domain.Service {
	service := &domain.Service{
		ID:          s.ID,
		Name:        s.Name,
		Price:       s.Price,
		Duration:    s.Duration,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.BranchID != nil {
		service.BranchID = *s.BranchID
	}
	return service
}

// nullableID は空文字列をNULLとして扱う。
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// ServiceRepository はサービス（メニュー）のデータアクセスを提供する。
type ServiceRepository struct {
	db *gorm.DB
}

// NewServiceRepository は新しいServiceRepositoryを生成する。
func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Create は新しいサービスを保存する。
func (r *ServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	model := &ServiceModel{
		ID:          service.ID,
		BranchID:    nullableID(service.BranchID),
		Name:        service.Name,
		Price:       service.Price,
		Duration:    service.Duration,
		Description: service.Description,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create service",
			"operation", "create",
			"name", service.Name,
			"error", err,
		)
		return err
	}
	service.ID = model.ID
	service.CreatedAt = model.CreatedAt
	service.UpdatedAt = model.UpdatedAt
	return nil
}

// Update はサービスの属性を更新する。
func (r *ServiceRepository) Update(ctx context.Context, service *domain.Service) error {
	err := r.db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ?", service.ID).
		Updates(map[string]any{
			"branch_id":   nullableID(service.BranchID),
			"name":        service.Name,
			"price":       service.Price,
			"duration":    service.Duration,
			"description": service.Description,
		}).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to update service",
			"operation", "update",
			"id", service.ID,
			"error", err,
		)
		return err
	}
	return nil
}

// FindByID はIDでサービスを取得する。存在しない場合はnilを返す。
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*domain.Service, error) {
	var model ServiceModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find service",
			"operation", "find_by_id",
			"id", id,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// FindByName は名前が一致するサービスを全店舗分取得する。
func (r *ServiceRepository) FindByName(ctx context.Context, name string) ([]*domain.Service, error) {
	var models []ServiceModel
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find services by name",
			"operation", "find_by_name",
			"name", name,
			"error", err,
		)
		return nil, err
	}

	services := make([]*domain.Service, len(models))
	for i, m := range models {
		services[i] = m.toDomain()
	}
	return services, nil
}

// Delete は指定されたIDのサービスを削除する。
func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ServiceModel{}).Error; err != nil {
		slog.ErrorContext(ctx, "failed to delete service",
			"operation", "delete",
			"id", id,
			"error", err,
		)
		return err
	}
	return nil
}
