// Package repository はデータアクセス層の実装を提供する。
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

// UserModel はgorm用のモデル定義。
type UserModel struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Username  string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_role_username"`
	FirstName string    `gorm:"type:varchar(64)"`
	LastName  string    `gorm:"type:varchar(64)"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex:uk_role_email"`
	Password  string    `gorm:"type:varchar(255);not null"`
	Gender    string    `gorm:"type:varchar(16)"`
	Domicile  string    `gorm:"type:varchar(255)"`
	Role      string    `gorm:"type:enum('ADMIN','CUSTOMER');not null;uniqueIndex:uk_role_username;uniqueIndex:uk_role_email"`
	CreatedAt time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:datetime(6);not null;autoUpdateTime"`
}

// TableName はテーブル名を返す。
func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (u *UserModel) toDomain() *domain.User {
	return &domain.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.Password,
		Gender:    u.Gender,
		Domicile:  u.Domicile,
		Role:      domain.Role(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserRepository はユーザーのデータアクセスを提供する。
// 管理者と顧客は同じテーブルにロール列で区別して保存する。
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository は新しいUserRepositoryを生成する。
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ExistsByUsernameOrEmail は同じロールでユーザー名またはメールアドレスが使われているか確認する。
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, role domain.Role) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("role = ? AND (username = ? OR email = ?)", string(role), username, email).
		Count(&count).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to count users",
			"operation", "exists_by_username_or_email",
			"role", role,
			"error", err,
		)
		return false, err
	}
	return count > 0, nil
}

// Create は新しいユーザーを保存する。
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	model := &UserModel{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Password:  user.Password,
		Gender:    user.Gender,
		Domicile:  user.Domicile,
		Role:      string(user.Role),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		// 既存チェック後に別のリクエストが同じ名前で登録した場合
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		slog.ErrorContext(ctx, "failed to create user",
			"operation", "create",
			"role", user.Role,
			"error", err,
		)
		return err
	}
	// gormで設定された値をドメインエンティティに反映
	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByUsername は指定ロールのユーザーをユーザー名で取得する。存在しない場合はnilを返す。
func (r *UserRepository) FindByUsername(ctx context.Context, username string, role domain.Role) (*domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).
		Where("username = ? AND role = ?", username, string(role)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find user",
			"operation", "find_by_username",
			"role", role,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// FindByID はIDでユーザーを取得する。存在しない場合はnilを返す。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find user",
			"operation", "find_by_id",
			"id", id,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}
