// Package usecase はアプリケーションのユースケースを実装する。
package usecase

import (
	"context"
	"fmt"

	"reservation-service/internal/domain"
)

// UserRepository はユーザーのデータアクセスのインターフェース。
type UserRepository interface {
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, role domain.Role) (bool, error)
	Create(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string, role domain.Role) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// PasswordCipher はパスワードの暗号化と照合のインターフェース。
type PasswordCipher interface {
	Encrypt(plaintext string) (string, error)
	Matches(plaintext, storedCiphertext string) (bool, error)
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Gender    string
	Domicile  string
}

// AuthService はユーザー登録と認証のビジネスロジックを提供する。
type AuthService struct {
	repo   UserRepository
	cipher PasswordCipher
}

// NewAuthService は新しいAuthServiceを生成する。
func NewAuthService(repo UserRepository, cipher PasswordCipher) *AuthService {
	return &AuthService{
		repo:   repo,
		cipher: cipher,
	}
}

// Register は指定されたロールでユーザーを登録する。
// パスワードは決定的暗号化して保存する。
func (s *AuthService) Register(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, role)
	}

	// 既存チェック
	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email, role)
	if err != nil {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	encrypted, err := s.cipher.Encrypt(in.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypting password: %w", err)
	}

	user := &domain.User{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  encrypted,
		Gender:    in.Gender,
		Domicile:  in.Domicile,
		Role:      role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Authenticate はユーザー名とパスワードを検証し、識別情報を返す。
// ユーザーが存在しない場合とパスワード不一致の場合は同じエラーを返す。
func (s *AuthService) Authenticate(ctx context.Context, username, password string, role domain.Role) (domain.Identity, error) {
	user, err := s.repo.FindByUsername(ctx, username, role)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	ok, err := s.cipher.Matches(password, user.Password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("comparing password: %w", err)
	}
	if !ok {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	return domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// GetUser は識別情報に対応するユーザーを取得する。
func (s *AuthService) GetUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil || user.Role != identity.Role {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
