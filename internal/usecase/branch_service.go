package usecase

import (
	"context"
	"fmt"

	"reservation-service/internal/domain"
)

// BranchRepository は店舗のデータアクセスのインターフェース。
type BranchRepository interface {
	ExistsByNameOrAddress(ctx context.Context, name, address, excludeID string) (bool, error)
	Create(ctx context.Context, branch *domain.Branch) error
	Update(ctx context.Context, branch *domain.Branch) error
	FindByID(ctx context.Context, id string) (*domain.Branch, error)
	FindByName(ctx context.Context, name string) (*domain.Branch, error)
	FindAll(ctx context.Context) ([]*domain.Branch, error)
	Delete(ctx context.Context, id string) error
}

// BranchInput は店舗の作成・更新の入力。
type BranchInput struct {
	Name         string
	Address      string
	ContactPhone string
	ContactEmail string
}

// BranchService は店舗に関するビジネスロジックを提供する。
type BranchService struct {
	repo BranchRepository
}

// NewBranchService は新しいBranchServiceを生成する。
func NewBranchService(repo BranchRepository) *BranchService {
	return &BranchService{repo: repo}
}

// CreateBranch は店舗を作成する。名前または住所が重複する場合はエラー。
func (s *BranchService) CreateBranch(ctx context.Context, in BranchInput) (*domain.Branch, error) {
	exists, err := s.repo.ExistsByNameOrAddress(ctx, in.Name, in.Address, "")
	if err != nil {
		return nil, fmt.Errorf("checking existing branch: %w", err)
	}
	if exists {
		return nil, domain.ErrBranchAlreadyExists
	}

	branch := &domain.Branch{
		Name:         in.Name,
		Address:      in.Address,
		ContactPhone: in.ContactPhone,
		ContactEmail: in.ContactEmail,
	}
	if err := s.repo.Create(ctx, branch); err != nil {
		return nil, fmt.Errorf("creating branch: %w", err)
	}
	return branch, nil
}

// UpdateBranch は店舗を更新する。空の項目は変更しない。
// 名前または住所が他の店舗と重複する場合はエラー。
func (s *BranchService) UpdateBranch(ctx context.Context, id string, in BranchInput) (*domain.Branch, error) {
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding branch: %w", err)
	}
	if branch == nil {
		return nil, domain.ErrBranchNotFound
	}

	name, address := branch.Name, branch.Address
	if in.Name != "" {
		name = in.Name
	}
	if in.Address != "" {
		address = in.Address
	}
	exists, err := s.repo.ExistsByNameOrAddress(ctx, name, address, branch.ID)
	if err != nil {
		return nil, fmt.Errorf("checking existing branch: %w", err)
	}
	if exists {
		return nil, domain.ErrBranchAlreadyExists
	}

	branch.Name = name
	branch.Address = address
	if in.ContactPhone != "" {
		branch.ContactPhone = in.ContactPhone
	}
	if in.ContactEmail != "" {
		branch.ContactEmail = in.ContactEmail
	}

	if err := s.repo.Update(ctx, branch); err != nil {
		return nil, fmt.Errorf("updating branch: %w", err)
	}
	return branch, nil
}

// GetBranchByName は名前で店舗を取得する。
func (s *BranchService) GetBranchByName(ctx context.Context, name string) (*domain.Branch, error) {
	branch, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding branch: %w", err)
	}
	if branch == nil {
		return nil, domain.ErrBranchNotFound
	}
	return branch, nil
}

// ListBranches は全店舗を取得する。
func (s *BranchService) ListBranches(ctx context.Context) ([]*domain.Branch, error) {
	branches, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding branches: %w", err)
	}
	return branches, nil
}

// DeleteBranch は店舗を削除する。
func (s *BranchService) DeleteBranch(ctx context.Context, id string) error {
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("finding branch: %w", err)
	}
	if branch == nil {
		return domain.ErrBranchNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting branch: %w", err)
	}
	return nil
}
