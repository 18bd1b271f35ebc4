package usecase

import (
	"context"
	"fmt"

	"reservation-service/internal/domain"
)

// ServiceRepository はサービス（メニュー）のデータアクセスのインターフェース。
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, service *domain.Service) error
	FindByID(ctx context.Context, id string) (*domain.Service, error)
	FindByName(ctx context.Context, name string) ([]*domain.Service, error)
	Delete(ctx context.Context, id string) error
}

// ServiceInput はサービスの作成・更新の入力。
type ServiceInput struct {
	BranchID    string
	Name        string
	Price       string
	Duration    int
	Description string
}

// CatalogService はサービス（メニュー）に関するビジネスロジックを提供する。
type CatalogService struct {
	repo     ServiceRepository
	branches BranchRepository
}

// NewCatalogService は新しいCatalogServiceを生成する。
func NewCatalogService(repo ServiceRepository, branches BranchRepository) *CatalogService {
	return &CatalogService{
		repo:     repo,
		branches: branches,
	}
}

// CreateService はサービスを作成する。店舗IDが指定された場合は存在を確認する。
func (s *CatalogService) CreateService(ctx context.Context, in ServiceInput) (*domain.Service, error) {
	if err := s.ensureBranch(ctx, in.BranchID); err != nil {
		return nil, err
	}

	service := &domain.Service{
		BranchID:    in.BranchID,
		Name:        in.Name,
		Price:       in.Price,
		Duration:    in.Duration,
		Description: in.Description,
	}
	if err := s.repo.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("creating service: %w", err)
	}
	return service, nil
}

// UpdateService はサービスを更新する。空の項目は変更しない。
func (s *CatalogService) UpdateService(ctx context.Context, id string, in ServiceInput) (*domain.Service, error) {
	service, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding service: %w", err)
	}
	if service == nil {
		return nil, domain.ErrServiceNotFound
	}

	if in.BranchID != "" {
		if err := s.ensureBranch(ctx, in.BranchID); err != nil {
			return nil, err
		}
		service.BranchID = in.BranchID
	}
	if in.Name != "" {
		service.Name = in.Name
	}
	if in.Price != "" {
		service.Price = in.Price
	}
	if in.Duration > 0 {
		service.Duration = in.Duration
	}
	if in.Description != "" {
		service.Description = in.Description
	}

	if err := s.repo.Update(ctx, service); err != nil {
		return nil, fmt.Errorf("updating service: %w", err)
	}
	return service, nil
}

// FindServicesByName は名前でサービスを検索する。
func (s *CatalogService) FindServicesByName(ctx context.Context, name string) ([]*domain.Service, error) {
	services, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding services: %w", err)
	}
	if len(services) == 0 {
		return nil, domain.ErrServiceNotFound
	}
	return services, nil
}

// DeleteService はサービスを削除する。
func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	service, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("finding service: %w", err)
	}
	if service == nil {
		return domain.ErrServiceNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting service: %w", err)
	}
	return nil
}

func (s *CatalogService) ensureBranch(ctx context.Context, branchID string) error {
	if branchID == "" {
		return nil
	}
	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return fmt.Errorf("finding branch: %w", err)
	}
	if branch == nil {
		return domain.ErrBranchNotFound
	}
	return nil
}
