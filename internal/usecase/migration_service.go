package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"reservation-service/internal/domain"
)

// MigrationRepository はスキーマ変更の実行と適用履歴のインターフェース。
type MigrationRepository interface {
	Dialect() domain.Dialect
	EnsureSchema(ctx context.Context) error
	FindAllApplied(ctx context.Context) ([]*domain.Migration, error)
	Apply(ctx context.Context, m *domain.Migration) error
}

// MigrationService は接続先の方言に合ったマイグレーションを適用する。
type MigrationService struct {
	repo   MigrationRepository
	source fs.FS
}

// NewMigrationService は新しいMigrationServiceを生成する。
// sourceは方言名のディレクトリ（mysql/, sqlite/）を直下に持つこと。
func NewMigrationService(repo MigrationRepository, source fs.FS) *MigrationService {
	return &MigrationService{
		repo:   repo,
		source: source,
	}
}

// ApplyMigrations は未適用のマイグレーションをバージョン順に適用し、適用数を返す。
func (s *MigrationService) ApplyMigrations(ctx context.Context) (int, error) {
	plan, err := s.plan(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range plan {
		if m.Status == domain.MigrationStatusApplied {
			continue
		}
		if err := s.repo.Apply(ctx, m); err != nil {
			return applied, fmt.Errorf("%w: version %s: %v", domain.ErrMigrationFailed, m.Version, err)
		}
		slog.InfoContext(ctx, "migration applied",
			"operation", "apply_migrations",
			"dialect", m.Dialect,
			"version", m.Version,
			"name", m.Name,
		)
		applied++
	}
	return applied, nil
}

// GetMigrationStatus は全マイグレーションと適用状況を返す。
func (s *MigrationService) GetMigrationStatus(ctx context.Context) ([]*domain.Migration, error) {
	return s.plan(ctx)
}

// plan は読み込んだマイグレーションに適用履歴を突き合わせる。
func (s *MigrationService) plan(ctx context.Context) ([]*domain.Migration, error) {
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare schema_migrations: %w", err)
	}

	dialect := s.repo.Dialect()
	migrations, err := s.load(dialect)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load migrations",
			"operation", "plan_migrations",
			"dialect", dialect,
			"error", err,
		)
		return nil, err
	}

	applied, err := s.repo.FindAllApplied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applied migrations: %w", err)
	}
	byVersion := make(map[string]*domain.Migration, len(applied))
	for _, a := range applied {
		byVersion[a.Version] = a
	}

	for _, m := range migrations {
		if a, ok := byVersion[m.Version]; ok {
			m.Status = domain.MigrationStatusApplied
			m.AppliedAt = a.AppliedAt
		}
	}
	return migrations, nil
}

// load は方言ディレクトリの.sqlファイルを読み込み、文に分割する。
func (s *MigrationService) load(dialect domain.Dialect) ([]*domain.Migration, error) {
	dir := string(dialect)
	entries, err := fs.ReadDir(s.source, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no %s directory", domain.ErrMigrationFileNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s migrations: %w", dir, err)
	}

	seen := make(map[string]string)
	var migrations []*domain.Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, err := parseMigrationFileName(entry.Name())
		if err != nil {
			return nil, err
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("%w: version %s used by both %s and %s", domain.ErrInvalidMigrationFile, version, other, entry.Name())
		}
		seen[version] = entry.Name()

		p := path.Join(dir, entry.Name())
		body, err := fs.ReadFile(s.source, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		statements := splitStatements(string(body))
		if len(statements) == 0 {
			return nil, fmt.Errorf("%w: %s has no statements", domain.ErrInvalidMigrationFile, p)
		}

		migrations = append(migrations, &domain.Migration{
			Version:    version,
			Name:       name,
			Dialect:    dialect,
			Path:       p,
			Statements: statements,
			Status:     domain.MigrationStatusPending,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseMigrationFileName はファイル名からバージョンと名前を取り出す。
// 形式: {version}_{name}.sql (例: 001_create_users.sql)
func parseMigrationFileName(filename string) (version, name string, err error) {
	version, name, ok := strings.Cut(strings.TrimSuffix(filename, ".sql"), "_")
	if !ok || version == "" || name == "" {
		return "", "", fmt.Errorf("%w: %s (expected format: {version}_{name}.sql)", domain.ErrInvalidMigrationFile, filename)
	}
	return version, name, nil
}

// splitStatements はSQLを";"区切りで文に分割する。
// "--"で始まる行はコメントとして捨てる。文字列リテラル内の";"は扱わない。
func splitStatements(sql string) []string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(sql))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var statements []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
