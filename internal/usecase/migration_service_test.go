package usecase

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"reservation-service/internal/domain"
)

// mockMigrationRepository はテスト用のモック。
type mockMigrationRepository struct {
	dialect     domain.Dialect
	applied     map[string]*domain.Migration
	executed    []*domain.Migration
	applyError  error
	ensureError error
}

func newMockMigrationRepository(dialect domain.Dialect) *mockMigrationRepository {
	return &mockMigrationRepository{
		dialect: dialect,
		applied: make(map[string]*domain.Migration),
	}
}

func (m *mockMigrationRepository) Dialect() domain.Dialect {
	return m.dialect
}

func (m *mockMigrationRepository) EnsureSchema(ctx context.Context) error {
	return m.ensureError
}

func (m *mockMigrationRepository) FindAllApplied(ctx context.Context) ([]*domain.Migration, error) {
	var out []*domain.Migration
	for _, a := range m.applied {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockMigrationRepository) Apply(ctx context.Context, mig *domain.Migration) error {
	if m.applyError != nil {
		return m.applyError
	}
	now := time.Now()
	m.executed = append(m.executed, mig)
	m.applied[mig.Version] = &domain.Migration{Version: mig.Version, AppliedAt: &now}
	return nil
}

// testMigrationSource は方言ごとに異なるSQLを持つ読み込み元。
func testMigrationSource() fstest.MapFS {
	return fstest.MapFS{
		"mysql/001_create_users.sql":     {Data: []byte("CREATE TABLE users (id INT) ENGINE=InnoDB;")},
		"mysql/002_create_branches.sql":  {Data: []byte("CREATE TABLE branches (id INT) ENGINE=InnoDB;")},
		"sqlite/002_create_branches.sql": {Data: []byte("CREATE TABLE branches (id INTEGER);\nCREATE INDEX idx_b ON branches (id);")},
		"sqlite/001_create_users.sql":    {Data: []byte("-- users\nCREATE TABLE users (id INTEGER);")},
		"sqlite/README.md":               {Data: []byte("not a migration")},
	}
}

func TestMigrationService_ApplyMigrations_UsesDialectDirectory(t *testing.T) {
	ctx := context.Background()
	repo := newMockMigrationRepository(domain.DialectSQLite)
	service := NewMigrationService(repo, testMigrationSource())

	count, err := service.ApplyMigrations(ctx)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", count)
	}

	// バージョン順に実行される
	if repo.executed[0].Version != "001" || repo.executed[1].Version != "002" {
		t.Errorf("unexpected order: %s, %s", repo.executed[0].Version, repo.executed[1].Version)
	}
	if repo.executed[0].Path != "sqlite/001_create_users.sql" {
		t.Errorf("expected sqlite file, got %s", repo.executed[0].Path)
	}
	if got := repo.executed[1].Statements; len(got) != 2 || got[1] != "CREATE INDEX idx_b ON branches (id)" {
		t.Errorf("unexpected statements: %q", got)
	}
	if got := repo.executed[0].Statements; len(got) != 1 || got[0] != "CREATE TABLE users (id INTEGER)" {
		t.Errorf("comment line should be dropped, got %q", got)
	}
}

func TestMigrationService_ApplyMigrations_AlreadyApplied(t *testing.T) {
	ctx := context.Background()
	repo := newMockMigrationRepository(domain.DialectMySQL)
	service := NewMigrationService(repo, testMigrationSource())

	if _, err := service.ApplyMigrations(ctx); err != nil {
		t.Fatalf("first ApplyMigrations failed: %v", err)
	}
	count, err := service.ApplyMigrations(ctx)
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 applied migrations, got %d", count)
	}
	if len(repo.executed) != 2 {
		t.Errorf("expected each migration to run once, got %d runs", len(repo.executed))
	}
}

func TestMigrationService_ApplyMigrations_Error(t *testing.T) {
	repo := newMockMigrationRepository(domain.DialectMySQL)
	repo.applyError = errors.New("syntax error")
	service := NewMigrationService(repo, testMigrationSource())

	count, err := service.ApplyMigrations(context.Background())
	if !errors.Is(err, domain.ErrMigrationFailed) {
		t.Errorf("expected ErrMigrationFailed, got %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 applied migrations, got %d", count)
	}
}

func TestMigrationService_GetMigrationStatus(t *testing.T) {
	ctx := context.Background()
	repo := newMockMigrationRepository(domain.DialectSQLite)
	appliedAt := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	repo.applied["001"] = &domain.Migration{Version: "001", AppliedAt: &appliedAt}

	migrations, err := NewMigrationService(repo, testMigrationSource()).GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}

	if migrations[0].Status != domain.MigrationStatusApplied || !migrations[0].AppliedAt.Equal(appliedAt) {
		t.Errorf("001: expected applied at %v, got %s %v", appliedAt, migrations[0].Status, migrations[0].AppliedAt)
	}
	if migrations[1].Status != domain.MigrationStatusPending || migrations[1].AppliedAt != nil {
		t.Errorf("002: expected pending, got %s", migrations[1].Status)
	}
	if len(repo.executed) != 0 {
		t.Error("status must not apply migrations")
	}
}

func TestMigrationService_EnsureSchemaError(t *testing.T) {
	ctx := context.Background()
	repo := newMockMigrationRepository(domain.DialectSQLite)
	repo.ensureError = errors.New("connection refused")
	service := NewMigrationService(repo, testMigrationSource())

	if _, err := service.ApplyMigrations(ctx); err == nil {
		t.Error("expected error when schema_migrations cannot be prepared, got nil")
	}
	if _, err := service.GetMigrationStatus(ctx); err == nil {
		t.Error("expected error when schema_migrations cannot be prepared, got nil")
	}
}

func TestMigrationService_UnsupportedDialect(t *testing.T) {
	repo := newMockMigrationRepository("postgres")
	service := NewMigrationService(repo, testMigrationSource())

	_, err := service.ApplyMigrations(context.Background())
	if !errors.Is(err, domain.ErrMigrationFileNotFound) {
		t.Errorf("expected ErrMigrationFileNotFound, got %v", err)
	}
}

func TestMigrationService_InvalidFiles(t *testing.T) {
	tests := []struct {
		name   string
		source fstest.MapFS
	}{
		{
			name: "duplicate version",
			source: fstest.MapFS{
				"sqlite/001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
				"sqlite/001_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
			},
		},
		{
			name: "comments only",
			source: fstest.MapFS{
				"sqlite/001_empty.sql": {Data: []byte("-- nothing here\n")},
			},
		},
		{
			name: "bad file name",
			source: fstest.MapFS{
				"sqlite/create.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockMigrationRepository(domain.DialectSQLite)
			_, err := NewMigrationService(repo, tt.source).ApplyMigrations(context.Background())
			if !errors.Is(err, domain.ErrInvalidMigrationFile) {
				t.Errorf("expected ErrInvalidMigrationFile, got %v", err)
			}
			if len(repo.executed) != 0 {
				t.Error("nothing should be applied when a file is invalid")
			}
		})
	}
}

func TestParseMigrationFileName(t *testing.T) {
	version, name, err := parseMigrationFileName("001_create_users.sql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != "001" || name != "create_users" {
		t.Errorf("want (001, create_users), got (%s, %s)", version, name)
	}

	for _, bad := range []string{"create.sql", "_x.sql", "001_.sql"} {
		if _, _, err := parseMigrationFileName(bad); !errors.Is(err, domain.ErrInvalidMigrationFile) {
			t.Errorf("%s: want ErrInvalidMigrationFile, got %v", bad, err)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- header\nCREATE TABLE a (id INT);\n\n  -- note\nCREATE INDEX i ON a (id);\n")
	want := []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a (id)"}
	if len(got) != len(want) {
		t.Fatalf("want %d statements, got %q", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement %d: want %q, got %q", i, want[i], got[i])
		}
	}
}
