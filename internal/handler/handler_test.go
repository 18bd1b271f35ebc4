package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"reservation-service/internal/domain"
	"reservation-service/internal/encryption"
	"reservation-service/internal/session"
	"reservation-service/internal/token"
	"reservation-service/internal/usecase"
)

const (
	testKeyHex = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	testIVHex  = "aa112233445566778899aabbccddee22"
)

// memUserRepository はテスト用のインメモリリポジトリ。
type memUserRepository struct {
	users     []*domain.User
	createErr error
}

func (m *memUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, role domain.Role) (bool, error) {
	for _, u := range m.users {
		if u.Role == role && (u.Username == username || u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "user-" + strconv.Itoa(len(m.users)+1)
	user.CreatedAt = time.Now()
	m.users = append(m.users, user)
	return nil
}

func (m *memUserRepository) FindByUsername(ctx context.Context, username string, role domain.Role) (*domain.User, error) {
	for _, u := range m.users {
		if u.Role == role && u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// memBranchRepository はテスト用のインメモリリポジトリ。
type memBranchRepository struct {
	branches []*domain.Branch
}

func (m *memBranchRepository) ExistsByNameOrAddress(ctx context.Context, name, address, excludeID string) (bool, error) {
	for _, b := range m.branches {
		if b.ID == excludeID {
			continue
		}
		if b.Name == name || b.Address == address {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBranchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	branch.ID = "branch-" + strconv.Itoa(len(m.branches)+1)
	branch.CreatedAt = time.Now()
	m.branches = append(m.branches, branch)
	return nil
}

func (m *memBranchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	return nil
}

func (m *memBranchRepository) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	for _, b := range m.branches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (m *memBranchRepository) FindByName(ctx context.Context, name string) (*domain.Branch, error) {
	for _, b := range m.branches {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, nil
}

func (m *memBranchRepository) FindAll(ctx context.Context) ([]*domain.Branch, error) {
	return m.branches, nil
}

func (m *memBranchRepository) Delete(ctx context.Context, id string) error {
	for i, b := range m.branches {
		if b.ID == id {
			m.branches = append(m.branches[:i], m.branches[i+1:]...)
			return nil
		}
	}
	return nil
}

// memServiceRepository はテスト用のインメモリリポジトリ。
type memServiceRepository struct {
	services []*domain.Service
}

func (m *memServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	service.ID = "service-" + strconv.Itoa(len(m.services)+1)
	m.services = append(m.services, service)
	return nil
}

func (m *memServiceRepository) Update(ctx context.Context, service *domain.Service) error {
	return nil
}

func (m *memServiceRepository) FindByID(ctx context.Context, id string) (*domain.Service, error) {
	for _, s := range m.services {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memServiceRepository) FindByName(ctx context.Context, name string) ([]*domain.Service, error) {
	var out []*domain.Service
	for _, s := range m.services {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memServiceRepository) Delete(ctx context.Context, id string) error {
	return nil
}

// testEnv はハンドラテスト用の依存関係一式。
type testEnv struct {
	cipher   *encryption.Cipher
	tokens   *token.Service
	users    *memUserRepository
	branches *memBranchRepository
	services *memServiceRepository
	handlers Handlers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	material, err := encryption.NewKeyMaterial(testKeyHex, testIVHex)
	if err != nil {
		t.Fatalf("failed to create key material: %v", err)
	}
	cipher := encryption.NewCipher(material)
	tokens, err := token.NewService([]byte("handler-test-secret"))
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	env := &testEnv{
		cipher:   cipher,
		tokens:   tokens,
		users:    &memUserRepository{},
		branches: &memBranchRepository{},
		services: &memServiceRepository{},
	}

	auth := usecase.NewAuthService(env.users, cipher)
	cookies := session.NewCookieIssuer(tokens, cipher, []byte("0123456789abcdef0123456789abcdef"), time.Hour, 1000)
	env.handlers = Handlers{
		Member:  NewAuthHandler(auth, domain.RoleCustomer, cookies),
		Admin:   NewAuthHandler(auth, domain.RoleAdmin, session.NewBearerIssuer(tokens, time.Hour)),
		Crypto:  NewCryptoHandler(cipher),
		Branch:  NewBranchHandler(usecase.NewBranchService(env.branches)),
		Service: NewServiceHandler(usecase.NewCatalogService(env.services, env.branches)),
	}
	return env
}

func (e *testEnv) bearer(t *testing.T, role domain.Role) string {
	t.Helper()
	raw, err := e.tokens.Issue(domain.Identity{UserID: "actor-1", Username: "actor", Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + raw
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
