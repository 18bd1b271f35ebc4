package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"reservation-service/internal/domain"
	"reservation-service/internal/middleware"
)

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.Member.Register(rec, jsonRequest(t, http.MethodPost, "/area/member/register", RegisterRequest{
		Username: "alice",
		Password: "hunter2",
		Email:    "alice@example.com",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("want status 201, got %d", rec.Code)
	}

	var resp RegisterResponse
	decodeBody(t, rec, &resp)
	if resp.Credential.Role != string(domain.RoleCustomer) {
		t.Errorf("want role CUSTOMER, got %s", resp.Credential.Role)
	}

	// パスワードは平文で保存されない
	stored := env.users.users[0].Password
	if stored == "hunter2" {
		t.Fatal("password must not be stored in plaintext")
	}
	want, err := env.cipher.Encrypt("hunter2")
	if err != nil {
		t.Fatalf("failed to encrypt: %v", err)
	}
	if stored != want {
		t.Errorf("want stored ciphertext %s, got %s", want, stored)
	}
}

func TestRegister_AdminAreaAssignsAdminRole(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.Admin.Register(rec, jsonRequest(t, http.MethodPost, "/admin/register", RegisterRequest{
		Username: "root",
		Password: "toor",
		Email:    "root@example.com",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("want status 201, got %d", rec.Code)
	}
	if env.users.users[0].Role != domain.RoleAdmin {
		t.Errorf("want role ADMIN, got %s", env.users.users[0].Role)
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      RegisterRequest
		wantCode string
	}{
		{name: "missing password", req: RegisterRequest{Username: "alice", Email: "alice@example.com"}, wantCode: "MISSING_FIELDS"},
		{name: "invalid email", req: RegisterRequest{Username: "alice", Password: "x", Email: "alice@"}, wantCode: "INVALID_EMAIL"},
		{name: "html in username", req: RegisterRequest{Username: "<script>x</script>", Password: "x", Email: "alice@example.com"}, wantCode: "INVALID_INPUT"},
		{name: "html in domicile", req: RegisterRequest{Username: "alice", Password: "x", Email: "alice@example.com", Domicile: "<b>Tokyo</b>"}, wantCode: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := httptest.NewRecorder()
			env.handlers.Member.Register(rec, jsonRequest(t, http.MethodPost, "/area/member/register", tt.req))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want status 400, got %d", rec.Code)
			}
			var resp map[string]string
			decodeBody(t, rec, &resp)
			if resp["code"] != tt.wantCode {
				t.Errorf("want code %s, got %s", tt.wantCode, resp["code"])
			}
			if len(env.users.users) != 0 {
				t.Error("user must not be created")
			}
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	req := RegisterRequest{Username: "alice", Password: "x", Email: "alice@example.com"}

	env.handlers.Member.Register(httptest.NewRecorder(), jsonRequest(t, http.MethodPost, "/area/member/register", req))

	rec := httptest.NewRecorder()
	env.handlers.Member.Register(rec, jsonRequest(t, http.MethodPost, "/area/member/register", req))
	if rec.Code != http.StatusConflict {
		t.Errorf("want status 409, got %d", rec.Code)
	}
}

func TestRegister_ConcurrentDuplicate(t *testing.T) {
	env := newTestEnv(t)
	// 既存チェック後に一意制約で弾かれた場合も409を返す
	env.users.createErr = domain.ErrUserAlreadyExists

	rec := httptest.NewRecorder()
	env.handlers.Member.Register(rec, jsonRequest(t, http.MethodPost, "/area/member/register",
		RegisterRequest{Username: "alice", Password: "x", Email: "alice@example.com"}))
	if rec.Code != http.StatusConflict {
		t.Errorf("want status 409, got %d", rec.Code)
	}
}

func TestLogin_CookieSession(t *testing.T) {
	env := newTestEnv(t)
	env.handlers.Member.Register(httptest.NewRecorder(), jsonRequest(t, http.MethodPost, "/area/member/register",
		RegisterRequest{Username: "alice", Password: "hunter2", Email: "alice@example.com"}))

	rec := httptest.NewRecorder()
	env.handlers.Member.Login(rec, jsonRequest(t, http.MethodPost, "/area/member/login",
		LoginRequest{Username: "alice", Password: "hunter2"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("want status 200, got %d", rec.Code)
	}

	var resp LoginResponse
	decodeBody(t, rec, &resp)
	identity, err := env.tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if identity.Username != "alice" || identity.Role != domain.RoleCustomer {
		t.Errorf("unexpected identity: %+v", identity)
	}

	if got := len(rec.Result().Cookies()); got != 2 {
		t.Errorf("want 2 session cookies, got %d", got)
	}
	if rec.Header().Get("Authorization") != "Bearer "+resp.Token {
		t.Errorf("want Authorization header with issued token")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.handlers.Admin.Register(httptest.NewRecorder(), jsonRequest(t, http.MethodPost, "/admin/register",
		RegisterRequest{Username: "root", Password: "toor", Email: "root@example.com"}))

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{name: "wrong password", req: LoginRequest{Username: "root", Password: "wrong"}},
		{name: "unknown user", req: LoginRequest{Username: "nobody", Password: "toor"}},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.handlers.Admin.Login(rec, jsonRequest(t, http.MethodPost, "/admin/login", tt.req))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("want status 401, got %d", rec.Code)
			}
			bodies = append(bodies, rec.Body.String())
		})
	}

	// ユーザーの存在有無を応答から区別できない
	if len(bodies) == 2 && bodies[0] != bodies[1] {
		t.Errorf("want identical bodies, got %q and %q", bodies[0], bodies[1])
	}
}

func TestLogin_CustomerCannotLoginToAdminArea(t *testing.T) {
	env := newTestEnv(t)
	env.handlers.Member.Register(httptest.NewRecorder(), jsonRequest(t, http.MethodPost, "/area/member/register",
		RegisterRequest{Username: "alice", Password: "hunter2", Email: "alice@example.com"}))

	rec := httptest.NewRecorder()
	env.handlers.Admin.Login(rec, jsonRequest(t, http.MethodPost, "/admin/login",
		LoginRequest{Username: "alice", Password: "hunter2"}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("want status 401, got %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	env.handlers.Member.Register(httptest.NewRecorder(), jsonRequest(t, http.MethodPost, "/area/member/register",
		RegisterRequest{Username: "alice", Password: "hunter2", Email: "alice@example.com", Domicile: "Tokyo"}))
	user := env.users.users[0]

	req := httptest.NewRequest(http.MethodGet, "/area/member/me", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), domain.Identity{
		UserID: user.ID, Username: user.Username, Role: user.Role,
	}))

	rec := httptest.NewRecorder()
	env.handlers.Member.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want status 200, got %d", rec.Code)
	}
	var resp ProfileResponse
	decodeBody(t, rec, &resp)
	if resp.Username != "alice" || resp.Domicile != "Tokyo" {
		t.Errorf("unexpected profile: %+v", resp)
	}

	// 識別情報が無い場合
	rec = httptest.NewRecorder()
	env.handlers.Member.Me(rec, httptest.NewRequest(http.MethodGet, "/area/member/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("want status 401, got %d", rec.Code)
	}
}
