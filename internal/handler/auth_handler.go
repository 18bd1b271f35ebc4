// Package handler はHTTPハンドラを提供する。
package handler

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"reservation-service/internal/domain"
	"reservation-service/internal/middleware"
	"reservation-service/internal/session"
	"reservation-service/internal/usecase"
	"reservation-service/pkg/httputil"
)

var (
	emailRegex   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// AuthHandler はユーザー登録とログインのHTTPハンドラを提供する。
// マウントされた領域のロールでユーザーを扱う。
type AuthHandler struct {
	service *usecase.AuthService
	role    domain.Role
	issuer  session.Issuer
}

// NewAuthHandler は新しいAuthHandlerを生成する。
func NewAuthHandler(service *usecase.AuthService, role domain.Role, issuer session.Issuer) *AuthHandler {
	return &AuthHandler{
		service: service,
		role:    role,
		issuer:  issuer,
	}
}

// RegisterRequest はユーザー登録のリクエスト形式。
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Domicile  string `json:"domicile"`
}

// LoginRequest はログインのリクエスト形式。
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialResponse は登録済みユーザーのレスポンス形式。
type CredentialResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// RegisterResponse はユーザー登録のレスポンス形式。
type RegisterResponse struct {
	Message    string             `json:"message"`
	Credential CredentialResponse `json:"credential"`
}

// LoginResponse はログインのレスポンス形式。
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ProfileResponse はログイン中ユーザーのレスポンス形式。
type ProfileResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Domicile  string `json:"domicile"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func (req RegisterRequest) validate() (code, message string, ok bool) {
	if req.Username == "" || req.Password == "" || req.Email == "" {
		return "MISSING_FIELDS", "please provide required fields", false
	}
	if !emailRegex.MatchString(req.Email) {
		return "INVALID_EMAIL", "email is not valid", false
	}
	for _, v := range []string{req.Username, req.Email, req.FirstName, req.LastName, req.Gender, req.Domicile} {
		if htmlTagRegex.MatchString(v) {
			return "INVALID_INPUT", "HTML tags are not allowed", false
		}
	}
	return "", "", true
}

// Register はユーザーを登録する。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if code, message, ok := req.validate(); !ok {
		httputil.Error(w, http.StatusBadRequest, code, message)
		return
	}

	user, err := h.service.Register(r.Context(), usecase.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		Domicile:  req.Domicile,
	}, h.role)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "REGISTER_"+string(h.role), req.Username, middleware.AuditFailed)
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "USER_ALREADY_EXISTS", "email or username already taken")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "REGISTER_"+string(h.role), user.Username, middleware.AuditSuccess)
	httputil.JSON(w, http.StatusCreated, RegisterResponse{
		Message: "user registered successfully",
		Credential: CredentialResponse{
			Username: user.Username,
			Email:    user.Email,
			Role:     string(user.Role),
		},
	})
}

// Login は資格情報を検証し、セッションを発行する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "MISSING_FIELDS", "please provide username and password")
		return
	}

	identity, err := h.service.Authenticate(r.Context(), req.Username, req.Password, h.role)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "LOGIN_"+string(h.role), req.Username, middleware.AuditFailed)
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	token, err := h.issuer.Issue(w, r, identity)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "LOGIN_"+string(h.role), req.Username, middleware.AuditFailed)
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "LOGIN_"+string(h.role), identity.Username, middleware.AuditSuccess)
	httputil.JSON(w, http.StatusOK, LoginResponse{
		Message: "login successful",
		Token:   token,
	})
}

// Me はゲートが束縛した識別情報のユーザーを返す。
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	user, err := h.service.GetUser(r.Context(), identity)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Gender:    user.Gender,
		Domicile:  user.Domicile,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	})
}
