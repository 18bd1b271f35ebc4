package handler

import (
	"errors"
	"net/http"
	"time"

	"reservation-service/internal/domain"
	"reservation-service/internal/middleware"
	"reservation-service/internal/usecase"
	"reservation-service/pkg/httputil"
)

// BranchHandler は店舗のHTTPハンドラを提供する。
type BranchHandler struct {
	service *usecase.BranchService
}

// NewBranchHandler は新しいBranchHandlerを生成する。
func NewBranchHandler(service *usecase.BranchService) *BranchHandler {
	return &BranchHandler{service: service}
}

// BranchRequest は店舗の作成・更新のリクエスト形式。
type BranchRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
}

// BranchResponse は店舗のレスポンス形式。
type BranchResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
	CreatedAt    string `json:"created_at"`
}

// BranchListResponse は店舗一覧のレスポンス形式。
type BranchListResponse struct {
	Branches []BranchResponse `json:"branches"`
}

func toBranchResponse(b *domain.Branch) BranchResponse {
	return BranchResponse{
		ID:           b.ID,
		Name:         b.Name,
		Address:      b.Address,
		ContactPhone: b.ContactPhone,
		ContactEmail: b.ContactEmail,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

func (req BranchRequest) input() usecase.BranchInput {
	return usecase.BranchInput{
		Name:         req.Name,
		Address:      req.Address,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	}
}

// CreateBranch は店舗を作成する。
func (h *BranchHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req BranchRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Name == "" || req.Address == "" || req.ContactPhone == "" || req.ContactEmail == "" {
		httputil.Error(w, http.StatusBadRequest, "MISSING_FIELDS", "missing required fields")
		return
	}

	branch, err := h.service.CreateBranch(r.Context(), req.input())
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "CREATE_BRANCH", req.Name, middleware.AuditFailed)
		if errors.Is(err, domain.ErrBranchAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "BRANCH_ALREADY_EXISTS", "branch with the same name or address already exists")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "CREATE_BRANCH", branch.Name, middleware.AuditSuccess)
	httputil.JSON(w, http.StatusCreated, toBranchResponse(branch))
}

// UpdateBranch はクエリのidで指定された店舗を更新する。
func (h *BranchHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.Error(w, http.StatusBadRequest, "MISSING_ID", "id is required")
		return
	}
	var req BranchRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	branch, err := h.service.UpdateBranch(r.Context(), id, req.input())
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "UPDATE_BRANCH", id, middleware.AuditFailed)
		switch {
		case errors.Is(err, domain.ErrBranchNotFound):
			httputil.Error(w, http.StatusNotFound, "BRANCH_NOT_FOUND", "branch not found")
		case errors.Is(err, domain.ErrBranchAlreadyExists):
			httputil.Error(w, http.StatusConflict, "BRANCH_ALREADY_EXISTS", "branch with the same name or address already exists")
		default:
			httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	middleware.WriteAuditLog(r.Context(), "UPDATE_BRANCH", id, middleware.AuditSuccess)
	httputil.JSON(w, http.StatusOK, toBranchResponse(branch))
}

// GetBranchByName はクエリのnameで店舗を取得する。
func (h *BranchHandler) GetBranchByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.Error(w, http.StatusBadRequest, "MISSING_NAME", "name is required")
		return
	}

	branch, err := h.service.GetBranchByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrBranchNotFound) {
			httputil.Error(w, http.StatusNotFound, "BRANCH_NOT_FOUND", "branch not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, toBranchResponse(branch))
}

// ListBranches は全店舗を返す。
func (h *BranchHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.service.ListBranches(r.Context())
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := BranchListResponse{
		Branches: make([]BranchResponse, len(branches)),
	}
	for i, b := range branches {
		response.Branches[i] = toBranchResponse(b)
	}
	httputil.JSON(w, http.StatusOK, response)
}

// DeleteBranch はクエリのidで指定された店舗を削除する。
func (h *BranchHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.Error(w, http.StatusBadRequest, "MISSING_ID", "id is required")
		return
	}

	if err := h.service.DeleteBranch(r.Context(), id); err != nil {
		middleware.WriteAuditLog(r.Context(), "DELETE_BRANCH", id, middleware.AuditFailed)
		if errors.Is(err, domain.ErrBranchNotFound) {
			httputil.Error(w, http.StatusNotFound, "BRANCH_NOT_FOUND", "branch not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "DELETE_BRANCH", id, middleware.AuditSuccess)
	w.WriteHeader(http.StatusNoContent)
}
