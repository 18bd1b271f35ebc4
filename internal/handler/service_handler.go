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

// ServiceHandler はサービス（メニュー）のHTTPハンドラを提供する。
type ServiceHandler struct {
	service *usecase.CatalogService
}

// NewServiceHandler は新しいServiceHandlerを生成する。
func NewServiceHandler(service *usecase.CatalogService) *ServiceHandler {
	return &ServiceHandler{service: service}
}

// ServiceRequest はサービスの作成・更新のリクエスト形式。
type ServiceRequest struct {
	BranchID    string `json:"branch_id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// ServiceResponse はサービスのレスポンス形式。
type ServiceResponse struct {
	ID          string `json:"id"`
	BranchID    string `json:"branch_id,omitempty"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// ServiceListResponse はサービス一覧のレスポンス形式。
type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
}

func toServiceResponse(s *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		BranchID:    s.BranchID,
		Name:        s.Name,
		Price:       s.Price,
		Duration:    s.Duration,
		Description: s.Description,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func (req ServiceRequest) input() usecase.ServiceInput {
	return usecase.ServiceInput{
		BranchID:    req.BranchID,
		Name:        req.Name,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
	}
}

// writeCatalogError はユースケースのエラーをHTTPレスポンスに変換する。
func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrServiceNotFound):
		httputil.Error(w, http.StatusNotFound, "SERVICE_NOT_FOUND", "service not found")
	case errors.Is(err, domain.ErrBranchNotFound):
		httputil.Error(w, http.StatusNotFound, "BRANCH_NOT_FOUND", "branch not found")
	default:
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// CreateService はサービスを作成する。
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Name == "" || req.Price == "" || req.Duration <= 0 {
		httputil.Error(w, http.StatusBadRequest, "MISSING_FIELDS", "missing required fields")
		return
	}

	service, err := h.service.CreateService(r.Context(), req.input())
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "CREATE_SERVICE", req.Name, middleware.AuditFailed)
		writeCatalogError(w, err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "CREATE_SERVICE", service.Name, middleware.AuditSuccess)
	httputil.JSON(w, http.StatusCreated, toServiceResponse(service))
}

// UpdateService はクエリのidで指定されたサービスを更新する。
func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.Error(w, http.StatusBadRequest, "MISSING_ID", "service id is required")
		return
	}
	var req ServiceRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	service, err := h.service.UpdateService(r.Context(), id, req.input())
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "UPDATE_SERVICE", id, middleware.AuditFailed)
		writeCatalogError(w, err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "UPDATE_SERVICE", id, middleware.AuditSuccess)
	httputil.JSON(w, http.StatusOK, toServiceResponse(service))
}

// FindServices はクエリのnameでサービスを検索する。認証不要。
func (h *ServiceHandler) FindServices(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.Error(w, http.StatusBadRequest, "MISSING_NAME", "name is required")
		return
	}

	services, err := h.service.FindServicesByName(r.Context(), name)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	response := ServiceListResponse{
		Services: make([]ServiceResponse, len(services)),
	}
	for i, s := range services {
		response.Services[i] = toServiceResponse(s)
	}
	httputil.JSON(w, http.StatusOK, response)
}

// DeleteService はクエリのidで指定されたサービスを削除する。
func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.Error(w, http.StatusBadRequest, "MISSING_ID", "service id is required")
		return
	}

	if err := h.service.DeleteService(r.Context(), id); err != nil {
		middleware.WriteAuditLog(r.Context(), "DELETE_SERVICE", id, middleware.AuditFailed)
		writeCatalogError(w, err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "DELETE_SERVICE", id, middleware.AuditSuccess)
	w.WriteHeader(http.StatusNoContent)
}
