package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"reservation-service/internal/domain"
	"reservation-service/internal/middleware"
	"reservation-service/pkg/httputil"
)

// Handlers はルーターに登録するハンドラの集合。
type Handlers struct {
	Member  *AuthHandler
	Admin   *AuthHandler
	Crypto  *CryptoHandler
	Branch  *BranchHandler
	Service *ServiceHandler
}

// NewRouter はルーターを生成する。
// 顧客領域は任意のロールのトークンを、管理領域は管理者トークンのみを受け付ける。
func NewRouter(h Handlers, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	memberGate := middleware.NewGate(verifier)
	adminGate := middleware.NewGate(verifier,
		middleware.RequireRoles(domain.RoleAdmin),
		middleware.WithSkip(middleware.PublicPaths("/admin/register", "/admin/login")),
	)
	requireAdmin := middleware.NewGate(verifier, middleware.RequireRoles(domain.RoleAdmin))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// ルート定義
	r.Route("/area/member", func(r chi.Router) {
		r.Post("/register", h.Member.Register)
		r.Post("/login", h.Member.Login)
		r.With(memberGate.Handler).Get("/me", h.Member.Me)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminGate.Handler)
		r.Post("/register", h.Admin.Register)
		r.Post("/login", h.Admin.Login)
		r.Get("/me", h.Admin.Me)
	})

	r.Route("/crypto", func(r chi.Router) {
		r.Use(requireAdmin.Handler)
		r.Post("/enc", h.Crypto.Encrypt)
		r.Post("/dec", h.Crypto.Decrypt)
	})

	r.Route("/feature/branch", func(r chi.Router) {
		r.Use(requireAdmin.Handler)
		r.Post("/", h.Branch.CreateBranch)
		r.Put("/", h.Branch.UpdateBranch)
		r.Get("/", h.Branch.GetBranchByName)
		r.Get("/all", h.Branch.ListBranches)
		r.Delete("/", h.Branch.DeleteBranch)
	})

	r.Route("/feature/service", func(r chi.Router) {
		r.Get("/", h.Service.FindServices)
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin.Handler)
			r.Post("/", h.Service.CreateService)
			r.Put("/", h.Service.UpdateService)
			r.Delete("/", h.Service.DeleteService)
		})
	})

	return r
}
