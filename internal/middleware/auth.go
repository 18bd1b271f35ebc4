package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"reservation-service/internal/domain"
	"reservation-service/pkg/httputil"
)

type contextKey struct{ name string }

var identityContextKey = &contextKey{name: "identity"}

// WithIdentity はリクエストコンテキストに識別情報を設定する。
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext はゲートが設定した識別情報を取得する。
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(domain.Identity)
	return identity, ok
}

// TokenVerifier はトークン検証のインターフェース。
type TokenVerifier interface {
	Verify(raw string) (domain.Identity, error)
}

// SkipFunc は認証を省略するリクエストかどうかを判定する。
type SkipFunc func(r *http.Request) bool

// PublicPaths は指定したパスと完全一致するリクエストの認証を省略する。
// 末尾セグメントによる判定は行わない。
func PublicPaths(paths ...string) SkipFunc {
	allowed := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		allowed[normalizePath(p)] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := allowed[normalizePath(r.URL.Path)]
		return ok
	}
}

func normalizePath(p string) string {
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// Gate はBearerトークンを検証し、ロールによるアクセス制御を行う。
// 判定はリクエストごとに独立しており、共有状態を持たない。
type Gate struct {
	verifier TokenVerifier
	roles    []domain.Role
	skip     SkipFunc
}

// GateOption はGateの設定を変更する。
type GateOption func(*Gate)

// RequireRoles は許可するロールを限定する。未指定の場合は既知のロールすべてを許可する。
func RequireRoles(roles ...domain.Role) GateOption {
	return func(g *Gate) {
		g.roles = append(g.roles, roles...)
	}
}

// WithSkip は認証を省略する条件を設定する。
func WithSkip(skip SkipFunc) GateOption {
	return func(g *Gate) {
		g.skip = skip
	}
}

// NewGate は新しいGateを生成する。
func NewGate(verifier TokenVerifier, opts ...GateOption) *Gate {
	g := &Gate{verifier: verifier}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handler はchiのミドルウェアとして使えるハンドラを返す。
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.skip != nil && g.skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			g.reject(w, r, "missing or malformed authorization header")
			return
		}

		identity, err := g.verifier.Verify(raw)
		if err != nil {
			g.reject(w, r, err.Error())
			return
		}

		if len(g.roles) > 0 && !slices.Contains(g.roles, identity.Role) {
			g.reject(w, r, "role not permitted: "+string(identity.Role))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// reject は理由をログにのみ残し、クライアントには一律の401を返す。
func (g *Gate) reject(w http.ResponseWriter, r *http.Request, reason string) {
	slog.DebugContext(r.Context(), "authorization rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"reason", reason,
	)
	httputil.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
}

func bearerToken(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" || strings.ContainsAny(raw, " \t") {
		return "", false
	}
	return raw, true
}
