// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"time"
)

// 監査ログの結果
const (
	AuditSuccess = "SUCCESS"
	AuditFailed  = "FAILED"
)

// WriteAuditLog は監査ログを出力する。
// subjectには操作対象（ユーザー名・店舗名など）を渡す。パスワードやトークンは渡さないこと。
func WriteAuditLog(ctx context.Context, operation string, subject string, result string) {
	attrs := []any{
		"operation", operation,
		"subject", subject,
		"result", result,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	}
	if identity, ok := IdentityFromContext(ctx); ok {
		attrs = append(attrs, "actor_id", identity.UserID, "actor_role", string(identity.Role))
	}
	slog.InfoContext(ctx, "operation completed", attrs...)
}
