// Package httputil はHTTPレスポンス生成のユーティリティを提供する。
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse はエラーレスポンスの形式。
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON はJSONレスポンスを返す。
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// ヘッダーは既に送信済みのため、エラーログのみ出力
			slog.Error("failed to encode response",
				"status", status,
				"error", err,
			)
		}
	}
}

// Error はエラーレスポンスを返す。
func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// DecodeJSON はリクエストボディをJSONとして読み込む。未知のフィールドは拒否する。
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
