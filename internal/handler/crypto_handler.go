package handler

import (
	"net/http"

	"reservation-service/internal/middleware"
	"reservation-service/pkg/httputil"
)

// TextCipher は文字列の暗号化と復号のインターフェース。
type TextCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// CryptoHandler は暗号化ユーティリティのHTTPハンドラを提供する。
type CryptoHandler struct {
	cipher TextCipher
}

// NewCryptoHandler は新しいCryptoHandlerを生成する。
func NewCryptoHandler(cipher TextCipher) *CryptoHandler {
	return &CryptoHandler{cipher: cipher}
}

// EncryptRequest は暗号化のリクエスト形式。
type EncryptRequest struct {
	Plaintext string `json:"plaintext"`
}

// EncryptResponse は暗号化のレスポンス形式。復号結果を併せて返す。
type EncryptResponse struct {
	Encrypted string `json:"encrypted"`
	Decrypted string `json:"decrypted"`
}

// DecryptRequest は復号のリクエスト形式。
type DecryptRequest struct {
	Encrypted string `json:"encrypted"`
}

// DecryptResponse は復号のレスポンス形式。
type DecryptResponse struct {
	Decrypted string `json:"decrypted"`
}

// Encrypt は平文を暗号化する。
func (h *CryptoHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	var req EncryptRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil || req.Plaintext == "" {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	encrypted, err := h.cipher.Encrypt(req.Plaintext)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "ENCRYPT", "", middleware.AuditFailed)
		httputil.Error(w, http.StatusInternalServerError, "ENCRYPTION_FAILED", "encryption failed")
		return
	}
	decrypted, err := h.cipher.Decrypt(encrypted)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "ENCRYPT", "", middleware.AuditFailed)
		httputil.Error(w, http.StatusInternalServerError, "ENCRYPTION_FAILED", "encryption failed")
		return
	}

	middleware.WriteAuditLog(r.Context(), "ENCRYPT", "", middleware.AuditSuccess)
	httputil.JSON(w, http.StatusOK, EncryptResponse{
		Encrypted: encrypted,
		Decrypted: decrypted,
	})
}

// Decrypt は暗号文を復号する。
func (h *CryptoHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	var req DecryptRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil || req.Encrypted == "" {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	decrypted, err := h.cipher.Decrypt(req.Encrypted)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "DECRYPT", "", middleware.AuditFailed)
		httputil.Error(w, http.StatusBadRequest, "DECRYPTION_FAILED", "decryption failed")
		return
	}

	middleware.WriteAuditLog(r.Context(), "DECRYPT", "", middleware.AuditSuccess)
	httputil.JSON(w, http.StatusOK, DecryptResponse{Decrypted: decrypted})
}
