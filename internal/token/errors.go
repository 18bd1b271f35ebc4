package token

import "errors"

var (
	// ErrMissingSigningKey は署名用シークレットが設定されていない場合のエラー（起動時の設定エラー）。
	ErrMissingSigningKey = errors.New("token: missing signing key")

	// ErrInvalidSignature は署名が一致しない場合のエラー。
	ErrInvalidSignature = errors.New("token: invalid signature")

	// ErrExpired は有効期限切れの場合のエラー。
	ErrExpired = errors.New("token: expired")

	// ErrMalformed は形式・クレームが不正な場合のエラー。未知のロールも含む。
	ErrMalformed = errors.New("token: malformed")
)
