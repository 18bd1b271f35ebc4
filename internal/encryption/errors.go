package encryption

import "errors"

var (
	// ErrInvalidKeyMaterial は設定されたシークレットが不正な場合のエラー（起動時の設定エラー）。
	ErrInvalidKeyMaterial = errors.New("encryption: invalid key material")

	// ErrEmptyKey は空の鍵が指定された場合のエラー。
	ErrEmptyKey = errors.New("encryption: empty key")

	// ErrMalformedCiphertext は暗号文の形式が不正な場合のエラー。
	ErrMalformedCiphertext = errors.New("encryption: malformed ciphertext")

	// ErrInvalidPadding はPKCS#7パディングが不正な場合のエラー。鍵の不一致でも発生する。
	ErrInvalidPadding = errors.New("encryption: invalid padding")

	// ErrInvalidPlaintext は復号結果がUTF-8文字列でない場合のエラー。
	ErrInvalidPlaintext = errors.New("encryption: plaintext is not valid UTF-8")
)
