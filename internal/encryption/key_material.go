// Package encryption は決定的な共通鍵暗号化を提供する。
//
// 同じ平文・同じ鍵からは常に同じ暗号文が得られる。暗号文同士の比較で
// 一致判定を行うための方式であり、ランダム化された暗号化として扱ってはならない。
package encryption

import (
	"crypto/aes"
	"encoding/hex"
	"fmt"
)

const saltPartSize = 16 // 32bitワード4つ分

// KeyMaterial はプロセス起動時に一度だけ構築される鍵素材を表す。
// 構築後は読み取り専用。
type KeyMaterial struct {
	secret []byte
	iv     []byte
	salt   []byte
}

// NewKeyMaterial は16進文字列の鍵シークレットとIVシークレットから鍵素材を構築する。
// ソルトは両シークレットの先頭16バイトを連結したもの。
func NewKeyMaterial(keyHex, ivHex string) (*KeyMaterial, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: key secret is not hex: %v", ErrInvalidKeyMaterial, err)
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("%w: iv secret is not hex: %v", ErrInvalidKeyMaterial, err)
	}
	if len(key) < saltPartSize {
		return nil, fmt.Errorf("%w: key secret must be at least %d bytes, got %d", ErrInvalidKeyMaterial, saltPartSize, len(key))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv secret must be %d bytes, got %d", ErrInvalidKeyMaterial, aes.BlockSize, len(iv))
	}

	salt := make([]byte, 0, saltPartSize*2)
	salt = append(salt, key[:saltPartSize]...)
	salt = append(salt, iv[:saltPartSize]...)

	return &KeyMaterial{
		// KDFのパスワードには設定値の文字列そのものを使う
		secret: []byte(keyHex),
		iv:     iv,
		salt:   salt,
	}, nil
}

// Salt はソルトのコピーを返す。
func (k *KeyMaterial) Salt() []byte {
	return append([]byte(nil), k.salt...)
}
