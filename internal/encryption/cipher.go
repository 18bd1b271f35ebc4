package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 1000
	derivedKeyLen = 32 // AES-256
)

// Cipher はAES-256-CBC + PKCS#7による決定的暗号化を提供する。
// 鍵は呼び出しごとにPBKDF2-HMAC-SHA256で導出し、保持しない。
type Cipher struct {
	material *KeyMaterial
}

// NewCipher は新しいCipherを生成する。
func NewCipher(material *KeyMaterial) *Cipher {
	return &Cipher{material: material}
}

// Encrypt は既定の鍵シークレットで平文を暗号化し、Base64文字列を返す。
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	return c.EncryptWithKey(plaintext, c.material.secret)
}

// EncryptWithKey は指定した鍵で平文を暗号化し、Base64文字列を返す。
func (c *Cipher) EncryptWithKey(plaintext string, key []byte) (string, error) {
	sealed, err := c.SealWithKey([]byte(plaintext), key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt は既定の鍵シークレットでBase64暗号文を復号する。
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	return c.DecryptWithKey(ciphertext, c.material.secret)
}

// DecryptWithKey は指定した鍵でBase64暗号文を復号する。
func (c *Cipher) DecryptWithKey(ciphertext string, key []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return c.OpenWithKey(raw, key)
}

// Seal は既定の鍵シークレットで暗号化し、生の暗号文を返す。
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	return c.SealWithKey(plaintext, c.material.secret)
}

// SealWithKey は指定した鍵で暗号化し、生の暗号文を返す。
func (c *Cipher) SealWithKey(plaintext, key []byte) ([]byte, error) {
	block, err := c.newBlock(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.material.iv).CryptBlocks(out, padded)
	return out, nil
}

// Open は既定の鍵シークレットで生の暗号文を復号する。
func (c *Cipher) Open(ciphertext []byte) (string, error) {
	return c.OpenWithKey(ciphertext, c.material.secret)
}

// OpenWithKey は指定した鍵で生の暗号文を復号する。
func (c *Cipher) OpenWithKey(ciphertext, key []byte) (string, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: length %d is not a positive multiple of %d", ErrMalformedCiphertext, len(ciphertext), aes.BlockSize)
	}

	block, err := c.newBlock(key)
	if err != nil {
		return "", err
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, c.material.iv).CryptBlocks(out, ciphertext)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", ErrInvalidPlaintext
	}
	return string(plain), nil
}

// Matches は平文を暗号化した結果と保存済み暗号文を定数時間で比較する。
func (c *Cipher) Matches(plaintext, storedCiphertext string) (bool, error) {
	encrypted, err := c.Encrypt(plaintext)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(encrypted), []byte(storedCiphertext)) == 1, nil
}

func (c *Cipher) newBlock(key []byte) (cipher.Block, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	derived := pbkdf2.Key(key, c.material.salt, kdfIterations, derivedKeyLen, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("creating block cipher: %w", err)
	}
	return block, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data), len(data)+n)
	copy(padded, data)
	for i := 0; i < n; i++ {
		padded = append(padded, byte(n))
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
