// Package session はログイン成功後のセッション発行方式を提供する。
//
// CookieIssuerはCookieとAuthorizationヘッダーでトークンを渡し、
// BearerIssuerはレスポンスボディのトークンのみを返す。
package session

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gorilla/securecookie"

	"reservation-service/internal/domain"
)

// Cookie名として暗号化する平文
const (
	UsernameCookie = "username"
	TokenCookie    = "token"
)

// TokenIssuer はトークン発行のインターフェース。
type TokenIssuer interface {
	Issue(identity domain.Identity, ttl time.Duration) (string, error)
}

// Sealer は決定的暗号化のインターフェース。
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Encrypt(plaintext string) (string, error)
}

// Issuer はセッション発行方式のインターフェース。
// 発行したトークンを返す。
type Issuer interface {
	Issue(w http.ResponseWriter, r *http.Request, identity domain.Identity) (string, error)
}

// BearerIssuer はトークンのみを発行する方式。
type BearerIssuer struct {
	tokens TokenIssuer
	ttl    time.Duration
}

// NewBearerIssuer は新しいBearerIssuerを生成する。
func NewBearerIssuer(tokens TokenIssuer, ttl time.Duration) *BearerIssuer {
	return &BearerIssuer{tokens: tokens, ttl: ttl}
}

// Issue はトークンを発行する。レスポンスには何も書き込まない。
func (b *BearerIssuer) Issue(_ http.ResponseWriter, _ *http.Request, identity domain.Identity) (string, error) {
	raw, err := b.tokens.Issue(identity, b.ttl)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return raw, nil
}

// CookieIssuer はトークンを署名付きCookieとAuthorizationヘッダーで渡す方式。
type CookieIssuer struct {
	tokens TokenIssuer
	sealer Sealer
	codec  *securecookie.SecureCookie
	ttl    time.Duration
	maxAge int
}

// NewCookieIssuer は新しいCookieIssuerを生成する。maxAgeは秒単位。
func NewCookieIssuer(tokens TokenIssuer, sealer Sealer, cookieSecret []byte, ttl time.Duration, maxAge int) *CookieIssuer {
	codec := securecookie.New(cookieSecret, nil).MaxAge(maxAge)
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &CookieIssuer{
		tokens: tokens,
		sealer: sealer,
		codec:  codec,
		ttl:    ttl,
		maxAge: maxAge,
	}
}

// Issue はトークンを発行し、ユーザー名とトークンをCookieに設定する。
// Cookieの名前と値はどちらも暗号化され、値はさらに署名される。
// Cookieのパスはリクエストパスの末尾セグメントになる。
func (c *CookieIssuer) Issue(w http.ResponseWriter, r *http.Request, identity domain.Identity) (string, error) {
	raw, err := c.tokens.Issue(identity, c.ttl)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	cookiePath := path.Base(r.URL.Path)
	for _, pair := range [][2]string{
		{UsernameCookie, identity.Username},
		{TokenCookie, raw},
	} {
		cookie, err := c.newCookie(pair[0], pair[1], cookiePath)
		if err != nil {
			return "", err
		}
		http.SetCookie(w, cookie)
	}

	w.Header().Set("Authorization", "Bearer "+raw)
	return raw, nil
}

func (c *CookieIssuer) newCookie(name, value, cookiePath string) (*http.Cookie, error) {
	// Cookie名に使えるよう、暗号文はパディングなしのbase64urlで表す
	sealedName, err := c.sealer.Seal([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("encrypting cookie name %s: %w", name, err)
	}
	encName := base64.RawURLEncoding.EncodeToString(sealedName)

	encValue, err := c.sealer.Encrypt(value)
	if err != nil {
		return nil, fmt.Errorf("encrypting cookie value %s: %w", name, err)
	}

	signed, err := c.codec.Encode(encName, encValue)
	if err != nil {
		return nil, fmt.Errorf("signing cookie %s: %w", name, err)
	}

	return &http.Cookie{
		Name:     encName,
		Value:    signed,
		Path:     cookiePath,
		MaxAge:   c.maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}
