// Package token は署名付き・期限付きの識別トークン（HS256 JWT）の発行と検証を提供する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reservation-service/internal/domain"
)

// DefaultTTL はトークンの既定の有効期間。
const DefaultTTL = time.Hour

// claims はトークンに埋め込むクレーム。
type claims struct {
	domain.Identity
	jwt.RegisteredClaims
}

// Service はトークンの発行と検証を行う。状態を持たず並行利用可能。
type Service struct {
	secret []byte
	now    func() time.Time
}

// Option はServiceの設定を変更する。
type Option func(*Service)

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService は新しいServiceを生成する。
func NewService(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue は識別情報に署名し、現在時刻+ttlを有効期限とするトークンを発行する。
func (s *Service) Issue(identity domain.Identity, ttl time.Duration) (string, error) {
	if !identity.Role.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownRole, identity.Role)
	}

	now := s.now()
	c := claims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify は署名と有効期限を検証し、識別情報を返す。
// 失敗時はErrInvalidSignature、ErrExpired、ErrMalformedのいずれかを返す。
func (s *Service) Verify(raw string) (domain.Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Identity{}, classify(err)
	}
	if !c.Role.Valid() {
		return domain.Identity{}, fmt.Errorf("%w: missing role", ErrMalformed)
	}
	return c.Identity, nil
}

func (s *Service) keyFunc(*jwt.Token) (any, error) {
	return s.secret, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
