package session

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservation-service/internal/domain"
	"reservation-service/internal/encryption"
	"reservation-service/internal/token"
)

var testCookieSecret = []byte("0123456789abcdef0123456789abcdef")

func newDeps(t *testing.T) (*token.Service, *encryption.Cipher) {
	t.Helper()
	tokens, err := token.NewService([]byte("session-test-secret"))
	require.NoError(t, err)
	material, err := encryption.NewKeyMaterial(
		"00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
		"aa112233445566778899aabbccddee22",
	)
	require.NoError(t, err)
	return tokens, encryption.NewCipher(material)
}

func TestCookieIssuer_Issue(t *testing.T) {
	tokens, cipher := newDeps(t)
	issuer := NewCookieIssuer(tokens, cipher, testCookieSecret, time.Hour, 1000)
	identity := domain.Identity{UserID: "u1", Username: "alice", Role: domain.RoleCustomer}

	req := httptest.NewRequest(http.MethodPost, "/area/member/login", nil)
	rec := httptest.NewRecorder()

	raw, err := issuer.Issue(rec, req, identity)
	require.NoError(t, err)

	// Authorizationヘッダーには平文のトークン
	assert.Equal(t, "Bearer "+raw, rec.Header().Get("Authorization"))

	verified, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, identity, verified)

	codec := securecookie.New(testCookieSecret, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	got := map[string]string{}
	for _, c := range cookies {
		assert.Equal(t, "login", c.Path)
		assert.Equal(t, 1000, c.MaxAge)
		assert.True(t, c.HttpOnly)

		sealedName, err := base64.RawURLEncoding.DecodeString(c.Name)
		require.NoError(t, err)
		name, err := cipher.Open(sealedName)
		require.NoError(t, err)

		var encValue string
		require.NoError(t, codec.Decode(c.Name, c.Value, &encValue))
		value, err := cipher.Decrypt(encValue)
		require.NoError(t, err)

		got[name] = value
	}

	assert.Equal(t, "alice", got[UsernameCookie])
	assert.Equal(t, raw, got[TokenCookie])
}

func TestCookieIssuer_CookieNamesAreDeterministic(t *testing.T) {
	tokens, cipher := newDeps(t)
	issuer := NewCookieIssuer(tokens, cipher, testCookieSecret, time.Hour, 1000)
	identity := domain.Identity{UserID: "u1", Username: "alice", Role: domain.RoleCustomer}

	names := func() []string {
		rec := httptest.NewRecorder()
		_, err := issuer.Issue(rec, httptest.NewRequest(http.MethodPost, "/area/member/login", nil), identity)
		require.NoError(t, err)
		var out []string
		for _, c := range rec.Result().Cookies() {
			out = append(out, c.Name)
		}
		return out
	}

	assert.Equal(t, names(), names())
}

func TestCookieIssuer_PathFollowsLastSegment(t *testing.T) {
	tokens, cipher := newDeps(t)
	issuer := NewCookieIssuer(tokens, cipher, testCookieSecret, time.Hour, 1000)
	identity := domain.Identity{UserID: "u1", Username: "alice", Role: domain.RoleAdmin}

	rec := httptest.NewRecorder()
	_, err := issuer.Issue(rec, httptest.NewRequest(http.MethodPost, "/admin/signin", nil), identity)
	require.NoError(t, err)

	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, "signin", c.Path)
	}
}

func TestCookieIssuer_TamperedCookieFailsSignature(t *testing.T) {
	tokens, cipher := newDeps(t)
	issuer := NewCookieIssuer(tokens, cipher, testCookieSecret, time.Hour, 1000)

	rec := httptest.NewRecorder()
	_, err := issuer.Issue(rec, httptest.NewRequest(http.MethodPost, "/area/member/login", nil),
		domain.Identity{UserID: "u1", Username: "alice", Role: domain.RoleCustomer})
	require.NoError(t, err)

	codec := securecookie.New([]byte("another-secret-another-secret-xx"), nil)
	codec.SetSerializer(securecookie.JSONEncoder{})

	for _, c := range rec.Result().Cookies() {
		var v string
		assert.Error(t, codec.Decode(c.Name, c.Value, &v))
	}
}

type failingTokens struct{}

func (failingTokens) Issue(domain.Identity, time.Duration) (string, error) {
	return "", errors.New("signing unavailable")
}

func TestCookieIssuer_TokenFailure(t *testing.T) {
	_, cipher := newDeps(t)
	issuer := NewCookieIssuer(failingTokens{}, cipher, testCookieSecret, time.Hour, 1000)

	rec := httptest.NewRecorder()
	_, err := issuer.Issue(rec, httptest.NewRequest(http.MethodPost, "/area/member/login", nil),
		domain.Identity{UserID: "u1", Username: "alice", Role: domain.RoleCustomer})

	assert.Error(t, err)
	assert.Empty(t, rec.Result().Cookies())
	assert.Empty(t, rec.Header().Get("Authorization"))
}

func TestBearerIssuer_Issue(t *testing.T) {
	tokens, _ := newDeps(t)
	issuer := NewBearerIssuer(tokens, time.Hour)
	identity := domain.Identity{UserID: "a1", Username: "root", Role: domain.RoleAdmin}

	rec := httptest.NewRecorder()
	raw, err := issuer.Issue(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil), identity)
	require.NoError(t, err)

	assert.Empty(t, rec.Result().Cookies())
	assert.Empty(t, rec.Header().Get("Authorization"))

	verified, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, verified.Role)
}
