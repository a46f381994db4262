package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

const (
	testDomain   = "swimresults.test"
	testAudience = "swimresults"
	testIssuer   = "https://swimresults.test/"
)

// testKey はテスト用の署名鍵。
type testKey struct {
	kid  string
	priv *rsa.PrivateKey
	pub  jwk.Key
}

func newTestKey(t *testing.T, kid string) testKey {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("RSA鍵の生成に失敗: %v", err)
	}
	pub, err := EncodeJWK(kid, &priv.PublicKey)
	if err != nil {
		t.Fatalf("EncodeJWK() でエラーが発生: %v", err)
	}
	return testKey{kid: kid, priv: priv, pub: pub}
}

// sign はクレームにRS256で署名したトークンを返す。
func (k testKey) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	return k.signWith(t, jwt.SigningMethodRS256, claims)
}

func (k testKey) signWith(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(method, claims)
	if k.kid != "" {
		token.Header["kid"] = k.kid
	}
	signed, err := token.SignedString(k.priv)
	if err != nil {
		t.Fatalf("トークンの署名に失敗: %v", err)
	}
	return signed
}

func (k testKey) jwk() jwk.Key {
	return k.pub
}

// validClaims は有効なクレームを返す。permsがnilの場合はpermissionsクレームを含めない。
func validClaims(perms []string) jwt.MapClaims {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "auth0|swimmer-admin",
		"azp": "swimresults-client",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	if perms != nil {
		claims["permissions"] = perms
	}
	return claims
}

// testConfig はJWKSの取得先をjwksURLに向けた設定を返す。
func testConfig(jwksURL string) Config {
	cfg := NewConfig(testDomain, testAudience, []string{"RS256"})
	cfg.JWKSURL = jwksURL
	cfg.FetchTimeout = 2 * time.Second
	cfg.FetchBackoff = time.Millisecond
	cfg.MinRefreshInterval = 0
	return cfg
}

// jwksServer はテスト用のJWKSエンドポイント。
type jwksServer struct {
	*httptest.Server

	mu   sync.Mutex
	keys []jwk.Key
	// failures は先頭から失敗させるリクエスト数。
	failures atomic.Int32
	// hits は受け付けたリクエスト数。
	hits atomic.Int32
}

func newJWKSServer(t *testing.T, keys ...testKey) *jwksServer {
	t.Helper()

	s := &jwksServer{}
	s.setKeys(keys...)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.hits.Add(1)
		if s.failures.Load() > 0 {
			s.failures.Add(-1)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		s.mu.Lock()
		body := map[string]any{"keys": s.keys}
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(s.Close)
	return s
}

// setKeys は公開する鍵を差し替える。
func (s *jwksServer) setKeys(keys ...testKey) {
	jwks := make([]jwk.Key, 0, len(keys))
	for _, k := range keys {
		jwks = append(jwks, k.jwk())
	}
	s.mu.Lock()
	s.keys = jwks
	s.mu.Unlock()
}

// staticKeySource は固定の鍵セットを返すKeySource。
type staticKeySource struct {
	set       *KeySet
	err       error
	refreshed atomic.Int32
}

func (s *staticKeySource) KeySet(_ context.Context) (*KeySet, error) {
	return s.set, s.err
}

func (s *staticKeySource) Refresh(_ context.Context) (*KeySet, error) {
	s.refreshed.Add(1)
	return s.set, s.err
}

func keySetOf(fetchedAt time.Time, keys ...testKey) *KeySet {
	m := make(map[string]*rsa.PublicKey, len(keys))
	for _, k := range keys {
		m[k.kid] = &k.priv.PublicKey
	}
	return NewKeySet(m, fetchedAt)
}
