package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims は検証済みトークンのペイロード。
type Claims struct {
	jwt.RegisteredClaims
	// Permissions は付与された権限の一覧。クレームが無い場合はnil。
	Permissions []string `json:"permissions,omitempty"`
	// Scope はスペース区切りのスコープ。
	Scope string `json:"scope,omitempty"`
	// AuthorizedParty はトークンを要求したクライアントのID。
	AuthorizedParty string `json:"azp,omitempty"`
}

// HasPermission は権限が付与されているかどうかを返す。
func (c *Claims) HasPermission(permission string) bool {
	return c != nil && slices.Contains(c.Permissions, permission)
}

// Verifier はアクセストークンの署名とクレームを検証する。
type Verifier struct {
	// parser は許可アルゴリズム・audience・issuerを固定したパーサー。
	parser *jwt.Parser
}

// NewVerifier は設定からVerifierを生成する。設定が不正な場合はエラーを返す。
func NewVerifier(cfg Config) (*Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("認可設定が不正: %w", err)
	}
	return &Verifier{
		parser: jwt.NewParser(
			jwt.WithValidMethods(slices.Clone(cfg.Algorithms)),
			jwt.WithAudience(cfg.Audience),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Verify はトークンを鍵セットで検証し、デコードしたクレームを返す。
// 鍵セットの取得は呼び出し側で行い、この関数はネットワークにアクセスしない。
func (v *Verifier) Verify(token string, keys *KeySet) (*Claims, error) {
	kid, err := v.unverifiedKeyID(token)
	if err != nil {
		return nil, newError(KindInvalidHeader, err)
	}

	key, ok := keys.Key(kid)
	if !ok {
		return nil, newError(KindKeyNotFound, fmt.Errorf("kid %q", kid))
	}

	claims := &Claims{}
	_, err = v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
			return key, nil
		default:
			return nil, fmt.Errorf("想定外の署名アルゴリズム: %v", t.Header["alg"])
		}
	})
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

// unverifiedKeyID は署名を検証せずにトークンヘッダーからkidを取り出す。
func (v *Verifier) unverifiedKeyID(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", errors.New("トークンのセグメント数が不正です")
	}
	raw, err := v.parser.DecodeSegment(parts[0])
	if err != nil {
		return "", fmt.Errorf("ヘッダーのデコードに失敗: %w", err)
	}
	var header map[string]any
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", fmt.Errorf("ヘッダーのパースに失敗: %w", err)
	}
	kid, _ := header["kid"].(string)
	if kid == "" {
		return "", errors.New("ヘッダーにkidがありません")
	}
	return kid, nil
}

// classify はgolang-jwtのエラーを認可エラーの種類に変換する。
// 有効期限切れは他のクレームエラーより優先する。
func classify(err error) *Error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return newError(KindTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return newError(KindInvalidClaims, err)
	default:
		return newError(KindTokenUnparseable, err)
	}
}
