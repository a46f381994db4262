package auth

import (
	"fmt"
	"net/http"
)

// Kind は認可失敗の種類を表す。
type Kind int

const (
	// KindMissingAuthorization はAuthorizationヘッダーが存在しないことを表す。
	KindMissingAuthorization Kind = iota + 1
	// KindMalformedScheme はスキームがBearerではないことを表す。
	KindMalformedScheme
	// KindMissingToken はスキームのみでトークンが無いことを表す。
	KindMissingToken
	// KindMalformedHeader はヘッダーの要素数が多すぎることを表す。
	KindMalformedHeader
	// KindKeySetUnavailable は署名鍵セットを取得できなかったことを表す。
	KindKeySetUnavailable
	// KindInvalidHeader はトークンヘッダーを解析できない、またはkidが無いことを表す。
	KindInvalidHeader
	// KindKeyNotFound はkidに一致する鍵が鍵セットに無いことを表す。
	KindKeyNotFound
	// KindTokenUnparseable はトークンの解析または署名検証に失敗したことを表す。
	KindTokenUnparseable
	// KindTokenExpired はトークンの有効期限切れを表す。
	KindTokenExpired
	// KindInvalidClaims はaudienceまたはissuerが一致しないことを表す。
	KindInvalidClaims
	// KindPermissionsClaimMissing はpermissionsクレームが無いことを表す。
	KindPermissionsClaimMissing
	// KindPermissionDenied は必要な権限が付与されていないことを表す。
	KindPermissionDenied
)

// kindInfo は種類ごとのレスポンス情報。
type kindInfo struct {
	code        string
	description string
	status      int
}

var kinds = map[Kind]kindInfo{
	KindMissingAuthorization:    {"authorization_header_missing", "Authorization header is expected.", http.StatusUnauthorized},
	KindMalformedScheme:         {"invalid_header", `Authorization header must start with "Bearer".`, http.StatusUnauthorized},
	KindMissingToken:            {"invalid_header", "Authorization header must include type and token.", http.StatusUnauthorized},
	KindMalformedHeader:         {"invalid_header", "Authorization header must be Bearer token.", http.StatusUnauthorized},
	KindKeySetUnavailable:       {"jwks_unavailable", "Unable to fetch signing keys.", http.StatusUnauthorized},
	KindInvalidHeader:           {"invalid_header", "Header of token must contain key id.", http.StatusUnauthorized},
	KindKeyNotFound:             {"invalid_header", "Unable to find appropriate key for token.", http.StatusUnauthorized},
	KindTokenUnparseable:        {"invalid_header", "Unable to parse token.", http.StatusUnauthorized},
	KindTokenExpired:            {"token_expired", "Token expired.", http.StatusUnauthorized},
	KindInvalidClaims:           {"invalid_claims", "Incorrect claims. Please check the audience and issuer.", http.StatusUnauthorized},
	KindPermissionsClaimMissing: {"invalid_claims", "Token must include permissions.", http.StatusUnauthorized},
	KindPermissionDenied:        {"permission_missing", "Permission not found.", http.StatusForbidden},
}

// Code はクライアントに返す機械可読なエラーコードを返す。
func (k Kind) Code() string { return kinds[k].code }

// Description はクライアントに返すエラーの説明文を返す。
func (k Kind) Description() string { return kinds[k].description }

// Status はHTTPステータスコードを返す。
// PermissionDeniedのみ403で、それ以外はすべて401になる。
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusUnauthorized
}

// Error はゲートが返す型付きの認可エラー。
// Errには原因となった下位エラーを保持するが、クライアントには公開しない。
type Error struct {
	Kind Kind
	Err  error
}

// 種類ごとのセンチネル。errors.Is(err, ErrTokenExpired) のように比較する。
var (
	ErrMissingAuthorization    = &Error{Kind: KindMissingAuthorization}
	ErrMalformedScheme         = &Error{Kind: KindMalformedScheme}
	ErrMissingToken            = &Error{Kind: KindMissingToken}
	ErrMalformedHeader         = &Error{Kind: KindMalformedHeader}
	ErrKeySetUnavailable       = &Error{Kind: KindKeySetUnavailable}
	ErrInvalidHeader           = &Error{Kind: KindInvalidHeader}
	ErrKeyNotFound             = &Error{Kind: KindKeyNotFound}
	ErrTokenUnparseable        = &Error{Kind: KindTokenUnparseable}
	ErrTokenExpired            = &Error{Kind: KindTokenExpired}
	ErrInvalidClaims           = &Error{Kind: KindInvalidClaims}
	ErrPermissionsClaimMissing = &Error{Kind: KindPermissionsClaimMissing}
	ErrPermissionDenied        = &Error{Kind: KindPermissionDenied}
)

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Kind.Description(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Kind.Description())
}

func (e *Error) Unwrap() error { return e.Err }

// Is は種類が一致する場合にtrueを返す。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
