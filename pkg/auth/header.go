package auth

import "strings"

// ExtractBearerToken はAuthorizationヘッダーの値からBearerトークンを取り出す。
// 判定順序は「ヘッダー有無 → スキーム → トークン有無 → 要素数」で固定する。
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthorization
	}

	parts := strings.Fields(header)
	if len(parts) == 0 {
		// 空白のみのヘッダーはスキームが不正なものとして扱う
		return "", ErrMalformedScheme
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMalformedScheme
	}
	if len(parts) == 1 {
		return "", ErrMissingToken
	}
	if len(parts) > 2 {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}
