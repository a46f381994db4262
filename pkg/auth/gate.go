package auth

import (
	"context"
	"errors"
)

// Gate は保護された操作の前段で認可判定を行う唯一の経路。
// 「ヘッダー抽出 → 鍵セット取得 → トークン検証 → 権限確認」の順に実行し、
// 最初の失敗で打ち切る。
type Gate struct {
	// verifier はトークン検証器。
	verifier *Verifier
	// keys は署名鍵セットの取得元。
	keys KeySource
}

// NewGate は設定と鍵セットの取得元からGateを生成する。
func NewGate(cfg Config, keys KeySource) (*Gate, error) {
	if keys == nil {
		return nil, errors.New("鍵セットの取得元が未設定です")
	}
	verifier, err := NewVerifier(cfg)
	if err != nil {
		return nil, err
	}
	return &Gate{verifier: verifier, keys: keys}, nil
}

// Authorize はAuthorizationヘッダーの値を検証し、必要な権限を持つ場合にクレームを返す。
// 失敗時は必ず *Error を返す。
func (g *Gate) Authorize(ctx context.Context, header, permission string) (*Claims, error) {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return nil, err
	}

	claims, err := g.verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := CheckPermission(claims, permission); err != nil {
		return nil, err
	}
	return claims, nil
}

// verify は鍵セットを取得してトークンを検証する。
// キャッシュ済みの鍵セットにkidが無い場合のみ、再取得した鍵セットで1回だけ検証し直す。
func (g *Gate) verify(ctx context.Context, token string) (*Claims, error) {
	keys, err := g.keys.KeySet(ctx)
	if err != nil {
		return nil, asAuthError(KindKeySetUnavailable, err)
	}

	claims, err := g.verifier.Verify(token, keys)
	if !errors.Is(err, ErrKeyNotFound) {
		return claims, err
	}

	fresh, rerr := g.keys.Refresh(ctx)
	if rerr != nil || !fresh.FetchedAt().After(keys.FetchedAt()) {
		return nil, err
	}
	return g.verifier.Verify(token, fresh)
}

// asAuthError はエラーを *Error に揃える。
func asAuthError(kind Kind, err error) *Error {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}
	return newError(kind, err)
}
