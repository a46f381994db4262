package auth

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// KeySet はkidから公開鍵へのマッピング。取得後は変更しない。
type KeySet struct {
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewKeySet は公開鍵のマップから鍵セットを生成する。
func NewKeySet(keys map[string]*rsa.PublicKey, fetchedAt time.Time) *KeySet {
	copied := make(map[string]*rsa.PublicKey, len(keys))
	for kid, k := range keys {
		copied[kid] = k
	}
	return &KeySet{keys: copied, fetchedAt: fetchedAt}
}

// Key はkidに一致する公開鍵を返す。
func (s *KeySet) Key(kid string) (*rsa.PublicKey, bool) {
	if s == nil {
		return nil, false
	}
	k, ok := s.keys[kid]
	return k, ok
}

// Len は鍵の数を返す。
func (s *KeySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// FetchedAt は鍵セットを取得した時刻を返す。
func (s *KeySet) FetchedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.fetchedAt
}

// parseKeySet はJWKSドキュメントから鍵セットを構築する。
// kidの無い鍵とRSA署名鍵以外は読み飛ばし、有効な鍵が1つも無ければエラーを返す。
func parseKeySet(raw []byte, fetchedAt time.Time) (*KeySet, error) {
	set, err := jwk.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("JWKSの解析に失敗: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, set.Len())
	for i := range set.Len() {
		key, ok := set.Key(i)
		if !ok {
			continue
		}
		kid, ok := key.KeyID()
		if !ok || kid == "" || key.KeyType() != jwa.RSA() {
			continue
		}
		if use, ok := key.KeyUsage(); ok && use != "" && use != jwk.ForSignature.String() {
			continue
		}

		var pub rsa.PublicKey
		if err := jwk.Export(key, &pub); err != nil {
			log.Printf("[JWKS] 鍵 %q を読み飛ばしました: %v", kid, err)
			continue
		}
		keys[kid] = &pub
	}
	if len(keys) == 0 {
		return nil, errors.New("有効なRSA署名鍵が含まれていません")
	}
	return &KeySet{keys: keys, fetchedAt: fetchedAt}, nil
}

// EncodeJWK はRSA公開鍵を署名用のJWKに変換する。
// テストやローカル開発用のJWKSサーバーでも使用する。
func EncodeJWK(kid string, pub *rsa.PublicKey) (jwk.Key, error) {
	if pub == nil {
		return nil, errors.New("公開鍵が未設定です")
	}
	key, err := jwk.Import(pub)
	if err != nil {
		return nil, fmt.Errorf("公開鍵の変換に失敗: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, kid); err != nil {
		return nil, fmt.Errorf("kidの設定に失敗: %w", err)
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, fmt.Errorf("useの設定に失敗: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		return nil, fmt.Errorf("algの設定に失敗: %w", err)
	}
	return key, nil
}

// marshalKeySet は鍵セットをJWKS形式のJSONにシリアライズする。
func marshalKeySet(s *KeySet) ([]byte, error) {
	set := jwk.NewSet()
	for kid, pub := range s.keys {
		key, err := EncodeJWK(kid, pub)
		if err != nil {
			return nil, err
		}
		if err := set.AddKey(key); err != nil {
			return nil, fmt.Errorf("鍵 %q の追加に失敗: %w", kid, err)
		}
	}
	return json.Marshal(set)
}
