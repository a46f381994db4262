package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// allowedAlgorithms は設定可能な署名アルゴリズム。
// 非対称のRSA系のみを許可し、"none" やHMAC系は設定段階で拒否する。
var allowedAlgorithms = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}

// Config はゲートの設定。構築後に変更しない。
type Config struct {
	// Issuer は期待するissuer。例: "https://example.auth0.com/"
	Issuer string
	// Audience は期待するaudience（APIの識別子）。
	Audience string
	// Algorithms は許可する署名アルゴリズムの一覧。
	Algorithms []string
	// JWKSURL は署名鍵セットの取得先。
	JWKSURL string
	// FetchTimeout は鍵セット取得1回あたりのタイムアウト。
	FetchTimeout time.Duration
	// FetchRetries は鍵セット取得の最大リトライ回数。
	FetchRetries int
	// FetchBackoff はリトライ間隔の初期値。以降は倍々で伸ばす。
	FetchBackoff time.Duration
	// CacheTTL は鍵セットのキャッシュ期間。0の場合はリクエストごとに取得する。
	CacheTTL time.Duration
	// MinRefreshInterval はkid不一致時の強制再取得の最小間隔。
	MinRefreshInterval time.Duration
}

// NewConfig はIDプロバイダーのドメインから設定を生成する。
// issuerとJWKSのURLはドメインから導出する。
func NewConfig(domain, audience string, algorithms []string) Config {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), "/")
	return Config{
		Issuer:             "https://" + domain + "/",
		Audience:           audience,
		Algorithms:         slices.Clone(algorithms),
		JWKSURL:            "https://" + domain + "/.well-known/jwks.json",
		FetchTimeout:       5 * time.Second,
		FetchRetries:       2,
		FetchBackoff:       200 * time.Millisecond,
		MinRefreshInterval: 10 * time.Second,
	}
}

// Validate は設定値を検証する。
func (c Config) Validate() error {
	var errs []error
	if c.Issuer == "" {
		errs = append(errs, errors.New("issuerが未設定です"))
	}
	if c.Audience == "" {
		errs = append(errs, errors.New("audienceが未設定です"))
	}
	if c.JWKSURL == "" {
		errs = append(errs, errors.New("JWKS URLが未設定です"))
	}
	if len(c.Algorithms) == 0 {
		errs = append(errs, errors.New("署名アルゴリズムが未設定です"))
	}
	for _, alg := range c.Algorithms {
		if !slices.Contains(allowedAlgorithms, alg) {
			errs = append(errs, fmt.Errorf("署名アルゴリズム %q は許可されていません", alg))
		}
	}
	if c.FetchRetries < 0 {
		errs = append(errs, errors.New("リトライ回数は0以上である必要があります"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("キャッシュ期間は0以上である必要があります"))
	}
	return errors.Join(errs...)
}
