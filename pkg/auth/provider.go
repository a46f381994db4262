package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/nao1215/swimresults/pkg/httpclient"
)

// KeySource は署名鍵セットの取得元。
type KeySource interface {
	// KeySet は検証に使用する鍵セットを返す。キャッシュがあればそれを使う。
	KeySet(ctx context.Context) (*KeySet, error)
	// Refresh はキャッシュを無視して鍵セットを取得し直す。
	Refresh(ctx context.Context) (*KeySet, error)
}

// KeyProvider はJWKSエンドポイントから鍵セットを取得するKeySource。
// CacheTTLが0の場合はリクエストごとに取得する。
type KeyProvider struct {
	// client はJWKS取得用のHTTPクライアント。
	client *httpclient.Client
	// cache は鍵セットのキャッシュ。CacheTTLが0の場合はnil。
	cache KeySetCache
	// ttl はキャッシュ期間。
	ttl time.Duration
	// minRefresh は強制再取得の最小間隔。
	minRefresh time.Duration
	// now は現在時刻を返す。テストで差し替える。
	now func() time.Time

	mu        sync.Mutex
	last      *KeySet
	lastFetch time.Time
}

var _ KeySource = (*KeyProvider)(nil)

// ProviderOption はKeyProviderの設定を変更する。
type ProviderOption func(*providerOptions)

type providerOptions struct {
	cache      KeySetCache
	httpClient *http.Client
	now        func() time.Time
}

// WithCache は鍵セットのキャッシュを差し替える。CacheTTLが0の場合は使用しない。
func WithCache(c KeySetCache) ProviderOption {
	return func(o *providerOptions) { o.cache = c }
}

// WithHTTPClient はJWKS取得に使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) ProviderOption {
	return func(o *providerOptions) { o.httpClient = hc }
}

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) ProviderOption {
	return func(o *providerOptions) { o.now = now }
}

// NewKeyProvider は設定からKeyProviderを生成する。
func NewKeyProvider(cfg Config, opts ...ProviderOption) *KeyProvider {
	o := providerOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	// 差し替えたクライアントのタイムアウトは呼び出し側の設定を優先する
	clientOpts := []httpclient.Option{
		httpclient.WithTimeout(cfg.FetchTimeout),
		httpclient.WithRetry(cfg.FetchRetries, cfg.FetchBackoff),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, httpclient.WithHTTPClient(o.httpClient))
	}

	p := &KeyProvider{
		client:     httpclient.New(cfg.JWKSURL, clientOpts...),
		ttl:        cfg.CacheTTL,
		minRefresh: cfg.MinRefreshInterval,
		now:        o.now,
	}
	if cfg.CacheTTL > 0 {
		p.cache = o.cache
		if p.cache == nil {
			p.cache = NewMemoryCache(o.now)
		}
	}
	return p
}

// KeySet は鍵セットを返す。
// キャッシュが有効で期限内のエントリがあればネットワーク取得を行わない。
func (p *KeyProvider) KeySet(ctx context.Context) (*KeySet, error) {
	if p.cache != nil {
		set, ok, err := p.cache.Get(ctx)
		if err != nil {
			// キャッシュ障害時はIDプロバイダーから直接取得する
			log.Printf("[JWKS] キャッシュの読み込みに失敗: %v", err)
		} else if ok {
			return set, nil
		}
	}
	return p.fetch(ctx)
}

// Refresh はキャッシュを無視して鍵セットを取得し直す。
// 直前の取得からMinRefreshInterval以内の場合は前回の鍵セットを返す。
// キャッシュが無い場合はKeySetが毎回取得しているため、前回の鍵セットをそのまま返す。
func (p *KeyProvider) Refresh(ctx context.Context) (*KeySet, error) {
	p.mu.Lock()
	last, lastFetch := p.last, p.lastFetch
	p.mu.Unlock()

	if last != nil && (p.cache == nil || p.now().Sub(lastFetch) < p.minRefresh) {
		return last, nil
	}
	return p.fetch(ctx)
}

// fetch はJWKSエンドポイントから鍵セットを取得し、キャッシュを更新する。
func (p *KeyProvider) fetch(ctx context.Context) (*KeySet, error) {
	var raw json.RawMessage
	if err := p.client.GetJSON(ctx, "", &raw); err != nil {
		return nil, newError(KindKeySetUnavailable, err)
	}

	fetchedAt := p.now()
	set, err := parseKeySet(raw, fetchedAt)
	if err != nil {
		return nil, newError(KindKeySetUnavailable, err)
	}

	p.mu.Lock()
	p.last = set
	p.lastFetch = fetchedAt
	p.mu.Unlock()

	if p.cache != nil {
		if err := p.cache.Set(ctx, set, p.ttl); err != nil {
			log.Printf("[JWKS] キャッシュの書き込みに失敗: %v", err)
		}
	}
	return set, nil
}
