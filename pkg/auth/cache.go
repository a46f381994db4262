package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeySetCache は鍵セットのキャッシュ。
type KeySetCache interface {
	// Get はキャッシュされた鍵セットを返す。期限切れまたは未設定の場合はfalseを返す。
	Get(ctx context.Context) (*KeySet, bool, error)
	// Set は鍵セットをttlの期間だけキャッシュする。
	Set(ctx context.Context, set *KeySet, ttl time.Duration) error
}

// MemoryCache はプロセス内で鍵セットを保持するキャッシュ。
type MemoryCache struct {
	now func() time.Time

	mu        sync.RWMutex
	set       *KeySet
	expiresAt time.Time
}

var _ KeySetCache = (*MemoryCache)(nil)

// NewMemoryCache は新しいMemoryCacheを生成する。nowがnilの場合はtime.Nowを使う。
func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{now: now}
}

// Get はキャッシュされた鍵セットを返す。
func (c *MemoryCache) Get(_ context.Context) (*KeySet, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.set == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	return c.set, true, nil
}

// Set は鍵セットをキャッシュする。
func (c *MemoryCache) Set(_ context.Context, set *KeySet, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = set
	c.expiresAt = c.now().Add(ttl)
	return nil
}

// defaultRedisKey はRedisCacheのデフォルトのキー。
const defaultRedisKey = "swimresults:jwks"

// RedisCache は複数のインスタンスで鍵セットを共有するキャッシュ。
// 有効期限はRedisのキー期限で管理する。
type RedisCache struct {
	client redis.Cmdable
	key    string
}

var _ KeySetCache = (*RedisCache)(nil)

// NewRedisCache は新しいRedisCacheを生成する。keyが空の場合はデフォルトのキーを使う。
func NewRedisCache(client redis.Cmdable, key string) *RedisCache {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisCache{client: client, key: key}
}

// cachedKeySet はRedisに保存する鍵セットの形式。
type cachedKeySet struct {
	FetchedAt int64           `json:"fetched_at"`
	JWKS      json.RawMessage `json:"jwks"`
}

// Get はRedisから鍵セットを読み込む。
func (c *RedisCache) Get(ctx context.Context) (*KeySet, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("鍵セットの読み込みに失敗: %w", err)
	}

	var cached cachedKeySet
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("鍵セットのデシリアライズに失敗: %w", err)
	}

	set, err := parseKeySet(cached.JWKS, time.Unix(0, cached.FetchedAt))
	if err != nil {
		return nil, false, fmt.Errorf("キャッシュされた鍵セットが不正: %w", err)
	}
	return set, true, nil
}

// Set は鍵セットをRedisに書き込む。
func (c *RedisCache) Set(ctx context.Context, set *KeySet, ttl time.Duration) error {
	jwks, err := marshalKeySet(set)
	if err != nil {
		return fmt.Errorf("鍵セットのシリアライズに失敗: %w", err)
	}

	raw, err := json.Marshal(cachedKeySet{FetchedAt: set.FetchedAt().UnixNano(), JWKS: jwks})
	if err != nil {
		return fmt.Errorf("鍵セットのシリアライズに失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("鍵セットの書き込みに失敗: %w", err)
	}
	return nil
}
