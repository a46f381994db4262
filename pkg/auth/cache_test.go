package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// TestMemoryCache はプロセス内キャッシュを検証する。
func TestMemoryCache(t *testing.T) {
	t.Parallel()

	key := newTestKey(t, "key-1")
	clock := newFakeClock()
	cache := NewMemoryCache(clock.Now)
	ctx := context.Background()

	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatal("未設定のキャッシュがヒットした")
	}

	set := keySetOf(clock.Now(), key)
	if err := cache.Set(ctx, set, time.Minute); err != nil {
		t.Fatalf("Set() でエラーが発生: %v", err)
	}

	got, ok, err := cache.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get() = (_, %v, %v), want hit", ok, err)
	}
	if got != set {
		t.Error("キャッシュした鍵セットと異なる")
	}

	clock.Advance(time.Minute)
	if _, ok, _ := cache.Get(ctx); ok {
		t.Error("期限切れのキャッシュがヒットした")
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// TestRedisCache はRedisキャッシュを検証する。
func TestRedisCache(t *testing.T) {
	t.Parallel()

	key := newTestKey(t, "key-1")
	ctx := context.Background()

	t.Run("書き込んだ鍵セットを読み出せること", func(t *testing.T) {
		t.Parallel()

		mr, client := newTestRedis(t)
		cache := NewRedisCache(client, "")
		fetchedAt := time.Date(2026, 5, 2, 10, 0, 0, 123, time.UTC)

		if err := cache.Set(ctx, keySetOf(fetchedAt, key), 5*time.Minute); err != nil {
			t.Fatalf("Set() でエラーが発生: %v", err)
		}
		if ttl := mr.TTL(defaultRedisKey); ttl != 5*time.Minute {
			t.Errorf("TTL = %v, want %v", ttl, 5*time.Minute)
		}

		got, ok, err := cache.Get(ctx)
		if err != nil || !ok {
			t.Fatalf("Get() = (_, %v, %v), want hit", ok, err)
		}
		pub, found := got.Key("key-1")
		if !found {
			t.Fatal("kid=key-1 の鍵が見つからない")
		}
		if !pub.Equal(&key.priv.PublicKey) {
			t.Error("復元した公開鍵が一致しない")
		}
		if !got.FetchedAt().Equal(fetchedAt) {
			t.Errorf("FetchedAt = %v, want %v", got.FetchedAt(), fetchedAt)
		}
	})

	t.Run("未設定や期限切れはミスになること", func(t *testing.T) {
		t.Parallel()

		mr, client := newTestRedis(t)
		cache := NewRedisCache(client, "jwks:test")

		if _, ok, err := cache.Get(ctx); ok || err != nil {
			t.Fatalf("Get() = (_, %v, %v), want miss", ok, err)
		}

		if err := cache.Set(ctx, keySetOf(time.Now(), key), time.Second); err != nil {
			t.Fatalf("Set() でエラーが発生: %v", err)
		}
		mr.FastForward(2 * time.Second)
		if _, ok, err := cache.Get(ctx); ok || err != nil {
			t.Errorf("期限切れ後のGet() = (_, %v, %v), want miss", ok, err)
		}
	})

	t.Run("壊れた値はエラーになること", func(t *testing.T) {
		t.Parallel()

		mr, client := newTestRedis(t)
		if err := mr.Set(defaultRedisKey, "not-json"); err != nil {
			t.Fatalf("miniredisへの書き込みに失敗: %v", err)
		}

		if _, ok, err := NewRedisCache(client, "").Get(ctx); err == nil || ok {
			t.Errorf("Get() = (_, %v, %v), want error", ok, err)
		}
	})

	t.Run("Redis障害時もKeyProviderはJWKSから取得すること", func(t *testing.T) {
		t.Parallel()

		mr, client := newTestRedis(t)
		srv := newJWKSServer(t, key)
		cfg := testConfig(srv.URL)
		cfg.CacheTTL = time.Minute
		p := NewKeyProvider(cfg, WithCache(NewRedisCache(client, "")))

		if _, err := p.KeySet(ctx); err != nil {
			t.Fatalf("KeySet() でエラーが発生: %v", err)
		}
		mr.SetError("ERR simulated failure")

		if _, err := p.KeySet(ctx); err != nil {
			t.Fatalf("Redis停止後のKeySet() でエラーが発生: %v", err)
		}
		if got := srv.hits.Load(); got != 2 {
			t.Errorf("リクエスト数 = %d, want 2", got)
		}
	})
}
