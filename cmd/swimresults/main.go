// 競泳記録APIのエントリポイント。
// 選手・大会・記録のCRUDを提供し、すべての保護されたルートでアクセストークンの権限を確認する。
package main

import (
	"context"
	"log"

	"github.com/nao1215/swimresults/internal/config"
	"github.com/nao1215/swimresults/internal/store"
	"github.com/nao1215/swimresults/internal/swimresults"
	"github.com/nao1215/swimresults/pkg/auth"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("データベースの初期化に失敗: %v", err)
	}
	defer func() { _ = st.Close() }()

	var opts []auth.ProviderOption
	// キャッシュ期間が0の場合は鍵セットを都度取得するためRedisは使わない
	if cfg.RedisAddr != "" && cfg.JWKSCacheTTL > 0 {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[JWKS] Redisに接続できません。鍵セットは都度取得します: %v", err)
		}
		opts = append(opts, auth.WithCache(auth.NewRedisCache(rdb, "")))
		log.Printf("[JWKS] 鍵セットを %s のRedisにキャッシュします (TTL %s)", cfg.RedisAddr, cfg.JWKSCacheTTL)
	}

	authCfg := cfg.Auth()
	gate, err := auth.NewGate(authCfg, auth.NewKeyProvider(authCfg, opts...))
	if err != nil {
		log.Fatalf("認可ゲートの初期化に失敗: %v", err)
	}

	server := swimresults.NewServer(cfg.Port, st, gate, cfg.CORSAllowedOrigins)

	log.Printf("競泳記録サービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("競泳記録サービスの起動に失敗: %v", err)
	}
}
