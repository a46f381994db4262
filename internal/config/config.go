// Package config はプロセス起動時に環境変数から読み込む設定を提供する。
// 読み込んだ設定は変更せず、各コンポーネントに明示的に渡す。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/swimresults/pkg/auth"
)

// Config はswimresultsサービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// DatabaseURL はデータベースの接続先。
	// "postgres://" または "postgresql://" で始まる場合はPostgreSQL、それ以外はSQLiteのパスとして扱う。
	DatabaseURL string

	// Auth0Domain はIDプロバイダーのドメイン。
	Auth0Domain string
	// APIAudience はアクセストークンに期待するaudience。
	APIAudience string
	// Algorithms は許可する署名アルゴリズム。
	Algorithms []string

	// JWKSTimeout は鍵セット取得のタイムアウト。
	JWKSTimeout time.Duration
	// JWKSRetries は鍵セット取得の最大リトライ回数。
	JWKSRetries int
	// JWKSCacheTTL は鍵セットのキャッシュ期間。0の場合はキャッシュしない。
	JWKSCacheTTL time.Duration
	// JWKSMinRefreshInterval はkid不一致時の強制再取得の最小間隔。
	JWKSMinRefreshInterval time.Duration

	// RedisAddr は鍵セットを共有するRedisのアドレス。空の場合はプロセス内キャッシュを使う。
	RedisAddr string
	// RedisPassword はRedisのパスワード。
	RedisPassword string
	// RedisDB はRedisのDB番号。
	RedisDB int

	// CORSAllowedOrigins はCORSで許可するオリジン。
	CORSAllowedOrigins []string
}

// FromEnv は環境変数から設定を読み込む。
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Port:                   getEnvOr("PORT", "8080"),
		DatabaseURL:            getEnvOr("DATABASE_URL", "swimresults.db"),
		Auth0Domain:            os.Getenv("AUTH0_DOMAIN"),
		APIAudience:            getEnvOr("API_AUDIENCE", "swimresults"),
		Algorithms:             splitList(getEnvOr("AUTH_ALGORITHMS", "RS256")),
		JWKSTimeout:            envDuration("JWKS_TIMEOUT", 5*time.Second, &errs),
		JWKSRetries:            envInt("JWKS_RETRIES", 2, &errs),
		JWKSCacheTTL:           envDuration("JWKS_CACHE_TTL", 0, &errs),
		JWKSMinRefreshInterval: envDuration("JWKS_MIN_REFRESH_INTERVAL", 10*time.Second, &errs),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envInt("REDIS_DB", 0, &errs),
		CORSAllowedOrigins:     splitList(getEnvOr("CORS_ALLOWED_ORIGINS", "*")),
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値を検証する。
func (c Config) Validate() error {
	var errs []error
	if c.Auth0Domain == "" {
		errs = append(errs, errors.New("AUTH0_DOMAIN が未設定です"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL が未設定です"))
	}
	if err := c.Auth().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Auth は認可ゲートの設定を返す。
func (c Config) Auth() auth.Config {
	cfg := auth.NewConfig(c.Auth0Domain, c.APIAudience, c.Algorithms)
	cfg.FetchTimeout = c.JWKSTimeout
	cfg.FetchRetries = c.JWKSRetries
	cfg.CacheTTL = c.JWKSCacheTTL
	cfg.MinRefreshInterval = c.JWKSMinRefreshInterval
	return cfg
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*errs = append(*errs, fmt.Errorf("%s の値 %q が不正です", key, v))
		return def
	}
	return n
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		*errs = append(*errs, fmt.Errorf("%s の値 %q が不正です", key, v))
		return def
	}
	return d
}

// splitList はカンマ区切りの値を分割し、空要素を取り除く。
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
