package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	// defaultTimeout はリクエスト1回あたりのタイムアウトの初期値。
	defaultTimeout = 5 * time.Second
	// defaultBackoff はリトライ間隔の初期値。
	defaultBackoff = 200 * time.Millisecond
	// maxBodyBytes はレスポンスボディの読み込み上限。
	maxBodyBytes = 1 << 20
)

// Client は外部サービスからJSONを取得するHTTPクライアント。
// タイムアウトとリトライの設定を持つ。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先のベースURL。
	baseURL string
	// retries は一時的な失敗に対する最大リトライ回数。
	retries int
	// backoff は最初のリトライまでの待機時間。以降は倍々で伸ばす。
	backoff time.Duration
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithTimeout はリクエスト1回あたりのタイムアウトを設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetry は最大リトライ回数と初回の待機時間を設定する。
func WithRetry(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先のベースURL（例: "https://example.auth0.com"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError は2xx以外のレスポンスを表す。
type StatusError struct {
	// StatusCode はレスポンスのHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディの先頭部分。
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, e.Body)
}

// GetJSON は指定パスにGETリクエストを送信し、レスポンスボディをresultにデシリアライズする。
// 通信エラーと5xxのみリトライし、4xxと不正なJSONは即座にエラーを返す。
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	var lastErr error
	wait := c.backoff
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			log.Printf("[HTTP] GET %s をリトライします (%d/%d): %v", c.baseURL+path, attempt, c.retries, lastErr)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("リトライ待機中に中断: %w", ctx.Err())
			case <-timer.C:
			}
			wait *= 2
		}

		err := c.getOnce(ctx, path, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return err
		}
	}
	return fmt.Errorf("%d回の試行で失敗: %w", c.retries+1, lastErr)
}

// getOnce はGETリクエストを1回だけ実行する。
func (c *Client) getOnce(ctx context.Context, path string, result any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &permanentError{fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	// コンテキストからリクエストIDを伝播する
	if requestID, ok := ctx.Value(contextKeyRequestID).(string); ok && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxBodyBytes)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.NewDecoder(body).Decode(result); err != nil {
			return &permanentError{fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)}
		}
	}
	return nil
}

// permanentError はリトライしても結果が変わらない失敗を表す。
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// retryable はエラーがリトライ対象かどうかを判定する。
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode >= 500 || status.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// 外部サービスへの通信時にリクエストIDを伝播するために使用する。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestIDFrom はコンテキストからリクエストIDを取得する。
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
