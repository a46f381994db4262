package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/swimresults/pkg/httpclient"
)

// TestRequestID はリクエストIDミドルウェアを検証する。
func TestRequestID(t *testing.T) {
	t.Parallel()

	type seen struct {
		fromGin string
		fromCtx string
	}

	serve := func(t *testing.T, header string) (*httptest.ResponseRecorder, seen) {
		t.Helper()

		var s seen
		router := gin.New()
		router.Use(RequestID())
		router.GET("/meets", func(c *gin.Context) {
			s.fromGin = GetRequestID(c)
			s.fromCtx = httpclient.RequestIDFrom(c.Request.Context())
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/meets", nil)
		if header != "" {
			req.Header.Set("X-Request-ID", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w, s
	}

	t.Run("クライアントのリクエストIDを引き継ぐこと", func(t *testing.T) {
		t.Parallel()

		w, s := serve(t, "client-req-1")
		if s.fromGin != "client-req-1" || s.fromCtx != "client-req-1" {
			t.Errorf("リクエストID = %q / %q, want client-req-1", s.fromGin, s.fromCtx)
		}
		if got := w.Header().Get("X-Request-ID"); got != "client-req-1" {
			t.Errorf("X-Request-ID = %q, want %q", got, "client-req-1")
		}
	})

	t.Run("リクエストIDが無い場合はUUIDを生成すること", func(t *testing.T) {
		t.Parallel()

		w, s := serve(t, "")
		if _, err := uuid.Parse(s.fromGin); err != nil {
			t.Errorf("生成されたリクエストID %q がUUIDではない: %v", s.fromGin, err)
		}
		if got := w.Header().Get("X-Request-ID"); got != s.fromGin {
			t.Errorf("X-Request-ID = %q, want %q", got, s.fromGin)
		}
	})

	t.Run("長すぎるリクエストIDは置き換えること", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("a", maxRequestIDLength+1)
		_, s := serve(t, long)
		if s.fromGin == long {
			t.Error("長すぎるリクエストIDが引き継がれた")
		}
		if _, err := uuid.Parse(s.fromGin); err != nil {
			t.Errorf("置き換えたリクエストID %q がUUIDではない: %v", s.fromGin, err)
		}
	})
}
