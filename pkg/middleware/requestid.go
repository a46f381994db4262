package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/swimresults/pkg/httpclient"
)

const (
	// headerKeyRequestID はリクエストIDを伝播するためのHTTPヘッダーキー。
	headerKeyRequestID = "X-Request-ID"
	// keyRequestID はGinコンテキストにリクエストIDを格納するためのキー。
	keyRequestID = "request_id"
	// maxRequestIDLength はクライアントから受け取るリクエストIDの最大長。
	maxRequestIDLength = 128
)

// RequestID はリクエストごとにIDを割り当てるGinミドルウェアを返す。
// クライアントがX-Request-IDを送った場合はその値を引き継ぎ、
// レスポンスヘッダーとリクエストのコンテキストにも設定する。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerKeyRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.New().String()
		}

		c.Set(keyRequestID, id)
		c.Header(headerKeyRequestID, id)
		c.Request = c.Request.WithContext(httpclient.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// GetRequestID はGinコンテキストからリクエストIDを取得する。
func GetRequestID(c *gin.Context) string {
	v, _ := c.Get(keyRequestID)
	if id, ok := v.(string); ok {
		return id
	}
	return ""
}
