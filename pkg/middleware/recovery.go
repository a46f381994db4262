package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// スタックトレースはログにのみ出力し、クライアントには固定メッセージの500を返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %s %s request_id=%s: %v\n%s",
					c.Request.Method, c.Request.URL.Path, GetRequestID(c), r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					ErrorResponse(http.StatusInternalServerError, "internal server error"))
			}
		}()
		c.Next()
	}
}

// ErrorResponse は認可以外の失敗に対するJSONレスポンスを生成する。
// messageには内部エラーの内容を含めず、固定の文言を渡す。
func ErrorResponse(status int, message string) gin.H {
	return gin.H{
		"success": false,
		"error":   status,
		"message": message,
	}
}
