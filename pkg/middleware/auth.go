package middleware

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/swimresults/pkg/auth"
)

// keyClaims はGinコンテキストに検証済みクレームを格納するためのキー。
const keyClaims = "auth_claims"

// Authorizer は認可判定を行う。*auth.Gate が実装する。
type Authorizer interface {
	Authorize(ctx context.Context, header, permission string) (*auth.Claims, error)
}

var _ Authorizer = (*auth.Gate)(nil)

// Protect はハンドラを認可判定で包んだGinハンドラを返す。
// 判定に成功した場合のみクレームをコンテキストに設定してhandlerを呼び出す。
// 失敗時は401または403と、codeとdescriptionを含むJSONを返す。
func Protect(authorizer Authorizer, permission string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authorizer.Authorize(c.Request.Context(), c.GetHeader("Authorization"), permission)
		if err != nil {
			var authErr *auth.Error
			if !errors.As(err, &authErr) {
				// Authorizerの実装が型付きエラーを返さなかった場合も認可失敗として扱う
				authErr = &auth.Error{Kind: auth.KindTokenUnparseable, Err: err}
			}
			log.Printf("[Auth] %s %s request_id=%s: %s: %s (%v)",
				c.Request.Method, c.Request.URL.Path, GetRequestID(c),
				authErr.Kind.Code(), authErr.Kind.Description(), authErr.Err)
			c.AbortWithStatusJSON(authErr.Kind.Status(), gin.H{
				"success":     false,
				"error":       authErr.Kind.Status(),
				"code":        authErr.Kind.Code(),
				"description": authErr.Kind.Description(),
			})
			return
		}

		c.Set(keyClaims, claims)
		handler(c)
	}
}

// GetClaims はGinコンテキストから検証済みクレームを取得する。
// Protectを経由していないハンドラではnilを返す。
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(keyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
