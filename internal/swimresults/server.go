package swimresults

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/swimresults/internal/model"
	"github.com/nao1215/swimresults/internal/store"
	"github.com/nao1215/swimresults/pkg/middleware"
)

// 認可に用いる権限名。
const (
	PermGetSwimmers   = "get:swimmers"
	PermPostSwimmer   = "post:swimmer"
	PermPatchSwimmer  = "patch:swimmer"
	PermDeleteSwimmer = "delete:swimmer"
	PermGetMeets      = "get:meets"
	PermPostMeet      = "post:meet"
	PermPatchMeet     = "patch:meet"
	PermDeleteMeet    = "delete:meet"
	PermGetResults    = "get:results"
	PermPostResult    = "post:result"
	PermDeleteResult  = "delete:result"
)

// Server は競泳記録APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store は永続化層。
	store store.Store
	// authorizer は保護されたルートの認可判定を行う。
	authorizer middleware.Authorizer
}

// NewServer は新しいサーバーを生成する。
// storeとauthorizerは呼び出し側で生成して渡す。
func NewServer(port string, st store.Store, authorizer middleware.Authorizer, allowedOrigins []string) *Server {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(allowedOrigins))

	s := &Server{
		router:     router,
		port:       port,
		store:      st,
		authorizer: authorizer,
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はルーターをhttp.Handlerとして返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello World")
	})

	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())

	swimmers := s.router.Group("/swimmers")
	{
		swimmers.GET("", s.protect(PermGetSwimmers, s.handleListSwimmers()))
		swimmers.POST("", s.protect(PermPostSwimmer, s.handleCreateSwimmer()))
		swimmers.GET("/:id", s.protect(PermGetSwimmers, s.handleGetSwimmer()))
		swimmers.PATCH("/:id", s.protect(PermPatchSwimmer, s.handleUpdateSwimmer()))
		swimmers.DELETE("/:id", s.protect(PermDeleteSwimmer, s.handleDeleteSwimmer()))
		swimmers.GET("/:id/results", s.protect(PermGetResults, s.handleListSwimmerResults()))
	}

	meets := s.router.Group("/meets")
	{
		meets.GET("", s.protect(PermGetMeets, s.handleListMeets()))
		meets.POST("", s.protect(PermPostMeet, s.handleCreateMeet()))
		meets.GET("/:id", s.protect(PermGetMeets, s.handleGetMeet()))
		meets.PATCH("/:id", s.protect(PermPatchMeet, s.handleUpdateMeet()))
		meets.DELETE("/:id", s.protect(PermDeleteMeet, s.handleDeleteMeet()))
		meets.GET("/:id/results", s.protect(PermGetResults, s.handleListMeetResults()))
	}

	results := s.router.Group("/results")
	{
		results.GET("", s.protect(PermGetResults, s.handleListResults()))
		results.POST("", s.protect(PermPostResult, s.handleCreateResult()))
		results.DELETE("/:id", s.protect(PermDeleteResult, s.handleDeleteResult()))
	}

	s.router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound)
	})
	s.router.NoMethod(func(c *gin.Context) {
		abortWithError(c, http.StatusMethodNotAllowed)
	})
}

func (s *Server) protect(permission string, handler gin.HandlerFunc) gin.HandlerFunc {
	return middleware.Protect(s.authorizer, permission, handler)
}

// handleHealth はデータベースへの疎通を含むヘルスチェックを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			log.Printf("[Health] データベースに接続できません: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "swimresults"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "swimresults"})
	}
}

// errorMessages は認可以外の失敗で返す固定の文言。
var errorMessages = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusNotFound:            "resource not found",
	http.StatusMethodNotAllowed:    "method not allowed",
	http.StatusUnprocessableEntity: "unprocessable",
	http.StatusInternalServerError: "internal server error",
}

// abortWithError はステータスに対応する固定の文言でレスポンスを返す。
func abortWithError(c *gin.Context, status int) {
	msg, ok := errorMessages[status]
	if !ok {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, middleware.ErrorResponse(status, msg))
}

// abortWithStoreError は永続化層・入力検証のエラーをステータスに変換して返す。
func abortWithStoreError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		abortWithError(c, http.StatusNotFound)
	case errors.Is(err, store.ErrConflict):
		log.Printf("[API] %s: request_id=%s: %v", op, middleware.GetRequestID(c), err)
		abortWithError(c, http.StatusUnprocessableEntity)
	case errors.Is(err, model.ErrInvalid):
		abortWithError(c, http.StatusBadRequest)
	default:
		log.Printf("[API] %s に失敗: request_id=%s: %v", op, middleware.GetRequestID(c), err)
		abortWithError(c, http.StatusInternalServerError)
	}
}

// bindJSON はリクエストボディを解析する。失敗時は400を返してfalseを返す。
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Printf("[API] リクエストが不正です: request_id=%s: %v", middleware.GetRequestID(c), err)
		abortWithError(c, http.StatusBadRequest)
		return false
	}
	return true
}

// pathID はパスパラメータのIDを解析する。正の整数でない場合は存在しないリソースとして404を返す。
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusNotFound)
		return 0, false
	}
	return id, true
}
