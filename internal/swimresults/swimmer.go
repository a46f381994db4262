package swimresults

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/swimresults/internal/model"
)

// createSwimmerRequest は選手登録リクエストのJSON構造。
type createSwimmerRequest struct {
	// ID はクライアントが指定する選手ID。省略時は採番する。
	ID int64 `json:"id" binding:"min=0"`
	// Gender は性別区分（F, M, X）。
	Gender string `json:"gender" binding:"required,oneof=F M X"`
	// FirstName は名。
	FirstName string `json:"first name" binding:"required"`
	// LastName は姓。
	LastName string `json:"last name" binding:"required"`
	// BirthYear は生年。
	BirthYear int `json:"year of birth" binding:"required"`
}

// updateSwimmerRequest は選手更新リクエストのJSON構造。指定した項目のみ更新する。
type updateSwimmerRequest struct {
	Gender    *string `json:"gender" binding:"omitempty,oneof=F M X"`
	FirstName *string `json:"first name"`
	LastName  *string `json:"last name"`
	BirthYear *int    `json:"year of birth"`
}

// apply は指定された項目を選手に反映する。
func (r updateSwimmerRequest) apply(s model.Swimmer) model.Swimmer {
	if r.Gender != nil {
		s.Gender = model.Gender(*r.Gender)
	}
	if r.FirstName != nil {
		s.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		s.LastName = *r.LastName
	}
	if r.BirthYear != nil {
		s.BirthYear = *r.BirthYear
	}
	return s
}

// swimmerResponse は選手のJSONレスポンス構造。
type swimmerResponse struct {
	ID        int64  `json:"id"`
	Gender    string `json:"gender"`
	FirstName string `json:"first name"`
	LastName  string `json:"last name"`
	BirthYear int    `json:"year of birth"`
}

func toSwimmerResponse(s model.Swimmer) swimmerResponse {
	return swimmerResponse{
		ID:        s.ID,
		Gender:    string(s.Gender),
		FirstName: s.FirstName,
		LastName:  s.LastName,
		BirthYear: s.BirthYear,
	}
}

// handleListSwimmers は選手一覧をID順に返す。
func (s *Server) handleListSwimmers() gin.HandlerFunc {
	return func(c *gin.Context) {
		swimmers, err := s.store.ListSwimmers(c.Request.Context())
		if err != nil {
			abortWithStoreError(c, "選手一覧の取得", err)
			return
		}

		resp := make([]swimmerResponse, 0, len(swimmers))
		for _, sw := range swimmers {
			resp = append(resp, toSwimmerResponse(sw))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "swimmers": resp})
	}
}

// handleCreateSwimmer は選手を登録し、IDを返す。
func (s *Server) handleCreateSwimmer() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSwimmerRequest
		if !bindJSON(c, &req) {
			return
		}

		sw := model.Swimmer{
			ID:        req.ID,
			Gender:    model.Gender(req.Gender),
			FirstName: req.FirstName,
			LastName:  req.LastName,
			BirthYear: req.BirthYear,
		}
		if err := sw.Validate(); err != nil {
			abortWithStoreError(c, "選手の登録", err)
			return
		}

		id, err := s.store.CreateSwimmer(c.Request.Context(), sw)
		if err != nil {
			abortWithStoreError(c, "選手の登録", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
	}
}

// handleGetSwimmer は選手を1件返す。
func (s *Server) handleGetSwimmer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		sw, err := s.store.GetSwimmer(c.Request.Context(), id)
		if err != nil {
			abortWithStoreError(c, "選手の取得", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "swimmer": toSwimmerResponse(sw)})
	}
}

// handleUpdateSwimmer は選手の指定項目を更新し、更新後の選手を返す。
func (s *Server) handleUpdateSwimmer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req updateSwimmerRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx := c.Request.Context()
		current, err := s.store.GetSwimmer(ctx, id)
		if err != nil {
			abortWithStoreError(c, "選手の取得", err)
			return
		}

		updated := req.apply(current)
		if err := updated.Validate(); err != nil {
			abortWithStoreError(c, "選手の更新", err)
			return
		}
		if err := s.store.UpdateSwimmer(ctx, updated); err != nil {
			abortWithStoreError(c, "選手の更新", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "swimmer": toSwimmerResponse(updated)})
	}
}

// handleDeleteSwimmer は選手とその記録を削除する。
func (s *Server) handleDeleteSwimmer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		if err := s.store.DeleteSwimmer(c.Request.Context(), id); err != nil {
			abortWithStoreError(c, "選手の削除", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
	}
}

// handleListSwimmerResults は選手の記録一覧を返す。
func (s *Server) handleListSwimmerResults() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		results, err := s.store.ListResultsBySwimmer(c.Request.Context(), id)
		if err != nil {
			abortWithStoreError(c, "選手の記録取得", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "results": toResultResponses(results)})
	}
}
