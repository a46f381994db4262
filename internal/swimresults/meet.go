package swimresults

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/swimresults/internal/model"
)

// createMeetRequest は大会登録リクエストのJSON構造。日付はDD.MM.YYYY形式。
type createMeetRequest struct {
	ID        int64  `json:"id" binding:"min=0"`
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start date" binding:"required"`
	EndDate   string `json:"end date" binding:"required"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// toMeet は日付を解析して大会に変換する。
func (r createMeetRequest) toMeet() (model.Meet, error) {
	start, err := model.ParseDate(r.StartDate)
	if err != nil {
		return model.Meet{}, err
	}
	end, err := model.ParseDate(r.EndDate)
	if err != nil {
		return model.Meet{}, err
	}
	return model.Meet{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: start,
		EndDate:   end,
		City:      r.City,
		Country:   r.Country,
	}, nil
}

// updateMeetRequest は大会更新リクエストのJSON構造。指定した項目のみ更新する。
type updateMeetRequest struct {
	Name      *string `json:"name"`
	StartDate *string `json:"start date"`
	EndDate   *string `json:"end date"`
	City      *string `json:"city"`
	Country   *string `json:"country"`
}

// apply は指定された項目を大会に反映する。
func (r updateMeetRequest) apply(m model.Meet) (model.Meet, error) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.StartDate != nil {
		d, err := model.ParseDate(*r.StartDate)
		if err != nil {
			return model.Meet{}, err
		}
		m.StartDate = d
	}
	if r.EndDate != nil {
		d, err := model.ParseDate(*r.EndDate)
		if err != nil {
			return model.Meet{}, err
		}
		m.EndDate = d
	}
	if r.City != nil {
		m.City = *r.City
	}
	if r.Country != nil {
		m.Country = *r.Country
	}
	return m, nil
}

// meetResponse は大会のJSONレスポンス構造。
type meetResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start date"`
	EndDate   string `json:"end date"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

func toMeetResponse(m model.Meet) meetResponse {
	return meetResponse{
		ID:        m.ID,
		Name:      m.Name,
		StartDate: m.StartDate.Format(model.DateLayout),
		EndDate:   m.EndDate.Format(model.DateLayout),
		City:      m.City,
		Country:   m.Country,
	}
}

// handleListMeets は大会一覧をID順に返す。
func (s *Server) handleListMeets() gin.HandlerFunc {
	return func(c *gin.Context) {
		meets, err := s.store.ListMeets(c.Request.Context())
		if err != nil {
			abortWithStoreError(c, "大会一覧の取得", err)
			return
		}

		resp := make([]meetResponse, 0, len(meets))
		for _, m := range meets {
			resp = append(resp, toMeetResponse(m))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "meets": resp})
	}
}

// handleCreateMeet は大会を登録し、IDを返す。
func (s *Server) handleCreateMeet() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMeetRequest
		if !bindJSON(c, &req) {
			return
		}

		m, err := req.toMeet()
		if err == nil {
			err = m.Validate()
		}
		if err != nil {
			abortWithStoreError(c, "大会の登録", err)
			return
		}

		id, err := s.store.CreateMeet(c.Request.Context(), m)
		if err != nil {
			abortWithStoreError(c, "大会の登録", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
	}
}

// handleGetMeet は大会を1件返す。
func (s *Server) handleGetMeet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		m, err := s.store.GetMeet(c.Request.Context(), id)
		if err != nil {
			abortWithStoreError(c, "大会の取得", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "meet": toMeetResponse(m)})
	}
}

// handleUpdateMeet は大会の指定項目を更新し、更新後の大会を返す。
func (s *Server) handleUpdateMeet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req updateMeetRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx := c.Request.Context()
		current, err := s.store.GetMeet(ctx, id)
		if err != nil {
			abortWithStoreError(c, "大会の取得", err)
			return
		}

		updated, err := req.apply(current)
		if err == nil {
			err = updated.Validate()
		}
		if err != nil {
			abortWithStoreError(c, "大会の更新", err)
			return
		}
		if err := s.store.UpdateMeet(ctx, updated); err != nil {
			abortWithStoreError(c, "大会の更新", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "meet": toMeetResponse(updated)})
	}
}

// handleDeleteMeet は大会とその記録を削除する。
func (s *Server) handleDeleteMeet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		if err := s.store.DeleteMeet(c.Request.Context(), id); err != nil {
			abortWithStoreError(c, "大会の削除", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
	}
}

// handleListMeetResults は大会の記録一覧を返す。
func (s *Server) handleListMeetResults() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		results, err := s.store.ListResultsByMeet(c.Request.Context(), id)
		if err != nil {
			abortWithStoreError(c, "大会の記録取得", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "results": toResultResponses(results)})
	}
}
