package swimresults

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/swimresults/internal/model"
)

// createResultRequest は記録登録リクエストのJSON構造。
type createResultRequest struct {
	ID        int64  `json:"id" binding:"min=0"`
	SwimmerID int64  `json:"swimmer id" binding:"required,min=1"`
	MeetID    int64  `json:"meet id" binding:"required,min=1"`
	Course    string `json:"course" binding:"required,oneof=LCM SCM SCY"`
	Distance  int    `json:"distance" binding:"required"`
	Stroke    string `json:"stroke" binding:"required,oneof=Back Breast Fly Free IM"`
	// Time は "HH:MM:SS.ff"、"MM:SS.ff" または "SS.ff" 形式のタイム。
	Time string `json:"time" binding:"required"`
}

// resultResponse は記録のJSONレスポンス構造。
type resultResponse struct {
	ID        int64  `json:"id"`
	SwimmerID int64  `json:"swimmer id"`
	MeetID    int64  `json:"meet id"`
	Course    string `json:"course"`
	Distance  int    `json:"distance"`
	Stroke    string `json:"stroke"`
	Time      string `json:"time"`
}

func toResultResponses(results []model.Result) []resultResponse {
	resp := make([]resultResponse, 0, len(results))
	for _, r := range results {
		resp = append(resp, resultResponse{
			ID:        r.ID,
			SwimmerID: r.SwimmerID,
			MeetID:    r.MeetID,
			Course:    string(r.Course),
			Distance:  r.Distance,
			Stroke:    string(r.Stroke),
			Time:      r.Time.String(),
		})
	}
	return resp
}

// handleListResults は記録一覧をID順に返す。
func (s *Server) handleListResults() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := s.store.ListResults(c.Request.Context())
		if err != nil {
			abortWithStoreError(c, "記録一覧の取得", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "results": toResultResponses(results)})
	}
}

// handleCreateResult は記録を登録し、IDを返す。
// 存在しない選手・大会を参照した場合は422を返す。
func (s *Server) handleCreateResult() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createResultRequest
		if !bindJSON(c, &req) {
			return
		}

		t, err := model.ParseRaceTime(req.Time)
		if err != nil {
			abortWithStoreError(c, "記録の登録", err)
			return
		}

		r := model.Result{
			ID:        req.ID,
			SwimmerID: req.SwimmerID,
			MeetID:    req.MeetID,
			Course:    model.Course(req.Course),
			Distance:  req.Distance,
			Stroke:    model.Stroke(req.Stroke),
			Time:      t,
		}
		if err := r.Validate(); err != nil {
			abortWithStoreError(c, "記録の登録", err)
			return
		}

		id, err := s.store.CreateResult(c.Request.Context(), r)
		if err != nil {
			abortWithStoreError(c, "記録の登録", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
	}
}

// handleDeleteResult は記録を削除する。
func (s *Server) handleDeleteResult() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		if err := s.store.DeleteResult(c.Request.Context(), id); err != nil {
			abortWithStoreError(c, "記録の削除", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
	}
}
