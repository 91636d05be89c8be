package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brainforge-backend/internal/http/response"
	"github.com/yungbote/brainforge-backend/internal/platform/apierr"
	"github.com/yungbote/brainforge-backend/internal/platform/requestdata"
	"github.com/yungbote/brainforge-backend/internal/services"
)

type ResultsHandler struct {
	progress services.ProgressService
}

func NewResultsHandler(progress services.ProgressService) *ResultsHandler {
	return &ResultsHandler{progress: progress}
}

// POST /api/results
// body: { "exercise_id": "...", "score": 42, "time": 31.5, "difficulty": "...", "payload": {...} }
func (h *ResultsHandler) Record(c *gin.Context) {
	var req struct {
		ExerciseID string         `json:"exercise_id"`
		Score      *float64       `json:"score"`
		Time       float64        `json:"time"`
		Difficulty string         `json:"difficulty"`
		Payload    map[string]any `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	out, err := h.progress.RecordGenericResult(c.Request.Context(), requestdata.UserID(c.Request.Context()), services.RecordResultInput{
		ExerciseID: req.ExerciseID,
		Score:      req.Score,
		Time:       req.Time,
		Difficulty: req.Difficulty,
		Payload:    req.Payload,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/results/user?exercise_id=&limit=
func (h *ResultsHandler) ListMine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.progress.ListUserResults(c.Request.Context(), requestdata.UserID(c.Request.Context()), c.Query("exercise_id"), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows})
}

// GET /api/profile/stats
func (h *ResultsHandler) ProfileStats(c *gin.Context) {
	stats, err := h.progress.ProfileStats(c.Request.Context(), requestdata.UserID(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}
