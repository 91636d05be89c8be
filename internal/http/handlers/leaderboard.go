package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brainforge-backend/internal/http/response"
	"github.com/yungbote/brainforge-backend/internal/services"
)

type LeaderboardHandler struct {
	board services.LeaderboardService
}

func NewLeaderboardHandler(board services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// GET /api/leaderboard/:exercise_id?limit=
func (h *LeaderboardHandler) Top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	exerciseID := c.Param("exercise_id")
	entries, err := h.board.Top(c.Request.Context(), exerciseID, limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercise_id": exerciseID, "leaderboard": entries})
}
