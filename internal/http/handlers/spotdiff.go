package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/brainforge-backend/internal/http/response"
	"github.com/yungbote/brainforge-backend/internal/platform/apierr"
	"github.com/yungbote/brainforge-backend/internal/platform/requestdata"
	"github.com/yungbote/brainforge-backend/internal/services"
)

type SpotDifferenceHandler struct {
	svc          services.SpotDifferenceService
	debugOverlay bool
}

func NewSpotDifferenceHandler(svc services.SpotDifferenceService, debugOverlay bool) *SpotDifferenceHandler {
	return &SpotDifferenceHandler{svc: svc, debugOverlay: debugOverlay}
}

// POST /api/spot-difference/start
// body: { "difficulty": "easy" | "medium" | "hard" }
func (h *SpotDifferenceHandler) Start(c *gin.Context) {
	var req struct {
		Difficulty string `json:"difficulty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	out, err := h.svc.StartPuzzle(c.Request.Context(), requestdata.UserID(c.Request.Context()), req.Difficulty)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game_id":           out.SessionID,
		"session_id":        out.SessionID,
		"template_id":       out.TemplateID,
		"difficulty":        out.Difficulty,
		"scene":             out.Scene,
		"image1":            out.ImageA,
		"image2":            out.ImageB,
		"total_differences": out.TotalDifferences,
		"found_count":       out.FoundCount,
		"reused":            out.Reused,
	})
}

// POST /api/spot-difference/check
// body: { "game_id": "<session uuid>", "x_percent": 0-100, "y_percent": 0-100 }
func (h *SpotDifferenceHandler) Check(c *gin.Context) {
	var req struct {
		GameID   string   `json:"game_id"`
		XPercent *float64 `json:"x_percent"`
		YPercent *float64 `json:"y_percent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	sessionID, err := uuid.Parse(req.GameID)
	if err != nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_request", errors.New("game_id must be a uuid")))
		return
	}
	if req.XPercent == nil || req.YPercent == nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_request", errors.New("x_percent and y_percent are required")))
		return
	}
	out, err := h.svc.CheckClick(c.Request.Context(), requestdata.UserID(c.Request.Context()), sessionID, *req.XPercent, *req.YPercent)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/spot-difference/sessions/:id
func (h *SpotDifferenceHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_request", errors.New("id must be a uuid")))
		return
	}
	out, err := h.svc.GetSession(c.Request.Context(), requestdata.UserID(c.Request.Context()), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/spot-difference/templates/:id/overlay.png
func (h *SpotDifferenceHandler) Overlay(c *gin.Context) {
	if !h.debugOverlay {
		response.RespondError(c, http.StatusNotFound, response.CodeNotFound, errors.New("overlay rendering is disabled"))
		return
	}
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_request", errors.New("id must be a uuid")))
		return
	}
	png, err := h.svc.RenderOverlay(c.Request.Context(), templateID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
