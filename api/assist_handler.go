package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/turf-booking-backend/venue"
)

type Assistant interface {
	Recommendation(ctx context.Context, interest string) string
	SupportReply(ctx context.Context, query string) string
}

type AssistHandler struct {
	assistant Assistant
}

func NewAssistHandler(assistant Assistant) *AssistHandler {
	return &AssistHandler{assistant: assistant}
}

type supportRequest struct {
	Query string `json:"query" binding:"required"`
}

func (h *AssistHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/tips", h.Tips)
	rg.POST("/support", h.Support)
}

func (h *AssistHandler) Tips(c *gin.Context) {
	sport := strings.TrimSpace(c.Query("sport"))
	if sport == "" || sport == venue.AllSports {
		sport = "sports"
	}

	c.IndentedJSON(http.StatusOK, gin.H{"tip": h.assistant.Recommendation(c.Request.Context(), sport)})
}

func (h *AssistHandler) Support(c *gin.Context) {
	var req supportRequest

	if err := c.BindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query cannot be empty"})
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"reply": h.assistant.SupportReply(c.Request.Context(), query)})
}
