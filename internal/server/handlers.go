package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"emocare/backend/internal/crisis"
	"emocare/backend/internal/model"
	"emocare/backend/internal/profile"
)

type registerRequest struct {
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required"`
	Name     string         `json:"name"`
	Profile  *profile.Input `json:"profile"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type chatSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type chatMessageRequest struct {
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
}

type historySummaryRequest struct {
	Text string `json:"text"`
}

type chatMessageResponse struct {
	SessionID string            `json:"sessionId"`
	User      model.Message     `json:"user"`
	Bot       model.Message     `json:"bot"`
	Crisis    bool              `json:"crisis"`
	Help      *crisis.Directory `json:"help"`
}

func (a *App) helpResources(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		region = a.cfg.CrisisRegion
	}
	c.JSON(http.StatusOK, crisis.Lookup(region))
}
