package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"emocare/backend/internal/profile"
)

func (a *App) getProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	current, err := a.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, current)
}

func (a *App) putProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var payload profile.Input
	if !optionalJSON(c, &payload) {
		return
	}
	saved, err := a.profiles.Upsert(c.Request.Context(), userID, payload)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (a *App) previewSuggestions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	set, metrics, err := a.profiles.Suggest(c.Request.Context(), userID)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"suggestions": set,
		"metrics":     metrics,
	})
}

func (a *App) applySuggestions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	saved, set, err := a.profiles.ApplySuggestions(c.Request.Context(), userID)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":     saved,
		"suggestions": set,
	})
}

func (a *App) summarizeHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var payload historySummaryRequest
	if !mustJSON(c, &payload) {
		return
	}
	history, err := a.profiles.SaveHistorySummary(c.Request.Context(), userID, payload.Text)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
