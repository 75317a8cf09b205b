package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// openChatSession resumes a session when sessionId is given, else creates one.
func (a *App) openChatSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var payload chatSessionRequest
	if !optionalJSON(c, &payload) {
		return
	}

	ctx := c.Request.Context()
	if sessionID := strings.TrimSpace(payload.SessionID); sessionID != "" {
		session, err := a.chats.SessionForUser(ctx, userID, sessionID)
		if err != nil {
			a.writeAppError(c, err)
			return
		}
		messages, err := a.chats.SessionMessages(ctx, session.ID)
		if err != nil {
			a.writeAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"sessionId": session.ID,
			"startDate": session.StartDate,
			"endDate":   session.EndDate,
			"messages":  messages,
		})
		return
	}

	session, err := a.chats.CreateSession(ctx, userID)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"startDate": session.StartDate,
	})
}

func (a *App) sendChatMessage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var payload chatMessageRequest
	if !mustJSON(c, &payload) {
		return
	}

	outcome, err := a.replies.Send(c.Request.Context(), userID, payload.SessionID, payload.Content)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	if outcome.Help != nil {
		a.logger.Info("crisis_resources_attached",
			zap.String("user_id", userID),
			zap.String("session_id", outcome.SessionID),
			zap.String("region", outcome.Help.Country),
		)
	}
	c.JSON(http.StatusOK, chatMessageResponse{
		SessionID: outcome.SessionID,
		User:      outcome.User,
		Bot:       outcome.Bot,
		Crisis:    outcome.Reply.Crisis,
		Help:      outcome.Help,
	})
}

func (a *App) listChatSessions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sessions, err := a.chats.ListSessions(c.Request.Context(), userID)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (a *App) getChatMessages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	session, err := a.chats.SessionForUser(ctx, userID, pathID(c))
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	messages, err := a.chats.SessionMessages(ctx, session.ID)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (a *App) endChatSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	session, err := a.chats.EndSession(c.Request.Context(), userID, pathID(c))
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
