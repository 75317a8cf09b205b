package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"emocare/backend/internal/auth"
)

func (a *App) register(c *gin.Context) {
	var payload registerRequest
	if !mustJSON(c, &payload) {
		return
	}
	user, err := a.auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		Name:     payload.Name,
		Profile:  payload.Profile,
	})
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *App) login(c *gin.Context) {
	var payload loginRequest
	if !mustJSON(c, &payload) {
		return
	}
	result, err := a.auth.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		a.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
