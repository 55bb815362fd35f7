package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PushTokenStore records a user's Expo push token.
type PushTokenStore interface {
	UpdatePushToken(ctx context.Context, id, token string) error
}

type UserHandler struct {
	users PushTokenStore
}

func NewUserHandler(users PushTokenStore) *UserHandler {
	return &UserHandler{users: users}
}

type pushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *UserHandler) UpdatePushToken(c *gin.Context) {
	var req pushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := h.users.UpdatePushToken(c.Request.Context(), c.Param("id"), req.Token); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
