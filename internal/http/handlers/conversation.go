package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/umlchat/umlchat-backend/internal/http/response"
	"github.com/umlchat/umlchat-backend/internal/pkg/ctxutil"
	"github.com/umlchat/umlchat-backend/internal/services"
)

type ConversationHandler struct {
	assist services.AssistService
}

func NewConversationHandler(assist services.AssistService) *ConversationHandler {
	return &ConversationHandler{assist: assist}
}

// GET /api/conversations
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing identity"))
		return
	}
	conversations, err := h.assist.ListConversations(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": conversations})
}

// GET /api/conversations/:id
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing identity"))
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("conversation id required"))
		return
	}
	conversation, err := h.assist.GetConversation(c.Request.Context(), rd.UserID, id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conversation})
}

// DELETE /api/conversations/:id
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing identity"))
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("conversation id required"))
		return
	}
	if err := h.assist.DeleteConversation(c.Request.Context(), rd.UserID, id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": id})
}
