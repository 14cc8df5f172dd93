package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/umlchat/umlchat-backend/internal/domain"
	"github.com/umlchat/umlchat-backend/internal/http/response"
	"github.com/umlchat/umlchat-backend/internal/modules/assist/steps"
	"github.com/umlchat/umlchat-backend/internal/pkg/ctxutil"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
	"github.com/umlchat/umlchat-backend/internal/pkg/shortid"
	"github.com/umlchat/umlchat-backend/internal/services"
)

type AssistHandler struct {
	log    *logger.Logger
	assist services.AssistService
}

func NewAssistHandler(log *logger.Logger, assist services.AssistService) *AssistHandler {
	return &AssistHandler{
		log:    log.With("handler", "AssistHandler"),
		assist: assist,
	}
}

type turnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type turnRequest struct {
	ID       string        `json:"id"`
	Messages []turnMessage `json:"messages"`
}

// POST /api/assist/turns
//
// The response body is the assistant text as plain text, written once after
// the turn has been fully generated and persisted. The conversation id
// travels in a header so clients of new conversations can navigate without
// parsing the body.
func (h *AssistHandler) CreateTurn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.Messages) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("messages required"))
		return
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != domain.RoleUser || strings.TrimSpace(last.Content) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("last message must be a non-empty user turn"))
		return
	}

	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing identity"))
		return
	}

	conversationID := strings.TrimSpace(req.ID)
	if conversationID == "" {
		conversationID = shortid.New()
	}

	messages := make([]domain.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, domain.Turn{Role: m.Role, Content: m.Content})
	}

	out, err := h.assist.RespondTurn(c.Request.Context(), steps.RespondInput{
		UserID:         rd.UserID,
		ConversationID: conversationID,
		Messages:       messages,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	// The turn is persisted; only now does any byte reach the client.
	c.Header("X-Conversation-Id", out.ConversationID)
	c.String(http.StatusOK, "%s", out.Text)

	h.log.Debug("turn completed",
		"conversation_id", out.ConversationID,
		"category", string(out.Category),
	)
}
