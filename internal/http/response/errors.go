package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/umlchat/umlchat-backend/internal/pkg/apperr"
	"github.com/umlchat/umlchat-backend/internal/pkg/httpx"
)

// RespondAppError maps domain sentinels onto statuses; anything else is
// treated as an upstream capability failure.
func RespondAppError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, apperr.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	default:
		RespondError(c, httpx.StatusFromError(err), "upstream_failed", err)
	}
}
