package httpx

import (
	"context"
	"errors"
	"net/http"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusFromError maps an upstream capability error to the status the caller
// should see. Unknown errors map to 502: the turn failed because a collaborator
// failed, not because the request was malformed.
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatusCode()
		if code == http.StatusTooManyRequests || code == http.StatusRequestTimeout {
			return code
		}
	}
	return http.StatusBadGateway
}
