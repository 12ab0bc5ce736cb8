package http

import (
	"errors"
	"net/http"

	"github.com/Antoney20/archives/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "app already exists"
	case errors.Is(err, common.ErrorOriginDenied),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, unwrapMessage(err)
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.ErrorNotFound.Error()
	case errors.Is(err, common.ErrorStorageIO):
		return http.StatusInternalServerError, common.ErrorStorageIO.Error()
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

// unwrapMessage returns the sentinel text for credential errors so nothing
// else leaks into the response.
func unwrapMessage(err error) string {
	for _, s := range []error{common.ErrorOriginDenied, common.ErrorUnauthorized, common.ErrorForbidden} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
