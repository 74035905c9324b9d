package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

var errBadBody = entity.InvalidArgument("Invalid request body")

func statusFor(kind entity.ErrorKind) int {
	switch kind {
	case entity.KindUnauthorized:
		return http.StatusUnauthorized
	case entity.KindNotFound:
		return http.StatusNotFound
	case entity.KindInvalidArgument, entity.KindInvalidState:
		return http.StatusBadRequest
	case entity.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": message} plus any details. Internal errors are
// logged and answered with a generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	var derr *entity.Error
	if !errors.As(err, &derr) {
		derr = entity.Internal("unclassified error", err)
	}
	status := statusFor(derr.Kind)

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}

	body := gin.H{"error": derr.Message}
	for k, v := range derr.Details {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}
