package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phillip/foodshare-go/store"
)

// ErrUnavailable marks a feature that is switched off by configuration.
var ErrUnavailable = errors.New("unavailable")

// BadRequest is a client error whose message is safe to return as is.
type BadRequest struct {
	Message string
}

func (e *BadRequest) Error() string { return e.Message }

// ErrorHandler turns the last error a handler attached with c.Error into a
// response. Handlers attach a user facing message through gin.Error.Meta.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ginErr := c.Errors.Last()
		status, msg := classify(ginErr)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Int("status", status),
				zap.Error(ginErr.Err),
			)
		}

		c.AbortWithStatusJSON(status, gin.H{"error": msg})
	}
}

func classify(ginErr *gin.Error) (int, string) {
	err := ginErr.Err
	meta, _ := ginErr.Meta.(string)

	var badReq *BadRequest
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, orDefault(meta, "not found")
	case errors.As(err, &badReq):
		return http.StatusBadRequest, badReq.Message
	case ginErr.IsType(gin.ErrorTypeBind):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, orDefault(meta, "service unavailable")
	default:
		return http.StatusInternalServerError, orDefault(meta, "internal server error")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
