package httpserver

import (
	"errors"
	"net/http"

	"ralli/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to status codes. Unexpected errors are logged
// and answered with a generic 500.
func (h *handlers) writeError(c *gin.Context, err error) {
	var (
		verr     *domain.ValidationError
		conflict *domain.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Msg})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Msg})
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error().Err(err).
			Str("request_id", c.GetString(requestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
