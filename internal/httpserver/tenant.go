package httpserver

import (
	"net/http"

	"ralli/internal/domain"
	"ralli/internal/service/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// tenantStore resolves the store a staff request targets and checks the
// caller may perform action on it. It writes the error response itself.
func (h *handlers) tenantStore(c *gin.Context, requested string, action domain.Action) (string, bool) {
	id := identityFrom(c)
	if !id.IsAuthenticated() {
		h.writeError(c, domain.ErrUnauthenticated)
		return "", false
	}
	storeID, err := auth.ResolveStoreID(id, requested)
	if err != nil {
		h.writeError(c, err)
		return "", false
	}
	if _, err := uuid.Parse(storeID); err != nil {
		badRequest(c, "invalid storeId")
		return "", false
	}
	if err := auth.Authorize(id, storeID, action); err != nil {
		h.writeError(c, err)
		return "", false
	}
	return storeID, true
}

// requireIdentity answers 401 for anonymous callers.
func (h *handlers) requireIdentity(c *gin.Context) bool {
	if !identityFrom(c).IsAuthenticated() {
		h.writeError(c, domain.ErrUnauthenticated)
		return false
	}
	return true
}

// requireAdmin answers 401 or 403 unless the caller may perform the
// admin-only action.
func (h *handlers) requireAdmin(c *gin.Context, action domain.Action) bool {
	if err := auth.Authorize(identityFrom(c), "", action); err != nil {
		h.writeError(c, err)
		return false
	}
	return true
}

// entityID reads a uuid path parameter. Malformed ids answer 404 like any
// other unknown id.
func (h *handlers) entityID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		h.writeError(c, domain.ErrNotFound)
		return "", false
	}
	return raw, true
}

func (h *handlers) me(c *gin.Context) {
	id := identityFrom(c)
	if !id.IsAuthenticated() {
		h.writeError(c, domain.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, id)
}
