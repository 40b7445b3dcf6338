package httpserver

import (
	"net/http"

	"ralli/internal/domain"
	ordersvc "ralli/internal/service/order"
	storesvc "ralli/internal/service/store"
	"github.com/gin-gonic/gin"
)

func (h *handlers) checkSlug(c *gin.Context) {
	result, err := h.deps.Stores.CheckSlugAvailability(c.Request.Context(), c.Query("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) kioskStore(c *gin.Context) {
	st, err := h.deps.Stores.KioskStore(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": st.Name, "slug": st.Slug})
}

func (h *handlers) kioskCreateOrder(c *gin.Context) {
	st, err := h.deps.Stores.KioskStore(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	var in ordersvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	o, err := h.deps.Orders.Create(c.Request.Context(), st.ID, in, ordersvc.SourceKiosk)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"orderId": o.ID})
}

func (h *handlers) registerMerchant(c *gin.Context) {
	var in storesvc.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	// A signed-in caller registers for themselves.
	if id := identityFrom(c); id.IsAuthenticated() {
		if in.OwnerID == "" {
			in.OwnerID = id.UserID
		}
		if in.OwnerEmail == "" {
			in.OwnerEmail = id.Email
		}
	}
	st, err := h.deps.Stores.Register(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": st})
}

func (h *handlers) listMerchants(c *gin.Context) {
	stores, err := h.deps.Stores.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"merchants": stores})
}

func (h *handlers) reviewMerchant(c *gin.Context) {
	if !h.requireAdmin(c, domain.ActionManageStores) {
		return
	}
	var in storesvc.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	st, err := h.deps.Stores.Review(c.Request.Context(), identityFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": st})
}
