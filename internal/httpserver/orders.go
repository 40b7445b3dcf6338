package httpserver

import (
	"net/http"

	"ralli/internal/domain"
	ordersvc "ralli/internal/service/order"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	StoreID string `json:"storeId"`
	ordersvc.CreateInput
}

type updateOrderRequest struct {
	StoreID string  `json:"storeId"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
}

func (h *handlers) listOrders(c *gin.Context) {
	storeID, ok := h.tenantStore(c, c.Query("storeId"), domain.ActionReadOrders)
	if !ok {
		return
	}
	orders, err := h.deps.Orders.List(c.Request.Context(), storeID, c.Query("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) createOrder(c *gin.Context) {
	if !h.requireIdentity(c) {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	storeID, ok := h.tenantStore(c, req.StoreID, domain.ActionWriteOrders)
	if !ok {
		return
	}
	o, err := h.deps.Orders.Create(c.Request.Context(), storeID, req.CreateInput, ordersvc.SourceStaff)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": o})
}

func (h *handlers) getOrder(c *gin.Context) {
	storeID, ok := h.tenantStore(c, c.Query("storeId"), domain.ActionReadOrders)
	if !ok {
		return
	}
	orderID, ok := h.entityID(c, "id")
	if !ok {
		return
	}
	o, err := h.deps.Orders.Get(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) updateOrder(c *gin.Context) {
	if !h.requireIdentity(c) {
		return
	}
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	requested := c.Query("storeId")
	if requested == "" {
		requested = req.StoreID
	}
	storeID, ok := h.tenantStore(c, requested, domain.ActionWriteOrders)
	if !ok {
		return
	}
	orderID, ok := h.entityID(c, "id")
	if !ok {
		return
	}
	o, err := h.deps.Orders.Update(c.Request.Context(), storeID, orderID, ordersvc.UpdateInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) deleteOrder(c *gin.Context) {
	storeID, ok := h.tenantStore(c, c.Query("storeId"), domain.ActionWriteOrders)
	if !ok {
		return
	}
	orderID, ok := h.entityID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Orders.Delete(c.Request.Context(), storeID, orderID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) lookupCustomer(c *gin.Context) {
	storeID, ok := h.tenantStore(c, c.Query("storeId"), domain.ActionReadCustomers)
	if !ok {
		return
	}
	key := c.Query("phone")
	if key == "" {
		key = c.Query("email")
	}
	result, err := h.deps.Customers.Lookup(c.Request.Context(), storeID, key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
