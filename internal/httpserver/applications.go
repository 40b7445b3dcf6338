package httpserver

import (
	"net/http"

	"ralli/internal/domain"
	appsvc "ralli/internal/service/application"
	"github.com/gin-gonic/gin"
)

type reviewApplicationRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Reason string `json:"reason"`
}

func (h *handlers) submitApplication(c *gin.Context) {
	if !h.requireIdentity(c) {
		return
	}
	var in appsvc.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	app, err := h.deps.Applications.Submit(c.Request.Context(), identityFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": app})
}

func (h *handlers) listApplications(c *gin.Context) {
	apps, err := h.deps.Applications.List(c.Request.Context(), identityFrom(c), c.Query("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (h *handlers) getApplication(c *gin.Context) {
	id, ok := h.entityID(c, "id")
	if !ok {
		return
	}
	app, err := h.deps.Applications.Get(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (h *handlers) reviewApplication(c *gin.Context) {
	if !h.requireAdmin(c, domain.ActionReviewApplications) {
		return
	}
	var req reviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "action must be approve or reject")
		return
	}
	id, ok := h.entityID(c, "id")
	if !ok {
		return
	}
	actor := identityFrom(c)

	if req.Action == "approve" {
		app, st, err := h.deps.Applications.Approve(c.Request.Context(), actor, id)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": app, "storeId": st.ID})
		return
	}

	app, err := h.deps.Applications.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (h *handlers) deleteApplication(c *gin.Context) {
	id, ok := h.entityID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Applications.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
