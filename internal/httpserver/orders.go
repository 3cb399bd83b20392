package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"grocery-commerce/internal/domain"
	ordersvc "grocery-commerce/internal/service/order"
)

type trackingView struct {
	OrderID  string                  `json:"orderId"`
	Status   domain.OrderStatus      `json:"status"`
	Label    string                  `json:"label"`
	Progress int                     `json:"progress"`
	Steps    []ordersvc.TrackingStep `json:"steps"`
}

func (h *handlers) listOrders(c *gin.Context) {
	respond(c, http.StatusOK, h.Orders.Orders(currentSession(c)))
}

func (h *handlers) activeOrders(c *gin.Context) {
	orders := h.Orders.ActiveOrders(currentSession(c))
	if orders == nil {
		orders = []domain.Order{}
	}
	respond(c, http.StatusOK, orders)
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.Orders.Get(currentSession(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *handlers) trackOrder(c *gin.Context) {
	o, err := h.Orders.Get(currentSession(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, trackingView{
		OrderID:  o.ID,
		Status:   o.Status,
		Label:    ordersvc.Label(o.Status),
		Progress: ordersvc.Progress(o.Status),
		Steps:    ordersvc.Steps(o.Status),
	})
}

func (h *handlers) cancelOrder(c *gin.Context) {
	o, err := h.Orders.Cancel(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status required")
		return
	}
	o, err := h.Orders.UpdateStatus(c.Request.Context(), currentSession(c), c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}
