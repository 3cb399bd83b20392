package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	checkoutsvc "grocery-commerce/internal/service/checkout"
	"grocery-commerce/internal/session"
)

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

type instructionsRequest struct {
	Text string `json:"text"`
}

type tipRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type termsRequest struct {
	Accepted bool `json:"accepted"`
}

func (h *handlers) beginCheckout(c *gin.Context) {
	respond(c, http.StatusOK, h.Checkout.Begin(c.Request.Context(), currentSession(c)))
}

func (h *handlers) getCheckout(c *gin.Context) {
	respond(c, http.StatusOK, h.Checkout.State(c.Request.Context(), currentSession(c)))
}

func (h *handlers) selectAddress(c *gin.Context) {
	h.selectByID(c, h.Checkout.SelectAddress)
}

func (h *handlers) selectSlot(c *gin.Context) {
	h.selectByID(c, h.Checkout.SelectTimeSlot)
}

func (h *handlers) selectPayment(c *gin.Context) {
	h.selectByID(c, h.Checkout.SelectPayment)
}

type selectFunc func(ctx context.Context, sess *session.Session, id string) (checkoutsvc.View, error)

func (h *handlers) selectByID(c *gin.Context, fn selectFunc) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "id required")
		return
	}
	view, err := fn(c.Request.Context(), currentSession(c), req.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *handlers) setInstructions(c *gin.Context) {
	var req instructionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	respond(c, http.StatusOK, h.Checkout.SetInstructions(c.Request.Context(), currentSession(c), req.Text))
}

func (h *handlers) setTip(c *gin.Context) {
	var req tipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount must be a number")
		return
	}
	view, err := h.Checkout.SetTip(c.Request.Context(), currentSession(c), req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *handlers) acceptTerms(c *gin.Context) {
	var req termsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	respond(c, http.StatusOK, h.Checkout.AcceptTerms(c.Request.Context(), currentSession(c), req.Accepted))
}

func (h *handlers) dismissPayment(c *gin.Context) {
	respond(c, http.StatusOK, h.Checkout.DismissPayment(c.Request.Context(), currentSession(c)))
}

func (h *handlers) placeOrder(c *gin.Context) {
	o, err := h.Checkout.PlaceOrder(c.Request.Context(), currentSession(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, o)
}
