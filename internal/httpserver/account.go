package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"grocery-commerce/internal/domain"
	profilesvc "grocery-commerce/internal/service/profile"
)

func (h *handlers) listAddresses(c *gin.Context) {
	list := h.Profile.Addresses(c.Request.Context(), currentSession(c))
	if list == nil {
		list = []domain.Address{}
	}
	respond(c, http.StatusOK, list)
}

func (h *handlers) addAddress(c *gin.Context) {
	var req profilesvc.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	a, err := h.Profile.AddAddress(c.Request.Context(), currentSession(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, a)
}

func (h *handlers) updateAddress(c *gin.Context) {
	var req profilesvc.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	a, err := h.Profile.UpdateAddress(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, a)
}

func (h *handlers) removeAddress(c *gin.Context) {
	if err := h.Profile.RemoveAddress(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.listAddresses(c)
}

func (h *handlers) defaultAddress(c *gin.Context) {
	if err := h.Profile.SetDefaultAddress(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.listAddresses(c)
}

func (h *handlers) listPaymentMethods(c *gin.Context) {
	list := h.Profile.PaymentMethods(c.Request.Context(), currentSession(c))
	if list == nil {
		list = []domain.PaymentMethod{}
	}
	respond(c, http.StatusOK, list)
}

func (h *handlers) addPaymentMethod(c *gin.Context) {
	var req profilesvc.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	m, err := h.Profile.AddPaymentMethod(c.Request.Context(), currentSession(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, m)
}

func (h *handlers) updatePaymentMethod(c *gin.Context) {
	var req profilesvc.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	m, err := h.Profile.UpdatePaymentMethod(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, m)
}

func (h *handlers) removePaymentMethod(c *gin.Context) {
	if err := h.Profile.RemovePaymentMethod(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.listPaymentMethods(c)
}

func (h *handlers) defaultPaymentMethod(c *gin.Context) {
	if err := h.Profile.SetDefaultPaymentMethod(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.listPaymentMethods(c)
}
