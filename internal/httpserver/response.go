package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/notify"
	checkoutsvc "grocery-commerce/internal/service/checkout"
	ordersvc "grocery-commerce/internal/service/order"
	"grocery-commerce/internal/service/pricing"
	profilesvc "grocery-commerce/internal/service/profile"
	"grocery-commerce/internal/session"
)

type envelope struct {
	Data          any              `json:"data"`
	Notifications []notify.Message `json:"notifications"`
}

type errorResponse struct {
	Error         string           `json:"error"`
	Notifications []notify.Message `json:"notifications,omitempty"`
}

// respond writes data along with the notifications the session produced
// while handling the request.
func respond(c *gin.Context, status int, data any) {
	var notes []notify.Message
	if v, ok := c.Get(sessionCtxKey); ok {
		notes = v.(*session.Session).DrainNotifications()
	}
	if notes == nil {
		notes = []notify.Message{}
	}
	c.JSON(status, envelope{Data: data, Notifications: notes})
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string) {
	abortError(c, http.StatusBadRequest, msg)
}

// writeError maps service errors onto HTTP statuses.
func (h *handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	resp := errorResponse{Error: err.Error()}
	if v, ok := c.Get(sessionCtxKey); ok {
		resp.Notifications = v.(*session.Session).DrainNotifications()
	}
	c.AbortWithStatusJSON(status, resp)
}

func statusFor(err error) int {
	var minErr *pricing.MinimumOrderError
	var transErr *ordersvc.TransitionError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrGuest), errors.Is(err, profilesvc.ErrGuest):
		return http.StatusForbidden
	case errors.Is(err, session.ErrEmailTaken), errors.As(err, &transErr):
		return http.StatusConflict
	case errors.Is(err, checkoutsvc.ErrPaymentDismissed), errors.Is(err, checkoutsvc.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, pricing.ErrInvalidPromo), errors.As(err, &minErr),
		errors.Is(err, checkoutsvc.ErrTermsNotAccepted), errors.Is(err, checkoutsvc.ErrAddressRequired),
		errors.Is(err, checkoutsvc.ErrTimeSlotRequired), errors.Is(err, checkoutsvc.ErrPaymentRequired),
		errors.Is(err, checkoutsvc.ErrEmptyCart), errors.Is(err, checkoutsvc.ErrInvalidTotal),
		errors.Is(err, session.ErrOTPExpired), errors.Is(err, session.ErrOTPMismatch),
		errors.Is(err, session.ErrOTPNotRequested):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
