package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/session"
)

type tokenResponse struct {
	Token   string          `json:"token"`
	Owner   session.Owner   `json:"owner"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type otpRequest struct {
	Channel session.Channel `json:"channel" binding:"required"`
	Code    string          `json:"code"`
}

func (h *handlers) createGuest(c *gin.Context) {
	token, owner, err := h.Identity.IssueGuest()
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, tokenResponse{Token: token, Owner: owner})
}

func (h *handlers) register(c *gin.Context) {
	var req session.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	profile, err := h.Identity.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, profile)
}

// login signs a customer in. A guest bearer token on the request has its
// cart and wishlist adopted by the customer.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password required")
		return
	}
	ctx := c.Request.Context()
	profile, token, err := h.Identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	owner := session.Owner{Kind: session.OwnerCustomer, ID: profile.ID}
	if guest, err := h.Identity.Lookup(bearerToken(c.GetHeader("Authorization"))); err == nil && guest.IsGuest() {
		h.Identity.AdoptGuest(ctx, guest, owner)
		h.logger.Info("guest adopted on login", zap.String("guest", guest.ID), zap.String("customer", owner.ID))
	}
	sess := h.Sessions.Get(ctx, owner)
	sess.Lock()
	defer sess.Unlock()
	sess.Notifier().Success("Welcome back, " + profile.Name)
	c.Set(sessionCtxKey, sess)
	respond(c, http.StatusOK, tokenResponse{Token: token, Owner: owner, Profile: profile})
}

func (h *handlers) logout(c *gin.Context) {
	sess := currentSession(c)
	if err := h.Identity.Logout(c.Request.Context(), sess.Owner); err != nil {
		h.writeError(c, err)
		return
	}
	h.Sessions.Forget(sess.Owner)
	respond(c, http.StatusOK, gin.H{"status": "signed out"})
}

func (h *handlers) me(c *gin.Context) {
	sess := currentSession(c)
	profile, err := h.Identity.Profile(c.Request.Context(), sess.Owner)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

func (h *handlers) updateMe(c *gin.Context) {
	var req domain.ProfileOverrides
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	sess := currentSession(c)
	profile, err := h.Identity.UpdateProfile(c.Request.Context(), sess.Owner, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sess.Notifier().Success("profile updated")
	respond(c, http.StatusOK, profile)
}

// requestOTP issues a verification code. Delivery is simulated: the code is
// surfaced as a notification.
func (h *handlers) requestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "channel required")
		return
	}
	sess := currentSession(c)
	code, err := h.Identity.RequestOTP(c.Request.Context(), sess.Owner, req.Channel)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sess.Notifier().Info("Your verification code is " + code)
	respond(c, http.StatusAccepted, gin.H{"channel": req.Channel})
}

func (h *handlers) verifyOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		badRequest(c, "channel and code required")
		return
	}
	sess := currentSession(c)
	profile, err := h.Identity.VerifyOTP(c.Request.Context(), sess.Owner, req.Channel, req.Code)
	if err != nil {
		sess.Notifier().Error(err.Error())
		h.writeError(c, err)
		return
	}
	sess.Notifier().Success(string(req.Channel) + " verified")
	respond(c, http.StatusOK, profile)
}
