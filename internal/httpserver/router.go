package httpserver

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"grocery-commerce/internal/catalog"
	cartsvc "grocery-commerce/internal/service/cart"
	checkoutsvc "grocery-commerce/internal/service/checkout"
	ordersvc "grocery-commerce/internal/service/order"
	"grocery-commerce/internal/service/pricing"
	profilesvc "grocery-commerce/internal/service/profile"
	"grocery-commerce/internal/session"
)

// Deps are the services the API is built from.
type Deps struct {
	Catalog     *catalog.Reader
	Sessions    *session.Registry
	Identity    *session.Identity
	Cart        *cartsvc.Service
	Pricing     *pricing.Engine
	Checkout    *checkoutsvc.Service
	Orders      *ordersvc.Service
	Profile     *profilesvc.Service
	Ready       Pinger
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("catalog reader required")
	case d.Sessions == nil:
		return errors.New("session registry required")
	case d.Identity == nil:
		return errors.New("identity service required")
	case d.Cart == nil:
		return errors.New("cart service required")
	case d.Pricing == nil:
		return errors.New("pricing engine required")
	case d.Checkout == nil:
		return errors.New("checkout service required")
	case d.Orders == nil:
		return errors.New("order service required")
	case d.Profile == nil:
		return errors.New("profile service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{Deps: deps, logger: logger.Named("http")}

	router := gin.New()
	router.Use(requestLogger(h.logger), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready, deps.Catalog.Loaded))

	router.POST("/sessions/guest", h.createGuest)
	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/brands", h.listBrands)
	router.GET("/categories", h.listCategories)
	router.GET("/time-slots", h.listTimeSlots)
	router.GET("/promos", h.listPromos)

	authed := router.Group("/", sessionMiddleware(deps.Identity, deps.Sessions))
	authed.POST("/auth/logout", h.logout)

	authed.GET("/me", h.me)
	authed.PUT("/me", h.updateMe)
	authed.POST("/me/otp", h.requestOTP)
	authed.POST("/me/otp/verify", h.verifyOTP)

	authed.GET("/me/addresses", h.listAddresses)
	authed.POST("/me/addresses", h.addAddress)
	authed.PUT("/me/addresses/:id", h.updateAddress)
	authed.DELETE("/me/addresses/:id", h.removeAddress)
	authed.POST("/me/addresses/:id/default", h.defaultAddress)

	authed.GET("/me/payment-methods", h.listPaymentMethods)
	authed.POST("/me/payment-methods", h.addPaymentMethod)
	authed.PUT("/me/payment-methods/:id", h.updatePaymentMethod)
	authed.DELETE("/me/payment-methods/:id", h.removePaymentMethod)
	authed.POST("/me/payment-methods/:id/default", h.defaultPaymentMethod)

	authed.GET("/cart", h.getCart)
	authed.DELETE("/cart", h.clearCart)
	authed.POST("/cart/items", h.addCartItem)
	authed.PUT("/cart/items/:id", h.updateCartItem)
	authed.DELETE("/cart/items/:id", h.removeCartItem)
	authed.POST("/cart/promo", h.applyPromo)
	authed.DELETE("/cart/promo", h.removePromo)
	authed.GET("/cart/totals", h.cartTotals)

	authed.GET("/wishlist", h.getWishlist)
	authed.POST("/wishlist/:id", h.toggleWishlist)
	authed.DELETE("/wishlist/:id", h.removeWishlist)
	authed.POST("/wishlist/:id/move", h.moveToCart)

	authed.POST("/checkout", h.beginCheckout)
	authed.GET("/checkout", h.getCheckout)
	authed.PUT("/checkout/address", h.selectAddress)
	authed.PUT("/checkout/slot", h.selectSlot)
	authed.PUT("/checkout/payment", h.selectPayment)
	authed.PUT("/checkout/instructions", h.setInstructions)
	authed.PUT("/checkout/tip", h.setTip)
	authed.PUT("/checkout/terms", h.acceptTerms)
	authed.POST("/checkout/dismiss", h.dismissPayment)
	authed.POST("/checkout/place", h.placeOrder)

	authed.GET("/orders", h.listOrders)
	authed.GET("/orders/active", h.activeOrders)
	authed.GET("/orders/:id", h.getOrder)
	authed.GET("/orders/:id/tracking", h.trackOrder)
	authed.PUT("/orders/:id/status", h.updateOrderStatus)
	authed.POST("/orders/:id/cancel", h.cancelOrder)

	return router, nil
}

type handlers struct {
	Deps
	logger *zap.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
