package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/service/pricing"
)

type cartView struct {
	Lines  []domain.CartLine    `json:"lines"`
	Promo  *domain.AppliedPromo `json:"promo,omitempty"`
	Totals pricing.Breakdown    `json:"totals"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type promoRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *handlers) cartView(c *gin.Context) cartView {
	sess := currentSession(c)
	lines := h.Cart.Lines(sess)
	return cartView{Lines: lines, Promo: sess.Promo, Totals: h.Pricing.QuoteSession(sess)}
}

func (h *handlers) getCart(c *gin.Context) {
	respond(c, http.StatusOK, h.cartView(c))
}

func (h *handlers) clearCart(c *gin.Context) {
	h.Cart.Clear(c.Request.Context(), currentSession(c))
	respond(c, http.StatusOK, h.cartView(c))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId required")
		return
	}
	h.Cart.AddProductByID(c.Request.Context(), currentSession(c), req.ProductID, req.Quantity)
	respond(c, http.StatusOK, h.cartView(c))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity required")
		return
	}
	h.Cart.UpdateItem(c.Request.Context(), currentSession(c), c.Param("id"), req.Quantity)
	respond(c, http.StatusOK, h.cartView(c))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	h.Cart.Remove(c.Request.Context(), currentSession(c), c.Param("id"))
	respond(c, http.StatusOK, h.cartView(c))
}

func (h *handlers) applyPromo(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code required")
		return
	}
	if _, err := h.Pricing.ApplyPromoCode(c.Request.Context(), currentSession(c), req.Code); err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, h.cartView(c))
}

func (h *handlers) removePromo(c *gin.Context) {
	h.Pricing.RemovePromoCode(c.Request.Context(), currentSession(c))
	respond(c, http.StatusOK, h.cartView(c))
}

func (h *handlers) cartTotals(c *gin.Context) {
	respond(c, http.StatusOK, h.Pricing.QuoteSession(currentSession(c)))
}

type wishlistView struct {
	Items []domain.WishlistEntry `json:"items"`
	Count int                    `json:"count"`
}

func (h *handlers) wishlistView(c *gin.Context) wishlistView {
	items := h.Cart.Wishlist(currentSession(c))
	return wishlistView{Items: items, Count: len(items)}
}

func (h *handlers) getWishlist(c *gin.Context) {
	respond(c, http.StatusOK, h.wishlistView(c))
}

func (h *handlers) toggleWishlist(c *gin.Context) {
	in := h.Cart.ToggleWishlistByID(c.Request.Context(), currentSession(c), c.Param("id"))
	view := h.wishlistView(c)
	respond(c, http.StatusOK, gin.H{"inWishlist": in, "items": view.Items, "count": view.Count})
}

func (h *handlers) removeWishlist(c *gin.Context) {
	h.Cart.RemoveFromWishlist(c.Request.Context(), currentSession(c), c.Param("id"))
	respond(c, http.StatusOK, h.wishlistView(c))
}

func (h *handlers) moveToCart(c *gin.Context) {
	req := quantityRequest{Quantity: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid payload")
			return
		}
	}
	h.Cart.MoveToCart(c.Request.Context(), currentSession(c), c.Param("id"), req.Quantity)
	respond(c, http.StatusOK, gin.H{"cart": h.cartView(c), "wishlist": h.wishlistView(c)})
}
