package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/session"
)

// MaxLineQuantity caps the units of one product in a cart.
const MaxLineQuantity = domain.MaxLineQuantity

// UnknownProductName labels the placeholder line created for unresolvable ids.
const UnknownProductName = "Unknown product"

// Service mutates a session's cart and wishlist. Callers hold the session lock.
type Service struct {
	catalog productLookup
	logger  *zap.Logger
	now     func() time.Time
}

type productLookup interface {
	FindByID(id string) (domain.Product, bool)
}

func New(catalog productLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, logger: logger.Named("cart"), now: time.Now}
}

// AddProduct increments the line for p by qty, inserting it when absent.
// Quantities below 1 count as 1 and the line never exceeds MaxLineQuantity.
func (s *Service) AddProduct(ctx context.Context, sess *session.Session, p domain.Product, qty int) domain.CartLine {
	qty = domain.ClampQuantity(qty)
	var line domain.CartLine
	if idx := sess.FindLine(p.ID); idx >= 0 {
		sess.Cart[idx].Quantity = domain.AddQuantity(sess.Cart[idx].Quantity, qty)
		line = sess.Cart[idx]
		sess.Notifier().Success(fmt.Sprintf("%s quantity updated to %d", line.Name, line.Quantity))
	} else {
		line = domain.NewCartLine(p, qty)
		sess.Cart = append(sess.Cart, line)
		sess.Notifier().Success(fmt.Sprintf("%s added to cart", line.Name))
	}
	sess.SaveCart(ctx)
	return line
}

// AddProductByID resolves id through the catalog. Unknown ids become a
// zero-price placeholder line rather than an error.
func (s *Service) AddProductByID(ctx context.Context, sess *session.Session, id string, qty int) domain.CartLine {
	return s.AddProduct(ctx, sess, s.resolve(id), qty)
}

// UpdateItem overwrites the line quantity, capped at MaxLineQuantity.
// Non-positive quantities remove the line; unknown ids are ignored.
func (s *Service) UpdateItem(ctx context.Context, sess *session.Session, id string, qty int) {
	if qty <= 0 {
		s.Remove(ctx, sess, id)
		return
	}
	idx := sess.FindLine(id)
	if idx < 0 {
		return
	}
	qty = domain.ClampQuantity(qty)
	sess.Cart[idx].Quantity = qty
	sess.SaveCart(ctx)
	sess.Notifier().Info(fmt.Sprintf("%s quantity updated to %d", sess.Cart[idx].Name, qty))
}

// Remove drops the line for id if present.
func (s *Service) Remove(ctx context.Context, sess *session.Session, id string) {
	idx := sess.FindLine(id)
	if idx < 0 {
		return
	}
	name := sess.Cart[idx].Name
	sess.Cart = append(sess.Cart[:idx], sess.Cart[idx+1:]...)
	sess.SaveCart(ctx)
	sess.Notifier().Info(fmt.Sprintf("%s removed from cart", name))
}

// Clear empties the cart and drops any applied promo code.
func (s *Service) Clear(ctx context.Context, sess *session.Session) {
	sess.Cart = nil
	sess.Promo = nil
	sess.SaveCart(ctx)
	sess.Notifier().Info("cart cleared")
}

// Lines returns a copy of the cart.
func (s *Service) Lines(sess *session.Session) []domain.CartLine {
	out := make([]domain.CartLine, len(sess.Cart))
	copy(out, sess.Cart)
	return out
}

// ItemCount is the sum of line quantities.
func (s *Service) ItemCount(sess *session.Session) int {
	n := 0
	for _, l := range sess.Cart {
		n += l.Quantity
	}
	return n
}

// ToggleWishlist adds p when absent and removes it when present. It reports
// whether p is in the wishlist afterwards.
func (s *Service) ToggleWishlist(ctx context.Context, sess *session.Session, p domain.Product) bool {
	if idx := sess.FindWish(p.ID); idx >= 0 {
		sess.Wishlist = append(sess.Wishlist[:idx], sess.Wishlist[idx+1:]...)
		sess.SaveWishlist(ctx)
		sess.Notifier().Info(fmt.Sprintf("%s removed from wishlist", p.Name))
		return false
	}
	sess.Wishlist = append(sess.Wishlist, domain.NewWishlistEntry(p, s.now().UTC()))
	sess.SaveWishlist(ctx)
	sess.Notifier().Success(fmt.Sprintf("%s added to wishlist", p.Name))
	return true
}

// ToggleWishlistByID resolves id and toggles it.
func (s *Service) ToggleWishlistByID(ctx context.Context, sess *session.Session, id string) bool {
	if idx := sess.FindWish(id); idx >= 0 {
		return s.ToggleWishlist(ctx, sess, sess.Wishlist[idx].Product())
	}
	return s.ToggleWishlist(ctx, sess, s.resolve(id))
}

// RemoveFromWishlist drops id if present.
func (s *Service) RemoveFromWishlist(ctx context.Context, sess *session.Session, id string) {
	idx := sess.FindWish(id)
	if idx < 0 {
		return
	}
	name := sess.Wishlist[idx].Name
	sess.Wishlist = append(sess.Wishlist[:idx], sess.Wishlist[idx+1:]...)
	sess.SaveWishlist(ctx)
	sess.Notifier().Info(fmt.Sprintf("%s removed from wishlist", name))
}

// MoveToCart adds the wishlist entry for id to the cart with qty units and
// removes it from the wishlist. It reports false when id is not wishlisted.
func (s *Service) MoveToCart(ctx context.Context, sess *session.Session, id string, qty int) bool {
	idx := sess.FindWish(id)
	if idx < 0 {
		return false
	}
	entry := sess.Wishlist[idx]
	p := entry.Product()
	if resolved, ok := s.catalog.FindByID(id); ok {
		p = resolved
	}
	sess.Wishlist = append(sess.Wishlist[:idx], sess.Wishlist[idx+1:]...)
	sess.SaveWishlist(ctx)
	s.AddProduct(ctx, sess, p, qty)
	return true
}

// Wishlist returns a copy of the wishlist.
func (s *Service) Wishlist(sess *session.Session) []domain.WishlistEntry {
	out := make([]domain.WishlistEntry, len(sess.Wishlist))
	copy(out, sess.Wishlist)
	return out
}

func (s *Service) InWishlist(sess *session.Session, id string) bool {
	return sess.FindWish(id) >= 0
}

func (s *Service) resolve(id string) domain.Product {
	if p, ok := s.catalog.FindByID(id); ok {
		return p
	}
	s.logger.Warn("unknown product, using placeholder", zap.String("product", id))
	return domain.Product{
		ID:              id,
		Name:            UnknownProductName,
		Price:           decimal.Zero,
		DiscountPercent: decimal.Zero,
	}
}
