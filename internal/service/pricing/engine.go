package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/session"
)

// ErrInvalidPromo is returned for codes that are not in the catalog.
var ErrInvalidPromo = errors.New("invalid code")

// MinimumOrderError is returned when the subtotal is under the code's minimum.
type MinimumOrderError struct {
	Code    string
	Minimum decimal.Decimal
}

func (e *MinimumOrderError) Error() string {
	return fmt.Sprintf("minimum order of $%s required for %s", e.Minimum.StringFixed(2), e.Code)
}

var promoCatalog = []domain.PromoCode{
	{Code: "SAVE10", Kind: domain.PromoPercentage, Value: decimal.NewFromInt(10), MinOrder: decimal.NewFromInt(50), Description: "10% off orders over $50"},
	{Code: "FRESH20", Kind: domain.PromoPercentage, Value: decimal.NewFromInt(20), MinOrder: decimal.NewFromInt(100), Description: "20% off orders over $100"},
	{Code: "WELCOME5", Kind: domain.PromoFixed, Value: decimal.NewFromInt(5), MinOrder: decimal.NewFromInt(25), Description: "$5 off your order over $25"},
	{Code: "FREESHIP", Kind: domain.PromoFixed, Value: decimal.RequireFromString("4.99"), MinOrder: decimal.NewFromInt(30), Description: "Free standard delivery over $30"},
}

// Engine applies promo codes to sessions and quotes their carts.
type Engine struct {
	promos map[string]domain.PromoCode
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	promos := make(map[string]domain.PromoCode, len(promoCatalog))
	for _, p := range promoCatalog {
		promos[p.Code] = p
	}
	return &Engine{promos: promos, logger: logger.Named("pricing"), now: time.Now}
}

// Promos lists the available codes.
func (e *Engine) Promos() []domain.PromoCode {
	out := make([]domain.PromoCode, len(promoCatalog))
	copy(out, promoCatalog)
	return out
}

// Lookup finds a code case-insensitively.
func (e *Engine) Lookup(code string) (domain.PromoCode, bool) {
	p, ok := e.promos[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}

// ApplyPromoCode validates code against the session's cart and stores it as
// the applied code, replacing any previous one. It returns the discount.
func (e *Engine) ApplyPromoCode(ctx context.Context, sess *session.Session, code string) (decimal.Decimal, error) {
	promo, ok := e.Lookup(code)
	if !ok {
		sess.Notifier().Error(ErrInvalidPromo.Error())
		return decimal.Zero, ErrInvalidPromo
	}
	subtotal := Subtotal(sess.Cart)
	if subtotal.LessThan(promo.MinOrder) {
		err := &MinimumOrderError{Code: promo.Code, Minimum: promo.MinOrder}
		sess.Notifier().Error(err.Error())
		return decimal.Zero, err
	}
	sess.Promo = &domain.AppliedPromo{Code: promo.Code, AppliedAt: e.now().UTC()}
	discount := PromoDiscount(subtotal, &promo).Round(2)
	sess.Notifier().Success(fmt.Sprintf("%s applied: you save $%s", promo.Code, discount.StringFixed(2)))
	e.logger.Debug("promo applied",
		zap.String("owner", sess.Owner.Namespace()),
		zap.String("code", promo.Code),
		zap.String("discount", discount.String()))
	return discount, nil
}

// RemovePromoCode clears the applied code.
func (e *Engine) RemovePromoCode(_ context.Context, sess *session.Session) {
	if sess.Promo == nil {
		return
	}
	sess.Promo = nil
	sess.Notifier().Info("promo code removed")
}

// Applied resolves the session's applied code.
func (e *Engine) Applied(sess *session.Session) *domain.PromoCode {
	if sess.Promo == nil {
		return nil
	}
	p, ok := e.promos[sess.Promo.Code]
	if !ok {
		return nil
	}
	return &p
}

// QuoteSession prices the session's cart with its checkout selection. The
// applied code is re-validated against the current subtotal.
func (e *Engine) QuoteSession(sess *session.Session) Breakdown {
	var tier domain.DeliveryTier
	if sess.Checkout.TimeSlot != nil {
		tier = sess.Checkout.TimeSlot.Tier
	}
	return Quote(sess.Cart, e.Applied(sess), tier, sess.Checkout.Tip)
}
