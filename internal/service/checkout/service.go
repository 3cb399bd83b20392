// Package checkout drives a session from cart to placed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/payment"
	"grocery-commerce/internal/service/order"
	"grocery-commerce/internal/service/pricing"
	"grocery-commerce/internal/session"
)

var (
	ErrTermsNotAccepted = errors.New("please accept the terms and conditions")
	ErrAddressRequired  = errors.New("select a delivery address")
	ErrTimeSlotRequired = errors.New("select a delivery time slot")
	ErrPaymentRequired  = errors.New("select a payment method")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidTotal     = errors.New("order total must be greater than zero")
	ErrNegativeTip      = errors.New("tip cannot be negative")
	ErrUnknownTimeSlot  = errors.New("unknown time slot")

	// ErrPaymentDismissed and ErrPaymentFailed leave the cart untouched and
	// the checkout at the payment step, so the shopper can retry.
	ErrPaymentDismissed = errors.New("payment was not completed")
	ErrPaymentFailed    = errors.New("payment failed")
)

type addressBook interface {
	DefaultAddress(ctx context.Context, sess *session.Session) (domain.Address, bool)
	FindAddress(ctx context.Context, sess *session.Session, id string) (domain.Address, error)
	DefaultPaymentMethod(ctx context.Context, sess *session.Session) (domain.PaymentMethod, bool)
	FindPaymentMethod(ctx context.Context, sess *session.Session, id string) (domain.PaymentMethod, error)
}

type quoter interface {
	QuoteSession(sess *session.Session) pricing.Breakdown
	Applied(sess *session.Session) *domain.PromoCode
}

type orderPlacer interface {
	AddOrder(ctx context.Context, sess *session.Session, in order.Details) (*domain.Order, error)
}

type Config struct {
	ProcessingDelay time.Duration
	Currency        string
}

// Service coordinates selections, pricing, the payment gateway and the
// order log. Callers hold the session lock.
type Service struct {
	book    addressBook
	pricing quoter
	orders  orderPlacer
	gateway payment.Gateway
	cfg     Config
	logger  *zap.Logger
}

func New(book addressBook, pricing quoter, orders orderPlacer, gateway payment.Gateway, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &Service{
		book:    book,
		pricing: pricing,
		orders:  orders,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger.Named("checkout"),
	}
}

// View is the checkout state returned to clients.
type View struct {
	Selection domain.CheckoutSelection `json:"selection"`
	Step      Step                     `json:"step"`
	StepName  string                   `json:"stepName"`
	Completed []Step                   `json:"completed"`
	Quote     pricing.Breakdown        `json:"quote"`
	CanPlace  bool                     `json:"canPlace"`
}

// State derives the current view of sess. An empty address selection is
// filled with the default address, so a shopper with a saved default starts
// at the time slot step.
func (s *Service) State(ctx context.Context, sess *session.Session) View {
	s.seedAddress(ctx, sess)
	return s.view(sess)
}

func (s *Service) view(sess *session.Session) View {
	step, completed := DeriveStep(sess.Checkout)
	quote := s.pricing.QuoteSession(sess)
	return View{
		Selection: sess.Checkout,
		Step:      step,
		StepName:  step.String(),
		Completed: completed,
		Quote:     quote,
		CanPlace:  s.validate(sess, quote) == nil,
	}
}

func (s *Service) seedAddress(ctx context.Context, sess *session.Session) {
	if sess.Checkout.Address != nil {
		return
	}
	if a, ok := s.book.DefaultAddress(ctx, sess); ok {
		sess.Checkout.Address = &a
	}
}

// Begin resets the selection and pre-selects the default address. The
// payment method is always chosen explicitly.
func (s *Service) Begin(ctx context.Context, sess *session.Session) View {
	sess.Checkout = domain.CheckoutSelection{}
	return s.State(ctx, sess)
}

func (s *Service) SelectAddress(ctx context.Context, sess *session.Session, id string) (View, error) {
	a, err := s.book.FindAddress(ctx, sess, id)
	if err != nil {
		return View{}, err
	}
	sess.Checkout.Address = &a
	return s.State(ctx, sess), nil
}

func (s *Service) SelectTimeSlot(ctx context.Context, sess *session.Session, id string) (View, error) {
	slot, ok := pricing.FindTimeSlot(id)
	if !ok {
		return View{}, ErrUnknownTimeSlot
	}
	sess.Checkout.TimeSlot = &slot
	return s.State(ctx, sess), nil
}

func (s *Service) SelectPayment(ctx context.Context, sess *session.Session, id string) (View, error) {
	m, err := s.book.FindPaymentMethod(ctx, sess, id)
	if err != nil {
		return View{}, err
	}
	sess.Checkout.Payment = &m
	return s.State(ctx, sess), nil
}

func (s *Service) SetInstructions(ctx context.Context, sess *session.Session, text string) View {
	sess.Checkout.DeliveryInstructions = strings.TrimSpace(text)
	return s.State(ctx, sess)
}

func (s *Service) SetTip(ctx context.Context, sess *session.Session, tip decimal.Decimal) (View, error) {
	if tip.IsNegative() {
		return View{}, ErrNegativeTip
	}
	sess.Checkout.Tip = tip.Round(2)
	return s.State(ctx, sess), nil
}

func (s *Service) AcceptTerms(ctx context.Context, sess *session.Session, accepted bool) View {
	sess.Checkout.TermsAccepted = accepted
	return s.State(ctx, sess)
}

// DismissPayment abandons the payment prompt: the payment selection is
// cleared and nothing else changes.
func (s *Service) DismissPayment(ctx context.Context, sess *session.Session) View {
	sess.Checkout.Payment = nil
	sess.Notifier().Info("payment cancelled; choose a payment method to continue")
	return s.State(ctx, sess)
}

// PlaceOrder validates the selection, waits out the processing delay, charges
// the gateway and records the order. Payment failures roll the checkout back
// to the payment step without touching the cart.
func (s *Service) PlaceOrder(ctx context.Context, sess *session.Session) (*domain.Order, error) {
	s.seedAddress(ctx, sess)
	quote := s.pricing.QuoteSession(sess)
	if err := s.validate(sess, quote); err != nil {
		sess.Notifier().Error(err.Error())
		return nil, err
	}
	if err := wait(ctx, s.cfg.ProcessingDelay); err != nil {
		return nil, err
	}

	sel := sess.Checkout
	ref := "chk_" + uuid.NewString()
	res, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		Reference: ref,
		Amount:    quote.Total,
		Currency:  s.cfg.Currency,
		MethodID:  sel.Payment.ID,
	})
	if err != nil {
		sess.Checkout.Payment = nil
		if errors.Is(err, payment.ErrDismissed) {
			s.logger.Info("payment dismissed", zap.String("owner", sess.Owner.Namespace()))
			sess.Notifier().Info("payment was not completed; your cart is unchanged")
			return nil, ErrPaymentDismissed
		}
		s.logger.Warn("payment failed", zap.String("owner", sess.Owner.Namespace()), zap.Error(err))
		sess.Notifier().Error("payment failed; please try again")
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	details := order.Details{
		Address:              *sel.Address,
		TimeSlot:             *sel.TimeSlot,
		PaymentRef:           sel.Payment.Masked,
		PaymentToken:         res.Token,
		DeliveryInstructions: sel.DeliveryInstructions,
		Subtotal:             quote.Subtotal,
		Discount:             quote.Discount,
		Tax:                  quote.Tax,
		DeliveryFee:          quote.DeliveryFee,
		Tip:                  quote.Tip,
		Total:                quote.Total,
	}
	if promo := s.pricing.Applied(sess); promo != nil && quote.Discount.IsPositive() {
		details.PromoCode = promo.Code
	}
	o, err := s.orders.AddOrder(ctx, sess, details)
	if err != nil {
		return nil, err
	}
	sess.Checkout = domain.CheckoutSelection{}
	return o, nil
}

func (s *Service) validate(sess *session.Session, quote pricing.Breakdown) error {
	sel := sess.Checkout
	switch {
	case !sel.TermsAccepted:
		return ErrTermsNotAccepted
	case sel.Address == nil:
		return ErrAddressRequired
	case sel.TimeSlot == nil:
		return ErrTimeSlotRequired
	case sel.Payment == nil:
		return ErrPaymentRequired
	case len(sess.Cart) == 0:
		return ErrEmptyCart
	case !quote.Total.IsPositive():
		return ErrInvalidTotal
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
