package order

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
	"grocery-commerce/internal/session"
)

var (
	// ErrEmptyOrder is returned when there is nothing in the cart to order.
	ErrEmptyOrder = errors.New("cart is empty")
	// ErrUnknownStatus is returned for status values outside the lifecycle.
	ErrUnknownStatus = errors.New("unknown order status")
)

// TransitionError reports a status change the lifecycle does not allow.
type TransitionError struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// Details are the checkout values captured on the order.
type Details struct {
	Address              domain.Address
	TimeSlot             domain.TimeSlot
	PaymentRef           string
	PaymentToken         string
	PromoCode            string
	DeliveryInstructions string
	Subtotal             decimal.Decimal
	Discount             decimal.Decimal
	Tax                  decimal.Decimal
	DeliveryFee          decimal.Decimal
	Tip                  decimal.Decimal
	Total                decimal.Decimal
	Status               domain.OrderStatus
}

// Service owns the session's append-only order log. Callers hold the session lock.
type Service struct {
	logger *zap.Logger
	now    func() time.Time
}

func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger.Named("order"), now: time.Now}
}

// AddOrder snapshots the cart into a new order, appends it to the log and
// clears the cart.
func (s *Service) AddOrder(ctx context.Context, sess *session.Session, in Details) (*domain.Order, error) {
	if len(sess.Cart) == 0 {
		return nil, ErrEmptyOrder
	}
	status := normalize(string(in.Status))
	if status == "" {
		status = domain.OrderStatusConfirmed
	}
	if _, ok := rank[status]; !ok && status != domain.OrderStatusCancelled {
		return nil, ErrUnknownStatus
	}

	now := s.now().UTC()
	o := domain.Order{
		ID:                   newOrderID(),
		CreatedAt:            now,
		UpdatedAt:            now,
		Items:                snapshot(sess.Cart),
		Address:              in.Address,
		TimeSlot:             in.TimeSlot,
		PaymentRef:           in.PaymentRef,
		PaymentToken:         in.PaymentToken,
		PromoCode:            in.PromoCode,
		DeliveryInstructions: in.DeliveryInstructions,
		Subtotal:             in.Subtotal,
		Discount:             in.Discount,
		Tax:                  in.Tax,
		DeliveryFee:          in.DeliveryFee,
		Tip:                  in.Tip,
		Total:                in.Total,
		Status:               status,
	}
	sess.Orders = append(sess.Orders, o)
	sess.SaveOrders(ctx)

	sess.Cart = nil
	sess.Promo = nil
	sess.SaveCart(ctx)

	s.logger.Info("order placed",
		zap.String("order", o.ID),
		zap.String("owner", sess.Owner.Namespace()),
		zap.String("total", o.Total.String()))
	sess.Notifier().Success(fmt.Sprintf("Order %s placed successfully", o.ID))
	return &o, nil
}

// Orders returns every order, newest first.
func (s *Service) Orders(sess *session.Session) []domain.Order {
	out := make([]domain.Order, 0, len(sess.Orders))
	for i := len(sess.Orders) - 1; i >= 0; i-- {
		out = append(out, sess.Orders[i])
	}
	return out
}

// ActiveOrders returns orders not yet delivered or cancelled, newest first.
func (s *Service) ActiveOrders(sess *session.Session) []domain.Order {
	var out []domain.Order
	for _, o := range s.Orders(sess) {
		if o.Status.IsActive() {
			out = append(out, o)
		}
	}
	return out
}

// Get returns the order with id or domain.ErrNotFound.
func (s *Service) Get(sess *session.Session, id string) (*domain.Order, error) {
	for i := range sess.Orders {
		if sess.Orders[i].ID == id {
			o := sess.Orders[i]
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

// UpdateStatus moves an order forward through the lifecycle. Any non-terminal
// order may be cancelled; delivered and cancelled orders are final.
func (s *Service) UpdateStatus(ctx context.Context, sess *session.Session, id string, status domain.OrderStatus) (*domain.Order, error) {
	status = normalize(string(status))
	if _, ok := rank[status]; !ok && status != domain.OrderStatusCancelled {
		return nil, ErrUnknownStatus
	}
	idx := -1
	for i := range sess.Orders {
		if sess.Orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	current := sess.Orders[idx].Status
	if !canTransition(current, status) {
		return nil, &TransitionError{From: current, To: status}
	}
	sess.Orders[idx].Status = status
	sess.Orders[idx].UpdatedAt = s.now().UTC()
	sess.SaveOrders(ctx)

	if status == domain.OrderStatusCancelled {
		sess.Notifier().Info(fmt.Sprintf("Order %s cancelled", id))
	} else {
		sess.Notifier().Info(fmt.Sprintf("Order %s is now %s", id, Label(status)))
	}
	o := sess.Orders[idx]
	return &o, nil
}

// Cancel cancels a non-terminal order.
func (s *Service) Cancel(ctx context.Context, sess *session.Session, id string) (*domain.Order, error) {
	return s.UpdateStatus(ctx, sess, id, domain.OrderStatusCancelled)
}

func canTransition(from, to domain.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == domain.OrderStatusCancelled {
		return true
	}
	return rank[to] > rank[normalize(string(from))]
}

// snapshot records each line at its discounted unit price rounded to cents.
// The order's Subtotal is the rounded sum of unrounded line totals, so the sum
// of Price*Quantity over the items may differ from Subtotal by a cent.
func snapshot(lines []domain.CartLine) []domain.OrderItem {
	hundred := decimal.NewFromInt(100)
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		unit := l.Price.Mul(decimal.NewFromInt(1).Sub(l.DiscountPercent.Div(hundred))).Round(2)
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     unit,
			Quantity:  l.Quantity,
		})
	}
	return items
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
