// Package session holds the explicit commerce session: the single-writer
// state of one guest or signed-in shopper and its write-through persistence.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/notify"
	"grocery-commerce/internal/store"
)

type OwnerKind string

const (
	OwnerGuest    OwnerKind = "guest"
	OwnerCustomer OwnerKind = "customer"
)

// Owner identifies whose state a session carries.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

// Namespace is the store prefix for the owner's keys.
func (o Owner) Namespace() string {
	return string(o.Kind) + ":" + o.ID
}

func (o Owner) IsGuest() bool {
	return o.Kind == OwnerGuest
}

// Session is one shopper's commerce state. Services mutate the exported
// collections; callers must hold the session lock for the whole operation.
type Session struct {
	mu sync.Mutex

	Owner    Owner
	Store    *store.Store
	Cart     []domain.CartLine
	Wishlist []domain.WishlistEntry
	Orders   []domain.Order
	Promo    *domain.AppliedPromo
	Checkout domain.CheckoutSelection

	notes  *notify.Recorder
	logger *zap.Logger
}

// Open loads the owner's cart, wishlist and order log from st. Unreadable collections
// start empty.
func Open(ctx context.Context, owner Owner, st *store.Store, sink notify.Sink, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		Owner:  owner,
		Store:  st,
		notes:  notify.NewRecorder(sink),
		logger: logger.Named("session").With(zap.String("owner", owner.Namespace())),
	}
	s.Cart = store.LoadList[domain.CartLine](ctx, st, store.KeyCart)
	s.Wishlist = store.LoadList[domain.WishlistEntry](ctx, st, store.KeyWishlist)
	s.Orders = store.LoadList[domain.Order](ctx, st, store.KeyOrders)
	return s
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Notifier is the sink services report user-facing outcomes to.
func (s *Session) Notifier() notify.Sink {
	return s.notes
}

// DrainNotifications returns the messages produced since the last drain.
func (s *Session) DrainNotifications() []notify.Message {
	return s.notes.Drain()
}

// SaveCart writes the cart through to the store. A failed write is logged and
// reported; the in-memory cart stays authoritative for this session.
func (s *Session) SaveCart(ctx context.Context) {
	s.persist(ctx, store.KeyCart, func() error {
		return store.SaveList(ctx, s.Store, store.KeyCart, s.Cart)
	})
}

// SaveWishlist writes the wishlist through to the store.
func (s *Session) SaveWishlist(ctx context.Context) {
	s.persist(ctx, store.KeyWishlist, func() error {
		return store.SaveList(ctx, s.Store, store.KeyWishlist, s.Wishlist)
	})
}

// SaveOrders writes the order log through to the store.
func (s *Session) SaveOrders(ctx context.Context) {
	s.persist(ctx, store.KeyOrders, func() error {
		return store.SaveList(ctx, s.Store, store.KeyOrders, s.Orders)
	})
}

func (s *Session) persist(ctx context.Context, key string, write func() error) {
	if err := write(); err != nil {
		s.logger.Warn("persist failed, continuing in memory", zap.String("key", key), zap.Error(err))
		s.notes.Error("could not save your " + key + "; changes are kept for this session only")
	}
}

// FindLine returns the index of the cart line for productID, or -1.
func (s *Session) FindLine(productID string) int {
	for i, l := range s.Cart {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// FindWish returns the index of the wishlist entry for productID, or -1.
func (s *Session) FindWish(productID string) int {
	for i, w := range s.Wishlist {
		if w.ProductID == productID {
			return i
		}
	}
	return -1
}

// Adopt moves a guest's cart and wishlist into s. Lines for products already
// in s are incremented; wishlist entries are unioned. The guest's persisted
// collections are removed.
func (s *Session) Adopt(ctx context.Context, guest *Session) {
	if len(guest.Cart) == 0 && len(guest.Wishlist) == 0 {
		return
	}
	for _, line := range guest.Cart {
		if idx := s.FindLine(line.ProductID); idx >= 0 {
			s.Cart[idx].Quantity = domain.AddQuantity(s.Cart[idx].Quantity, line.Quantity)
			continue
		}
		s.Cart = append(s.Cart, line)
	}
	for _, w := range guest.Wishlist {
		if s.FindWish(w.ProductID) < 0 {
			s.Wishlist = append(s.Wishlist, w)
		}
	}
	if s.Promo == nil && guest.Promo != nil {
		s.Promo = guest.Promo
	}
	s.SaveCart(ctx)
	s.SaveWishlist(ctx)

	guest.Cart = nil
	guest.Wishlist = nil
	guest.Promo = nil
	guest.SaveCart(ctx)
	guest.SaveWishlist(ctx)
	s.logger.Info("adopted guest session", zap.String("guest", guest.Owner.Namespace()))
}
