package cart

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/notify"
	"grocery-commerce/internal/repository/kv"
	"grocery-commerce/internal/session"
	"grocery-commerce/internal/store"
)

type stubCatalog map[string]domain.Product

func (c stubCatalog) FindByID(id string) (domain.Product, bool) {
	p, ok := c[id]
	return p, ok
}

var (
	bananas = domain.Product{ID: "p-001", Name: "Organic Bananas", Price: decimal.RequireFromString("2.49")}
	milk    = domain.Product{ID: "p-005", Name: "Whole Milk", Price: decimal.RequireFromString("3.99"), DiscountPercent: decimal.NewFromInt(10)}
)

func newTestSession(t *testing.T, repo kv.Repository) *session.Session {
	t.Helper()
	owner := session.Owner{Kind: session.OwnerGuest, ID: "g1"}
	return session.Open(context.Background(), owner, store.New(repo, owner.Namespace(), nil), notify.Discard{}, nil)
}

func newService() *Service {
	return New(stubCatalog{bananas.ID: bananas, milk.ID: milk}, nil)
}

func TestAddProductTwiceMergesLine(t *testing.T) {
	svc := newService()
	sess := newTestSession(t, kv.NewMemory())
	ctx := context.Background()

	for _, q := range [][2]int{{1, 1}, {2, 5}, {7, 3}} {
		sess.Cart = nil
		svc.AddProduct(ctx, sess, bananas, q[0])
		svc.AddProduct(ctx, sess, bananas, q[1])
		if len(sess.Cart) != 1 {
			t.Fatalf("expected one line, got %d", len(sess.Cart))
		}
		if sess.Cart[0].Quantity != q[0]+q[1] {
			t.Fatalf("expected quantity %d, got %d", q[0]+q[1], sess.Cart[0].Quantity)
		}
	}
}

func TestAddProductCapsLineQuantity(t *testing.T) {
	svc := newService()
	sess := newTestSession(t, kv.NewMemory())
	ctx := context.Background()

	svc.AddProduct(ctx, sess, bananas, 1)
	line := svc.AddProduct(ctx, sess, bananas, math.MaxInt)
	if line.Quantity != MaxLineQuantity {
		t.Fatalf("expected quantity capped at %d, got %d", MaxLineQuantity, line.Quantity)
	}
	line = svc.AddProduct(ctx, sess, bananas, 5)
	if line.Quantity != MaxLineQuantity {
		t.Fatalf("expected quantity to stay at %d, got %d", MaxLineQuantity, line.Quantity)
	}

	sess.Cart = nil
	if line := svc.AddProduct(ctx, sess, milk, math.MaxInt); line.Quantity != MaxLineQuantity {
		t.Fatalf("expected new line capped at %d, got %d", MaxLineQuantity, line.Quantity)
	}
	svc.UpdateItem(ctx, sess, milk.ID, math.MaxInt)
	if sess.Cart[0].Quantity != MaxLineQuantity {
		t.Fatalf("expected update capped at %d, got %d", MaxLineQuantity, sess.Cart[0].Quantity)
	}
}

func TestAddProductTreatsNonPositiveQuantityAsOne(t *testing.T) {
	svc := newService()
	sess := newTestSession(t, kv.NewMemory())
	line := svc.AddProduct(context.Background(), sess, bananas, 0)
	if line.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", line.Quantity)
	}
}

func TestAddProductByIDUnknownUsesPlaceholder(t *testing.T) {
	svc := newService()
	sess := newTestSession(t, kv.NewMemory())
	line := svc.AddProductByID(context.Background(), sess, "p-999", 2)
	if line.Name != UnknownProductName || !line.Price.IsZero() {
		t.Fatalf("expected zero-price placeholder, got %+v", line)
	}
	if line.ProductID != "p-999" || line.Quantity != 2 {
		t.Fatalf("unexpected placeholder line %+v", line)
	}
}

func TestUpdateItem(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, qty := range []int{0, -3} {
		sess := newTestSession(t, kv.NewMemory())
		svc.AddProduct(ctx, sess, bananas, 2)
		svc.UpdateItem(ctx, sess, bananas.ID, qty)
		if len(sess.Cart) != 0 {
			t.Fatalf("expected qty %d to remove the line, got %+v", qty, sess.Cart)
		}
	}

	sess := newTestSession(t, kv.NewMemory())
	svc.AddProduct(ctx, sess, bananas, 2)
	svc.UpdateItem(ctx, sess, bananas.ID, 5)
	if sess.Cart[0].Quantity != 5 {
		t.Fatalf("expected quantity overwritten to 5, got %d", sess.Cart[0].Quantity)
	}
	svc.UpdateItem(ctx, sess, "p-404", 3)
	if len(sess.Cart) != 1 {
		t.Fatalf("expected unknown id update to be a no-op")
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	sess := newTestSession(t, kv.NewMemory())
	svc.AddProduct(ctx, sess, bananas, 1)
	svc.AddProduct(ctx, sess, milk, 2)

	svc.Remove(ctx, sess, "p-404")
	if len(sess.Cart) != 2 {
		t.Fatalf("expected removing unknown id to be a no-op")
	}
	svc.Remove(ctx, sess, bananas.ID)
	if len(sess.Cart) != 1 || sess.Cart[0].ProductID != milk.ID {
		t.Fatalf("unexpected cart after remove %+v", sess.Cart)
	}
	if got := svc.ItemCount(sess); got != 2 {
		t.Fatalf("expected item count 2, got %d", got)
	}

	sess.Promo = &domain.AppliedPromo{Code: "SAVE10"}
	svc.Clear(ctx, sess)
	if len(sess.Cart) != 0 || sess.Promo != nil {
		t.Fatalf("expected empty cart without promo, got %+v %+v", sess.Cart, sess.Promo)
	}
}

func TestCartPersistsAndEmptyDeletesKey(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	repo := kv.NewMemory()
	sess := newTestSession(t, repo)
	svc.AddProduct(ctx, sess, bananas, 2)
	svc.AddProduct(ctx, sess, milk, 3)

	reloaded := newTestSession(t, repo)
	if len(reloaded.Cart) != 2 {
		t.Fatalf("expected 2 persisted lines, got %d", len(reloaded.Cart))
	}
	for i, l := range reloaded.Cart {
		if l.ProductID != sess.Cart[i].ProductID || l.Quantity != sess.Cart[i].Quantity {
			t.Fatalf("line %d mismatch: %+v vs %+v", i, l, sess.Cart[i])
		}
	}

	svc.Clear(ctx, sess)
	ok, err := sess.Store.Has(ctx, store.KeyCart)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if ok {
		t.Fatalf("expected cart key removed once empty")
	}
}

func TestToggleWishlistTwiceRemoves(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	sess := newTestSession(t, kv.NewMemory())

	if !svc.ToggleWishlist(ctx, sess, bananas) {
		t.Fatalf("expected first toggle to add")
	}
	if !svc.InWishlist(sess, bananas.ID) {
		t.Fatalf("expected bananas wishlisted")
	}
	if svc.ToggleWishlist(ctx, sess, bananas) {
		t.Fatalf("expected second toggle to remove")
	}
	if svc.InWishlist(sess, bananas.ID) {
		t.Fatalf("expected bananas not wishlisted")
	}
}

func TestMoveToCart(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	sess := newTestSession(t, kv.NewMemory())

	if svc.MoveToCart(ctx, sess, milk.ID, 2) {
		t.Fatalf("expected move of absent entry to be a no-op")
	}
	if len(sess.Cart) != 0 {
		t.Fatalf("expected empty cart, got %+v", sess.Cart)
	}

	svc.ToggleWishlistByID(ctx, sess, milk.ID)
	if !svc.MoveToCart(ctx, sess, milk.ID, 4) {
		t.Fatalf("expected move to succeed")
	}
	if svc.InWishlist(sess, milk.ID) {
		t.Fatalf("expected milk removed from wishlist")
	}
	if len(sess.Cart) != 1 || sess.Cart[0].Quantity != 4 {
		t.Fatalf("expected one line with qty 4, got %+v", sess.Cart)
	}
}

func TestMutationsNotify(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	sess := newTestSession(t, kv.NewMemory())

	svc.AddProduct(ctx, sess, bananas, 1)
	svc.UpdateItem(ctx, sess, bananas.ID, 3)
	svc.Remove(ctx, sess, bananas.ID)
	svc.ToggleWishlist(ctx, sess, milk)

	msgs := sess.DrainNotifications()
	want := []string{
		"Organic Bananas added to cart",
		"Organic Bananas quantity updated to 3",
		"Organic Bananas removed from cart",
		"Whole Milk added to wishlist",
	}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d notifications, got %+v", len(want), msgs)
	}
	for i, m := range msgs {
		if m.Text != want[i] {
			t.Fatalf("notification %d: expected %q, got %q", i, want[i], m.Text)
		}
	}
}
