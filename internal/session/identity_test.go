package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/repository/kv"
)

func newTestIdentity(t *testing.T) *Identity {
	t.Helper()
	reg := NewRegistry(kv.NewMemory(), nil, nil)
	id, err := NewIdentity(reg, IdentityConfig{Secret: []byte("test-secret")}, nil)
	if err != nil {
		t.Fatalf("new identity: %v", err)
	}
	return id
}

func register(t *testing.T, id *Identity) *domain.Profile {
	t.Helper()
	p, err := id.Register(context.Background(), RegisterInput{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "Secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return p
}

func TestNewIdentityRequiresSecret(t *testing.T) {
	_, err := NewIdentity(NewRegistry(kv.NewMemory(), nil, nil), IdentityConfig{}, nil)
	if !errors.Is(err, errTokenSecret) {
		t.Fatalf("expected errTokenSecret, got %v", err)
	}
}

func TestGuestTokenRoundTrip(t *testing.T) {
	id := newTestIdentity(t)
	token, owner, err := id.IssueGuest()
	if err != nil {
		t.Fatalf("issue guest: %v", err)
	}
	got, err := id.Lookup(token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != owner || !got.IsGuest() {
		t.Fatalf("expected %+v, got %+v", owner, got)
	}
	if _, err := id.Lookup(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	id := newTestIdentity(t)
	token, _, err := id.IssueGuest()
	if err != nil {
		t.Fatalf("issue guest: %v", err)
	}
	id.tokens.now = func() time.Time { return time.Now().Add(4 * time.Hour) }
	if _, err := id.Lookup(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected guest token to expire after 3h, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	id := newTestIdentity(t)
	ctx := context.Background()
	cases := []RegisterInput{
		{Name: "A", Email: "not-an-email", Password: "Secret123"},
		{Name: "", Email: "a@example.com", Password: "Secret123"},
		{Name: "A", Email: "a@example.com", Password: "short1A"},
		{Name: "A", Email: "a@example.com", Password: "alllowercase1"},
	}
	for _, in := range cases {
		if _, err := id.Register(ctx, in); err == nil {
			t.Fatalf("expected error for %+v", in)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	id := newTestIdentity(t)
	register(t, id)
	_, err := id.Register(context.Background(), RegisterInput{Name: "Other", Email: "ada@example.com", Password: "Secret123"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginIssuesCustomerToken(t *testing.T) {
	id := newTestIdentity(t)
	registered := register(t, id)
	if registered.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped")
	}

	profile, token, err := id.Login(context.Background(), " ada@example.com ", "Secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if profile.ID != registered.ID || profile.Name != "Ada Lovelace" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	owner, err := id.Lookup(token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if owner.Kind != OwnerCustomer || owner.ID != registered.ID {
		t.Fatalf("unexpected owner %+v", owner)
	}

	if _, _, err := id.Login(context.Background(), "ada@example.com", "Wrong1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := id.Login(context.Background(), "nobody@example.com", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLoginHonorsContextCancellation(t *testing.T) {
	id := newTestIdentity(t)
	id.cfg.Delay = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := id.Login(ctx, "ada@example.com", "Secret123"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestUpdateProfileResetsPhoneVerification(t *testing.T) {
	id := newTestIdentity(t)
	ctx := context.Background()
	p := register(t, id)
	owner := Owner{Kind: OwnerCustomer, ID: p.ID}

	code, err := id.RequestOTP(ctx, owner, ChannelPhone)
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	verified, err := id.VerifyOTP(ctx, owner, ChannelPhone, code)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if !verified.PhoneVerified {
		t.Fatalf("expected phone verified")
	}

	name := "Ada King"
	phone := "+1 555 0100"
	updated, err := id.UpdateProfile(ctx, owner, domain.ProfileOverrides{Name: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != name || updated.Phone != phone {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if updated.PhoneVerified {
		t.Fatalf("expected phone verification reset after change")
	}
	if updated.Email != "ada@example.com" {
		t.Fatalf("expected email untouched, got %q", updated.Email)
	}
}

func TestVerifyOTPFailures(t *testing.T) {
	id := newTestIdentity(t)
	ctx := context.Background()
	p := register(t, id)
	owner := Owner{Kind: OwnerCustomer, ID: p.ID}

	if _, err := id.VerifyOTP(ctx, owner, ChannelEmail, "123456"); !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("expected ErrOTPNotRequested, got %v", err)
	}
	code, err := id.RequestOTP(ctx, owner, ChannelEmail)
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	if _, err := id.VerifyOTP(ctx, owner, ChannelEmail, wrong); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}

	id.otp.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	if _, err := id.VerifyOTP(ctx, owner, ChannelEmail, code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestGuestCannotReadProfile(t *testing.T) {
	id := newTestIdentity(t)
	if _, err := id.Profile(context.Background(), Owner{Kind: OwnerGuest, ID: "g"}); !errors.Is(err, ErrGuest) {
		t.Fatalf("expected ErrGuest, got %v", err)
	}
}

func TestAdoptGuestMovesCart(t *testing.T) {
	id := newTestIdentity(t)
	ctx := context.Background()
	p := register(t, id)
	_, guest, err := id.IssueGuest()
	if err != nil {
		t.Fatalf("issue guest: %v", err)
	}
	gs := id.reg.Get(ctx, guest)
	gs.Cart = []domain.CartLine{line("p-001", 2)}

	cs := id.AdoptGuest(ctx, guest, Owner{Kind: OwnerCustomer, ID: p.ID})
	if len(cs.Cart) != 1 || cs.Cart[0].Quantity != 2 {
		t.Fatalf("expected adopted line, got %+v", cs.Cart)
	}
	if len(gs.Cart) != 0 {
		t.Fatalf("expected guest cart emptied, got %+v", gs.Cart)
	}
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	id := newTestIdentity(t)
	const attempts = 6
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := id.Register(context.Background(), RegisterInput{
				Name: "Ada", Email: "race@example.com", Password: "Secret123",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case !errors.Is(err, ErrEmailTaken):
			t.Fatalf("unexpected error %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one account, got %d", created)
	}
}

func TestNewIdentitySetsRegistryIdleTTL(t *testing.T) {
	reg := NewRegistry(kv.NewMemory(), nil, nil)
	if _, err := NewIdentity(reg, IdentityConfig{Secret: []byte("s"), GuestTTL: 2 * time.Hour}, nil); err != nil {
		t.Fatalf("new identity: %v", err)
	}
	if reg.idleTTL != 2*time.Hour {
		t.Fatalf("expected idle ttl 2h, got %s", reg.idleTTL)
	}
}
