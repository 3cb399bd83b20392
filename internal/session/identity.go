package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrGuest is returned for operations that need a signed-in user.
	ErrGuest = errors.New("sign in required")

	ErrOTPNotRequested = errors.New("no verification code requested")
	ErrOTPExpired      = errors.New("verification code expired")
	ErrOTPMismatch     = errors.New("verification code does not match")
)

// Channel is a contact field that can be verified by one-time code.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// IdentityConfig tunes token lifetimes and the simulated auth latency.
type IdentityConfig struct {
	Secret      []byte
	GuestTTL    time.Duration
	CustomerTTL time.Duration
	Delay       time.Duration
	OTPTTL      time.Duration
	PasswordMin int
}

// Identity associates requests with a guest or a registered customer.
type Identity struct {
	reg    *Registry
	index  *store.Store
	stores func(namespace string) *store.Store
	tokens *tokenManager
	otp    *otpManager
	cfg    IdentityConfig
	logger *zap.Logger
	now    func() time.Time

	// registerMu serializes the email index check-then-set.
	registerMu sync.Mutex
}

// NewIdentity keeps the email index under the "accounts" namespace and each
// customer's profile in the customer's own namespace.
func NewIdentity(reg *Registry, cfg IdentityConfig, logger *zap.Logger) (*Identity, error) {
	if len(cfg.Secret) == 0 {
		return nil, errTokenSecret
	}
	if cfg.GuestTTL == 0 {
		cfg.GuestTTL = 3 * time.Hour
	}
	if cfg.CustomerTTL == 0 {
		cfg.CustomerTTL = 24 * time.Hour
	}
	if cfg.OTPTTL == 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	if cfg.PasswordMin == 0 {
		cfg.PasswordMin = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	reg.SetIdleTTL(cfg.GuestTTL)
	return &Identity{
		reg:    reg,
		index:  reg.Store("accounts"),
		stores: reg.Store,
		tokens: newTokenManager(cfg.Secret, now),
		otp:    newOTPManager(cfg.OTPTTL, 5, now),
		cfg:    cfg,
		logger: logger.Named("identity"),
		now:    now,
	}, nil
}

// IssueGuest creates a fresh guest owner and its access token.
func (i *Identity) IssueGuest() (string, Owner, error) {
	owner := Owner{Kind: OwnerGuest, ID: uuid.NewString()}
	token, err := i.tokens.Issue(owner, i.cfg.GuestTTL)
	if err != nil {
		return "", Owner{}, err
	}
	return token, owner, nil
}

// Lookup resolves a bearer token to its owner.
func (i *Identity) Lookup(token string) (Owner, error) {
	owner, ok := i.tokens.Validate(strings.TrimSpace(token))
	if !ok {
		return Owner{}, ErrInvalidToken
	}
	return owner, nil
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates a customer account and returns its profile.
func (i *Identity) Register(ctx context.Context, in RegisterInput) (*domain.Profile, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.New("valid email required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("name required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, i.cfg.PasswordMin); err != nil {
		return nil, err
	}
	if err := wait(ctx, i.cfg.Delay); err != nil {
		return nil, err
	}

	i.registerMu.Lock()
	defer i.registerMu.Unlock()

	var existing string
	ok, err := i.index.Load(ctx, emailKey(email), &existing)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	profile := domain.Profile{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hashed),
		CreatedAt:    i.now().UTC(),
	}
	st := i.stores(Owner{Kind: OwnerCustomer, ID: profile.ID}.Namespace())
	if err := st.Save(ctx, store.KeyRegisteredUser, profile); err != nil {
		return nil, fmt.Errorf("save registered user: %w", err)
	}
	if err := i.index.Save(ctx, emailKey(email), profile.ID); err != nil {
		return nil, fmt.Errorf("save email index: %w", err)
	}
	i.logger.Info("customer registered", zap.String("customer", profile.ID))

	profile.PasswordHash = ""
	return &profile, nil
}

// Login validates credentials, records the session user and issues a token.
func (i *Identity) Login(ctx context.Context, email, password string) (*domain.Profile, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)
	if err := wait(ctx, i.cfg.Delay); err != nil {
		return nil, "", err
	}

	var customerID string
	ok, err := i.index.Load(ctx, emailKey(email), &customerID)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}
	owner := Owner{Kind: OwnerCustomer, ID: customerID}
	st := i.stores(owner.Namespace())

	var registered domain.Profile
	ok, err = st.Load(ctx, store.KeyRegisteredUser, &registered)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(registered.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	sessionUser := registered
	sessionUser.PasswordHash = ""
	if err := st.Save(ctx, store.KeyUser, sessionUser); err != nil {
		i.logger.Warn("save session user failed", zap.Error(err))
	}
	token, err := i.tokens.Issue(owner, i.cfg.CustomerTTL)
	if err != nil {
		return nil, "", err
	}
	profile, err := i.Profile(ctx, owner)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

// AdoptGuest moves the guest session's cart and wishlist into the customer's
// session and returns the customer session.
func (i *Identity) AdoptGuest(ctx context.Context, guest, customer Owner) *Session {
	cs := i.reg.Get(ctx, customer)
	if !guest.IsGuest() || customer.IsGuest() {
		return cs
	}
	gs := i.reg.Get(ctx, guest)
	gs.Lock()
	cs.Lock()
	cs.Adopt(ctx, gs)
	cs.Unlock()
	gs.Unlock()
	i.reg.Forget(guest)
	return cs
}

// Logout clears the session user; the cart and wishlist stay with the account.
func (i *Identity) Logout(ctx context.Context, owner Owner) error {
	if owner.IsGuest() {
		return nil
	}
	return i.stores(owner.Namespace()).Remove(ctx, store.KeyUser)
}

// Profile returns the session user with its overrides applied.
func (i *Identity) Profile(ctx context.Context, owner Owner) (*domain.Profile, error) {
	if owner.IsGuest() {
		return nil, ErrGuest
	}
	st := i.stores(owner.Namespace())
	var p domain.Profile
	ok, err := st.Load(ctx, store.KeyUser, &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		ok, err = st.Load(ctx, store.KeyRegisteredUser, &p)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrNotFound
		}
	}
	var overrides domain.ProfileOverrides
	if _, err := st.Load(ctx, store.KeyUserProfile, &overrides); err != nil {
		return nil, err
	}
	merged := overrides.Apply(p)
	merged.PasswordHash = ""
	return &merged, nil
}

// UpdateProfile merges in onto the stored overrides. Changing a contact field
// resets its verified flag.
func (i *Identity) UpdateProfile(ctx context.Context, owner Owner, in domain.ProfileOverrides) (*domain.Profile, error) {
	if owner.IsGuest() {
		return nil, ErrGuest
	}
	current, err := i.Profile(ctx, owner)
	if err != nil {
		return nil, err
	}
	st := i.stores(owner.Namespace())
	var overrides domain.ProfileOverrides
	if _, err := st.Load(ctx, store.KeyUserProfile, &overrides); err != nil {
		return nil, err
	}
	if in.Name != nil {
		overrides.Name = in.Name
	}
	if in.Avatar != nil {
		overrides.Avatar = in.Avatar
	}
	if in.Phone != nil && *in.Phone != current.Phone {
		unverified := false
		overrides.Phone = in.Phone
		overrides.PhoneVerified = &unverified
	}
	if err := st.Save(ctx, store.KeyUserProfile, overrides); err != nil {
		return nil, err
	}
	return i.Profile(ctx, owner)
}

// RequestOTP issues a one-time code for verifying a contact channel. The code
// is returned for delivery by the caller.
func (i *Identity) RequestOTP(ctx context.Context, owner Owner, ch Channel) (string, error) {
	if owner.IsGuest() {
		return "", ErrGuest
	}
	if ch != ChannelEmail && ch != ChannelPhone {
		return "", fmt.Errorf("unsupported channel %q", ch)
	}
	if _, err := i.Profile(ctx, owner); err != nil {
		return "", err
	}
	return i.otp.Issue(otpKey(owner, ch))
}

// VerifyOTP checks code and marks the channel verified.
func (i *Identity) VerifyOTP(ctx context.Context, owner Owner, ch Channel, code string) (*domain.Profile, error) {
	if owner.IsGuest() {
		return nil, ErrGuest
	}
	if err := i.otp.Verify(otpKey(owner, ch), strings.TrimSpace(code)); err != nil {
		return nil, err
	}
	st := i.stores(owner.Namespace())
	var overrides domain.ProfileOverrides
	if _, err := st.Load(ctx, store.KeyUserProfile, &overrides); err != nil {
		return nil, err
	}
	verified := true
	switch ch {
	case ChannelEmail:
		overrides.EmailVerified = &verified
	case ChannelPhone:
		overrides.PhoneVerified = &verified
	}
	if err := st.Save(ctx, store.KeyUserProfile, overrides); err != nil {
		return nil, err
	}
	return i.Profile(ctx, owner)
}

func emailKey(email string) string {
	return "email:" + email
}

func otpKey(owner Owner, ch Channel) string {
	return owner.Namespace() + ":" + string(ch)
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
