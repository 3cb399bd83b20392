// Package profile manages the signed-in user's address and payment-method
// books. Each book holds at most one default entry.
package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/session"
	"grocery-commerce/internal/store"
)

var ErrGuest = errors.New("sign in to manage saved details")

// AddressInput captures the editable address fields.
type AddressInput struct {
	Type       string `json:"type"`
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"isDefault"`
}

// PaymentInput captures a new payment method. Number is masked on save.
type PaymentInput struct {
	Kind      domain.PaymentKind `json:"kind"`
	Number    string             `json:"number"`
	Holder    string             `json:"holder"`
	IsDefault bool               `json:"isDefault"`
}

type Service struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger.Named("profile")}
}

func (s *Service) Addresses(ctx context.Context, sess *session.Session) []domain.Address {
	return store.LoadList[domain.Address](ctx, sess.Store, store.KeyAddresses)
}

// DefaultAddress returns the default entry, if any.
func (s *Service) DefaultAddress(ctx context.Context, sess *session.Session) (domain.Address, bool) {
	for _, a := range s.Addresses(ctx, sess) {
		if a.IsDefault {
			return a, true
		}
	}
	return domain.Address{}, false
}

// FindAddress looks up an address by id.
func (s *Service) FindAddress(ctx context.Context, sess *session.Session, id string) (domain.Address, error) {
	for _, a := range s.Addresses(ctx, sess) {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Address{}, domain.ErrNotFound
}

// AddAddress appends an address. The first address becomes the default.
func (s *Service) AddAddress(ctx context.Context, sess *session.Session, in AddressInput) (domain.Address, error) {
	if sess.Owner.IsGuest() {
		return domain.Address{}, ErrGuest
	}
	if err := validateAddress(in); err != nil {
		return domain.Address{}, err
	}
	list := s.Addresses(ctx, sess)
	a := addressFromInput(uuid.NewString(), in)
	a.IsDefault = in.IsDefault || len(list) == 0
	if a.IsDefault {
		for i := range list {
			list[i].IsDefault = false
		}
	}
	list = append(list, a)
	if err := store.SaveList(ctx, sess.Store, store.KeyAddresses, list); err != nil {
		return domain.Address{}, err
	}
	sess.Notifier().Success("address saved")
	return a, nil
}

// UpdateAddress replaces the fields of an existing address.
func (s *Service) UpdateAddress(ctx context.Context, sess *session.Session, id string, in AddressInput) (domain.Address, error) {
	if err := validateAddress(in); err != nil {
		return domain.Address{}, err
	}
	list := s.Addresses(ctx, sess)
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return domain.Address{}, domain.ErrNotFound
	}
	updated := addressFromInput(id, in)
	updated.IsDefault = list[idx].IsDefault || in.IsDefault
	if updated.IsDefault {
		for i := range list {
			list[i].IsDefault = false
		}
	}
	list[idx] = updated
	if err := store.SaveList(ctx, sess.Store, store.KeyAddresses, list); err != nil {
		return domain.Address{}, err
	}
	if sess.Checkout.Address != nil && sess.Checkout.Address.ID == id {
		sess.Checkout.Address = &updated
	}
	sess.Notifier().Success("address updated")
	return updated, nil
}

// RemoveAddress deletes an address. When the default is removed the first
// remaining address becomes the default.
func (s *Service) RemoveAddress(ctx context.Context, sess *session.Session, id string) error {
	list := s.Addresses(ctx, sess)
	out := list[:0]
	removedDefault := false
	found := false
	for _, a := range list {
		if a.ID == id {
			found = true
			removedDefault = a.IsDefault
			continue
		}
		out = append(out, a)
	}
	if !found {
		return domain.ErrNotFound
	}
	if removedDefault && len(out) > 0 {
		out[0].IsDefault = true
	}
	if err := store.SaveList(ctx, sess.Store, store.KeyAddresses, out); err != nil {
		return err
	}
	if sess.Checkout.Address != nil && sess.Checkout.Address.ID == id {
		sess.Checkout.Address = nil
	}
	sess.Notifier().Info("address removed")
	return nil
}

// SetDefaultAddress marks id as the only default address.
func (s *Service) SetDefaultAddress(ctx context.Context, sess *session.Session, id string) error {
	list := s.Addresses(ctx, sess)
	found := false
	for i := range list {
		list[i].IsDefault = list[i].ID == id
		found = found || list[i].IsDefault
	}
	if !found {
		return domain.ErrNotFound
	}
	return store.SaveList(ctx, sess.Store, store.KeyAddresses, list)
}

func (s *Service) PaymentMethods(ctx context.Context, sess *session.Session) []domain.PaymentMethod {
	return store.LoadList[domain.PaymentMethod](ctx, sess.Store, store.KeyPaymentMethods)
}

// DefaultPaymentMethod returns the default entry, if any.
func (s *Service) DefaultPaymentMethod(ctx context.Context, sess *session.Session) (domain.PaymentMethod, bool) {
	for _, m := range s.PaymentMethods(ctx, sess) {
		if m.IsDefault {
			return m, true
		}
	}
	return domain.PaymentMethod{}, false
}

// FindPaymentMethod looks up a payment method by id.
func (s *Service) FindPaymentMethod(ctx context.Context, sess *session.Session, id string) (domain.PaymentMethod, error) {
	for _, m := range s.PaymentMethods(ctx, sess) {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.PaymentMethod{}, domain.ErrNotFound
}

// AddPaymentMethod stores a masked payment method. The first one becomes the default.
func (s *Service) AddPaymentMethod(ctx context.Context, sess *session.Session, in PaymentInput) (domain.PaymentMethod, error) {
	if sess.Owner.IsGuest() {
		return domain.PaymentMethod{}, ErrGuest
	}
	kind := domain.PaymentKind(strings.ToLower(strings.TrimSpace(string(in.Kind))))
	var masked string
	switch kind {
	case domain.PaymentCard:
		digits := onlyDigits(in.Number)
		if len(digits) < 12 || len(digits) > 19 {
			return domain.PaymentMethod{}, errors.New("card number must have 12 to 19 digits")
		}
		masked = "**** **** **** " + digits[len(digits)-4:]
	case domain.PaymentUPI:
		id := strings.TrimSpace(in.Number)
		at := strings.Index(id, "@")
		if at < 1 {
			return domain.PaymentMethod{}, errors.New("valid UPI id required")
		}
		masked = maskUPI(id, at)
	case domain.PaymentCOD:
		masked = "Cash on delivery"
	default:
		return domain.PaymentMethod{}, errors.New("payment kind must be card, upi or cod")
	}

	list := s.PaymentMethods(ctx, sess)
	m := domain.PaymentMethod{
		ID:        uuid.NewString(),
		Kind:      kind,
		Masked:    masked,
		Holder:    strings.TrimSpace(in.Holder),
		IsDefault: in.IsDefault || len(list) == 0,
	}
	if m.IsDefault {
		for i := range list {
			list[i].IsDefault = false
		}
	}
	list = append(list, m)
	if err := store.SaveList(ctx, sess.Store, store.KeyPaymentMethods, list); err != nil {
		return domain.PaymentMethod{}, err
	}
	sess.Notifier().Success("payment method saved")
	return m, nil
}

// UpdatePaymentMethod changes the holder name and default flag. The masked
// identifier cannot be edited; add a new method instead.
func (s *Service) UpdatePaymentMethod(ctx context.Context, sess *session.Session, id string, in PaymentInput) (domain.PaymentMethod, error) {
	list := s.PaymentMethods(ctx, sess)
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return domain.PaymentMethod{}, domain.ErrNotFound
	}
	if holder := strings.TrimSpace(in.Holder); holder != "" {
		list[idx].Holder = holder
	}
	if in.IsDefault {
		for i := range list {
			list[i].IsDefault = i == idx
		}
	}
	if err := store.SaveList(ctx, sess.Store, store.KeyPaymentMethods, list); err != nil {
		return domain.PaymentMethod{}, err
	}
	updated := list[idx]
	if sess.Checkout.Payment != nil && sess.Checkout.Payment.ID == id {
		sess.Checkout.Payment = &updated
	}
	sess.Notifier().Success("payment method updated")
	return updated, nil
}

// RemovePaymentMethod deletes a payment method, passing the default on to
// the first remaining entry.
func (s *Service) RemovePaymentMethod(ctx context.Context, sess *session.Session, id string) error {
	list := s.PaymentMethods(ctx, sess)
	out := list[:0]
	removedDefault := false
	found := false
	for _, m := range list {
		if m.ID == id {
			found = true
			removedDefault = m.IsDefault
			continue
		}
		out = append(out, m)
	}
	if !found {
		return domain.ErrNotFound
	}
	if removedDefault && len(out) > 0 {
		out[0].IsDefault = true
	}
	if err := store.SaveList(ctx, sess.Store, store.KeyPaymentMethods, out); err != nil {
		return err
	}
	if sess.Checkout.Payment != nil && sess.Checkout.Payment.ID == id {
		sess.Checkout.Payment = nil
	}
	sess.Notifier().Info("payment method removed")
	return nil
}

// SetDefaultPaymentMethod marks id as the only default payment method.
func (s *Service) SetDefaultPaymentMethod(ctx context.Context, sess *session.Session, id string) error {
	list := s.PaymentMethods(ctx, sess)
	found := false
	for i := range list {
		list[i].IsDefault = list[i].ID == id
		found = found || list[i].IsDefault
	}
	if !found {
		return domain.ErrNotFound
	}
	return store.SaveList(ctx, sess.Store, store.KeyPaymentMethods, list)
}

func validateAddress(in AddressInput) error {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return errors.New("full name required")
	case strings.TrimSpace(in.Line1) == "":
		return errors.New("address line required")
	case strings.TrimSpace(in.City) == "":
		return errors.New("city required")
	case strings.TrimSpace(in.PostalCode) == "":
		return errors.New("postal code required")
	}
	return nil
}

func addressFromInput(id string, in AddressInput) domain.Address {
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = "home"
	}
	return domain.Address{
		ID:         id,
		Type:       typ,
		FullName:   strings.TrimSpace(in.FullName),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Country:    strings.TrimSpace(in.Country),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Phone:      strings.TrimSpace(in.Phone),
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func maskUPI(id string, at int) string {
	name := id[:at]
	if len(name) <= 2 {
		return name + id[at:]
	}
	return name[:2] + strings.Repeat("*", len(name)-2) + id[at:]
}
