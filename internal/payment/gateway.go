// Package payment adapts the external payment-confirmation gateway.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrDismissed means the shopper closed the payment prompt.
	ErrDismissed = errors.New("payment dismissed")
	// ErrUnavailable means the gateway could not be reached.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrDeclined means the gateway refused the charge.
	ErrDeclined = errors.New("payment declined")
)

type ChargeRequest struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
	MethodID  string
}

type Result struct {
	Token  string
	Amount decimal.Decimal
}

// Gateway confirms a charge. Implementations return ErrDismissed when the
// shopper abandons the prompt.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Result, error)
}

// Outcome lets the simulated gateway decide how a charge resolves.
type Outcome func(req ChargeRequest) error

// Simulated approves every charge after a fixed delay unless Outcome says otherwise.
type Simulated struct {
	Delay   time.Duration
	Outcome Outcome
}

func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{Delay: delay}
}

func (s *Simulated) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}
	if !req.Amount.IsPositive() {
		return Result{}, ErrDeclined
	}
	if s.Outcome != nil {
		if err := s.Outcome(req); err != nil {
			return Result{}, err
		}
	}
	return Result{Token: "pay_" + uuid.NewString(), Amount: req.Amount}, nil
}
