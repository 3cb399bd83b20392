package payment

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Breaker guards a Gateway with a circuit breaker and a per-call timeout.
// Dismissals and declines are shopper outcomes and do not trip the breaker.
type Breaker struct {
	next    Gateway
	cb      *gobreaker.CircuitBreaker[Result]
	timeout time.Duration
}

func NewBreaker(next Gateway, timeout time.Duration, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("payment")
	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDismissed) || errors.Is(err, ErrDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &Breaker{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker[Result](settings),
		timeout: timeout,
	}
}

func (b *Breaker) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	res, err := b.cb.Execute(func() (Result, error) {
		callCtx := ctx
		if b.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		return b.next.Charge(callCtx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Result{}, ErrUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Result{}, ErrUnavailable
	}
	return res, err
}
