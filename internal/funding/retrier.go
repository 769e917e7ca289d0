package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/transcrypt/transcrypt/internal/stellar"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = time.Second
	defaultSettleDelay  = 2 * time.Second
)

// RetrierConfig bounds the retry loop. Zero values fall back to the defaults
// (3 attempts, 1s initial backoff, 2s settle delay).
type RetrierConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	SettleDelay  time.Duration
}

// Retrier drives the ledger gateway until an address is funded or the attempt
// budget runs out. Gateway failures are absorbed into the attempt history;
// EnsureFunded always returns a completed Outcome and never an error.
type Retrier struct {
	gateway      stellar.Gateway
	maxAttempts  int
	initialDelay time.Duration
	settleDelay  time.Duration
	logger       *slog.Logger

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// NewRetrier builds a retrier over the provided gateway.
func NewRetrier(gateway stellar.Gateway, cfg RetrierConfig, logger *slog.Logger) *Retrier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaultInitialDelay
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	return &Retrier{
		gateway:      gateway,
		maxAttempts:  cfg.MaxAttempts,
		initialDelay: cfg.InitialDelay,
		settleDelay:  cfg.SettleDelay,
		logger:       logger,
		sleep:        sleepContext,
		jitter:       rand.Float64,
	}
}

// EnsureFunded validates the address, short-circuits when it already holds a
// balance, and otherwise requests faucet funding with bounded attempts,
// verifying after each one. The returned outcome is terminal.
func (r *Retrier) EnsureFunded(ctx context.Context, address string) Outcome {
	outcome := Outcome{Address: address}

	if !stellar.IsValidAddress(address) {
		outcome.Err = ErrKindInvalidAddress
		outcome.Message = "address failed validation"
		return outcome
	}

	// Never re-fund an account that already holds a balance.
	state, err := r.gateway.FetchAccount(ctx, address)
	if err == nil && state.Funded() {
		outcome.Funded = true
		outcome.FinalBalance = state.Balance
		outcome.Message = "account already funded"
		return outcome
	}
	if ctx.Err() != nil {
		outcome.Err = ErrKindTimeout
		outcome.Message = "deadline elapsed before funding started"
		return outcome
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		started := time.Now()
		rec := AttemptResult{Number: attempt}
		record := func() {
			rec.Elapsed = time.Since(started)
			outcome.Attempts = append(outcome.Attempts, rec)
		}

		if err := r.gateway.RequestFunding(ctx, address); err != nil {
			if errors.Is(err, stellar.ErrNoFaucet) {
				rec.Err = ErrKindFundingFailed
				rec.Detail = err.Error()
				record()
				outcome.Err = ErrKindFundingFailed
				outcome.Message = err.Error()
				return outcome
			}
			if ctx.Err() != nil {
				rec.Err = ErrKindTimeout
				rec.Detail = err.Error()
				record()
				outcome.Err = ErrKindTimeout
				outcome.Message = "deadline elapsed during funding request"
				return outcome
			}
			rec.Err = ErrKindTransient
			rec.Detail = err.Error()
			r.warn("funding request failed", address, attempt, err)
			record()
			if !r.backoff(ctx, &outcome, attempt) {
				return outcome
			}
			continue
		}

		// Give the network a moment to propagate state before verifying.
		if err := r.sleep(ctx, r.settleDelay); err != nil {
			rec.Err = ErrKindTimeout
			record()
			outcome.Err = ErrKindTimeout
			outcome.Message = "deadline elapsed during settle delay"
			return outcome
		}

		state, err := r.gateway.FetchAccount(ctx, address)
		switch {
		case err != nil && ctx.Err() != nil:
			rec.Err = ErrKindTimeout
			rec.Detail = err.Error()
			record()
			outcome.Err = ErrKindTimeout
			outcome.Message = "deadline elapsed during verification"
			return outcome
		case err != nil:
			rec.Err = ErrKindTransient
			rec.Detail = err.Error()
			r.warn("funding verification failed", address, attempt, err)
		case state.Funded():
			rec.Succeeded = true
			record()
			outcome.Funded = true
			outcome.FinalBalance = state.Balance
			outcome.Message = fmt.Sprintf("funded on attempt %d", attempt)
			return outcome
		default:
			rec.Detail = "funding request accepted but account still unfunded"
		}

		record()
		if !r.backoff(ctx, &outcome, attempt) {
			return outcome
		}
	}

	outcome.Err = ErrKindFundingFailed
	outcome.Message = fmt.Sprintf("account not funded after %d attempts", r.maxAttempts)
	return outcome
}

// backoff sleeps before the next attempt. It reports false when the retry
// sequence must stop, either because the budget is exhausted or the context
// expired, in which case the outcome is finalized.
func (r *Retrier) backoff(ctx context.Context, outcome *Outcome, attempt int) bool {
	if attempt >= r.maxAttempts {
		return true // no delay after the final attempt; the loop exits on its own
	}
	if err := r.sleep(ctx, r.backoffDelay(attempt)); err != nil {
		outcome.Err = ErrKindTimeout
		outcome.Message = "deadline elapsed during backoff"
		return false
	}
	return true
}

// backoffDelay computes the pause after the given attempt: exponential growth
// from the initial delay with 50%-150% jitter to desynchronize concurrent
// retriers hitting the same faucet.
func (r *Retrier) backoffDelay(attempt int) time.Duration {
	scale := math.Pow(2, float64(attempt-1)) * (0.5 + r.jitter())
	return time.Duration(float64(r.initialDelay) * scale)
}

func (r *Retrier) warn(msg, address string, attempt int, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(msg,
		slog.String("address", address),
		slog.Int("attempt", attempt),
		slog.Any("error", err),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
