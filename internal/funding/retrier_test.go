package funding

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/transcrypt/transcrypt/internal/logging"
	"github.com/transcrypt/transcrypt/internal/stellar"
)

var testAddress = "G" + strings.Repeat("A", 55)

type stubGateway struct {
	fetch func(ctx context.Context, address string) (stellar.AccountState, error)
	fund  func(ctx context.Context, address string) error

	fetchCalls int
	fundCalls  int
}

func (g *stubGateway) FetchAccount(ctx context.Context, address string) (stellar.AccountState, error) {
	g.fetchCalls++
	if g.fetch == nil {
		return stellar.AccountState{Address: address}, nil
	}
	return g.fetch(ctx, address)
}

func (g *stubGateway) RequestFunding(ctx context.Context, address string) error {
	g.fundCalls++
	if g.fund == nil {
		return nil
	}
	return g.fund(ctx, address)
}

// newTestRetrier builds a retrier whose sleeps complete instantly, recording
// the requested delays instead of waiting them out.
func newTestRetrier(gw stellar.Gateway, cfg RetrierConfig, delays *[]time.Duration) *Retrier {
	r := NewRetrier(gw, cfg, logging.Discard())
	r.sleep = func(ctx context.Context, d time.Duration) error {
		if delays != nil {
			*delays = append(*delays, d)
		}
		return ctx.Err()
	}
	r.jitter = func() float64 { return 0.5 }
	return r
}

func TestEnsureFundedInvalidAddress(t *testing.T) {
	gw := &stubGateway{}
	r := newTestRetrier(gw, RetrierConfig{}, nil)

	outcome := r.EnsureFunded(context.Background(), "G123")

	if outcome.Err != ErrKindInvalidAddress {
		t.Fatalf("expected INVALID_ADDRESS, got %q", outcome.Err)
	}
	if len(outcome.Attempts) != 0 {
		t.Fatalf("expected zero attempts, got %d", len(outcome.Attempts))
	}
	if gw.fetchCalls != 0 || gw.fundCalls != 0 {
		t.Fatal("gateway must never see a malformed address")
	}
}

func TestEnsureFundedAlreadyFundedIsIdempotent(t *testing.T) {
	gw := &stubGateway{
		fetch: func(_ context.Context, address string) (stellar.AccountState, error) {
			return stellar.AccountState{Address: address, Exists: true, Balance: 100}, nil
		},
	}
	r := newTestRetrier(gw, RetrierConfig{}, nil)

	for i := 0; i < 2; i++ {
		outcome := r.EnsureFunded(context.Background(), testAddress)
		if !outcome.Funded {
			t.Fatalf("call %d: expected funded", i+1)
		}
		if len(outcome.Attempts) != 0 {
			t.Fatalf("call %d: expected zero attempts, got %d", i+1, len(outcome.Attempts))
		}
		if outcome.FinalBalance != 100 {
			t.Fatalf("call %d: unexpected balance %d", i+1, outcome.FinalBalance)
		}
	}

	if gw.fundCalls != 0 {
		t.Fatalf("expected zero funding requests for a funded account, got %d", gw.fundCalls)
	}
}

func TestEnsureFundedSucceedsAfterRetry(t *testing.T) {
	var verifications int
	gw := &stubGateway{
		fetch: func(_ context.Context, address string) (stellar.AccountState, error) {
			verifications++
			// Pre-check and the first verification see an unfunded account;
			// the second verification sees the deposit.
			if verifications < 3 {
				return stellar.AccountState{Address: address}, nil
			}
			return stellar.AccountState{Address: address, Exists: true, Balance: 500}, nil
		},
	}

	var delays []time.Duration
	r := newTestRetrier(gw, RetrierConfig{MaxAttempts: 3, InitialDelay: time.Second, SettleDelay: 2 * time.Second}, &delays)

	outcome := r.EnsureFunded(context.Background(), testAddress)

	if !outcome.Funded {
		t.Fatalf("expected funded outcome, got %+v", outcome)
	}
	if len(outcome.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(outcome.Attempts))
	}
	if outcome.Attempts[0].Succeeded || !outcome.Attempts[1].Succeeded {
		t.Fatalf("unexpected attempt flags: %+v", outcome.Attempts)
	}
	if outcome.FinalBalance != 500 {
		t.Fatalf("unexpected final balance: %d", outcome.FinalBalance)
	}
	// settle, backoff, settle: the successful attempt needs no backoff after it.
	want := []time.Duration{2 * time.Second, time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("sleep %d: expected %s, got %s", i, want[i], delays[i])
		}
	}
}

func TestEnsureFundedExhaustsAttempts(t *testing.T) {
	gw := &stubGateway{} // fetch always reports not found, funding always accepted

	var delays []time.Duration
	r := newTestRetrier(gw, RetrierConfig{MaxAttempts: 3}, &delays)

	outcome := r.EnsureFunded(context.Background(), testAddress)

	if outcome.Funded {
		t.Fatal("expected unfunded outcome")
	}
	if outcome.Err != ErrKindFundingFailed {
		t.Fatalf("expected FUNDING_FAILED, got %q", outcome.Err)
	}
	if len(outcome.Attempts) != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", len(outcome.Attempts))
	}
	// 3 settle delays plus backoffs after attempts 1 and 2 only.
	if len(delays) != 5 {
		t.Fatalf("expected 5 sleeps, got %v", delays)
	}
}

func TestEnsureFundedRecordsTransientRequestFailures(t *testing.T) {
	gw := &stubGateway{
		fund: func(context.Context, string) error {
			return stellar.ErrTransient
		},
	}
	r := newTestRetrier(gw, RetrierConfig{MaxAttempts: 2}, nil)

	outcome := r.EnsureFunded(context.Background(), testAddress)

	if outcome.Err != ErrKindFundingFailed {
		t.Fatalf("expected FUNDING_FAILED, got %q", outcome.Err)
	}
	if len(outcome.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(outcome.Attempts))
	}
	for _, a := range outcome.Attempts {
		if a.Err != ErrKindTransient {
			t.Fatalf("expected transient attempt error, got %+v", a)
		}
	}
	// A failed funding request skips verification, so only the pre-check hit fetch.
	if gw.fetchCalls != 1 {
		t.Fatalf("expected 1 fetch (pre-check only), got %d", gw.fetchCalls)
	}
}

func TestBackoffDelayBounds(t *testing.T) {
	gw := &stubGateway{}
	r := NewRetrier(gw, RetrierConfig{InitialDelay: time.Second}, logging.Discard())

	for attempt := 1; attempt <= 3; attempt++ {
		for i := 0; i < 50; i++ {
			d := r.backoffDelay(attempt)
			base := time.Duration(1<<(attempt-1)) * time.Second
			if d < base/2 || d > base*3/2 {
				t.Fatalf("attempt %d: delay %s outside [%s, %s]", attempt, d, base/2, base*3/2)
			}
		}
	}
}

func TestEnsureFundedStopsOnDeadline(t *testing.T) {
	gw := &stubGateway{
		fund: func(ctx context.Context, _ string) error {
			<-ctx.Done() // a stuck faucet
			return ctx.Err()
		},
	}
	r := NewRetrier(gw, RetrierConfig{MaxAttempts: 3}, logging.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan Outcome, 1)
	go func() { done <- r.EnsureFunded(ctx, testAddress) }()

	var outcome Outcome
	select {
	case outcome = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("retrier hung past the deadline")
	}

	if outcome.Err != ErrKindTimeout {
		t.Fatalf("expected TIMEOUT, got %q", outcome.Err)
	}
	if len(outcome.Attempts) == 0 || len(outcome.Attempts) >= 3 {
		t.Fatalf("expected truncated attempt history, got %d attempts", len(outcome.Attempts))
	}
}

func TestEnsureFundedStopsWhenNoFaucet(t *testing.T) {
	gw := &stubGateway{
		fund: func(context.Context, string) error {
			return stellar.ErrNoFaucet
		},
	}
	r := newTestRetrier(gw, RetrierConfig{}, nil)

	outcome := r.EnsureFunded(context.Background(), testAddress)

	if outcome.Err != ErrKindFundingFailed {
		t.Fatalf("expected FUNDING_FAILED, got %q", outcome.Err)
	}
	if gw.fundCalls != 1 {
		t.Fatalf("expected a single faucet request, got %d", gw.fundCalls)
	}
	if len(outcome.Attempts) != 1 {
		t.Fatalf("expected one recorded attempt, got %d", len(outcome.Attempts))
	}
}
