package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/transcrypt/transcrypt/internal/funding"
	"github.com/transcrypt/transcrypt/internal/keygen"
	"github.com/transcrypt/transcrypt/internal/notification"
)

// Funder drives the faucet for a single address until funded or exhausted.
type Funder interface {
	EnsureFunded(ctx context.Context, address string) funding.Outcome
}

// Provisioner creates and funds one ledger account per requested currency.
// Currencies are independent: one currency failing to fund never aborts the
// batch, it only surfaces in the report.
type Provisioner struct {
	funder   Funder
	keys     keygen.Generator
	notifier notification.Notifier
	logger   *slog.Logger
	timeout  time.Duration
}

// NewProvisioner wires the provisioning orchestrator. timeout bounds the whole
// provisioning request; zero disables the bound.
func NewProvisioner(funder Funder, keys keygen.Generator, notifier notification.Notifier, timeout time.Duration, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		funder:   funder,
		keys:     keys,
		notifier: notifier,
		logger:   logger,
		timeout:  timeout,
	}
}

type slot struct {
	currency string
	keypair  keygen.Keypair
	outcome  funding.Outcome
}

// Provision generates a keypair per currency and attempts to fund each new
// address, fanning the currencies out concurrently. Outcomes land in disjoint
// map slots keyed by currency, so no locking is needed on the result side.
func (p *Provisioner) Provision(ctx context.Context, currencies []string) Report {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	requested := normalize(currencies)
	results := make(chan slot, len(requested))

	for _, currency := range requested {
		go func(currency string) {
			results <- p.provisionOne(ctx, currency)
		}(currency)
	}

	outcomes := make(map[string]funding.Outcome, len(requested))
	keypairs := make(map[string]keygen.Keypair, len(requested))
	for range requested {
		s := <-results
		outcomes[s.currency] = s.outcome
		if s.keypair.Address != "" {
			keypairs[s.currency] = s.keypair
		}
	}

	report := buildReport(outcomes, keypairs)

	for _, warning := range report.Warnings {
		p.notify(ctx, warning)
	}

	return report
}

func (p *Provisioner) provisionOne(ctx context.Context, currency string) slot {
	keypair, err := p.keys.NewKeypair(currency)
	if err != nil {
		return slot{
			currency: currency,
			outcome: funding.Outcome{
				Currency: currency,
				Err:      funding.ErrKindFundingFailed,
				Message:  fmt.Sprintf("generate keypair: %v", err),
			},
		}
	}

	outcome := p.funder.EnsureFunded(ctx, keypair.Address)
	outcome.Currency = currency

	if p.logger != nil {
		// Address is public; the seed never reaches a log line.
		p.logger.Info("currency provisioned",
			slog.String("currency", currency),
			slog.String("address", keypair.Address),
			slog.Bool("funded", outcome.Funded),
			slog.Int("attempts", len(outcome.Attempts)),
		)
	}

	return slot{currency: currency, keypair: keypair, outcome: outcome}
}

func (p *Provisioner) notify(ctx context.Context, warning string) {
	if p.notifier == nil {
		return
	}
	err := p.notifier.Send(ctx, notification.Message{
		Kind: notification.KindFundingFailed,
		Body: warning,
	})
	if err != nil && p.logger != nil {
		p.logger.Warn("send funding notification", slog.Any("error", err))
	}
}

// normalize lower-cases and deduplicates the requested currency set while
// keeping the caller's order for the survivors.
func normalize(currencies []string) []string {
	seen := make(map[string]bool, len(currencies))
	out := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		c := strings.ToLower(strings.TrimSpace(currency))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
