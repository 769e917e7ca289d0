package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/transcrypt/transcrypt/internal/auth"
	"github.com/transcrypt/transcrypt/internal/funding"
	"github.com/transcrypt/transcrypt/internal/keygen"
	"github.com/transcrypt/transcrypt/internal/logging"
	"github.com/transcrypt/transcrypt/internal/provision"
	"github.com/transcrypt/transcrypt/internal/stellar"
)

type stubProvisioner struct {
	report provision.Report
	calls  int
}

func (p *stubProvisioner) Provision(context.Context, []string) provision.Report {
	p.calls++
	return p.report
}

type stubFunder struct {
	outcome funding.Outcome
}

func (f *stubFunder) EnsureFunded(_ context.Context, address string) funding.Outcome {
	out := f.outcome
	out.Address = address
	return out
}

type stubGateway struct {
	funded map[string]int64 // address -> balance; absent means not found
	err    error
}

func (g *stubGateway) FetchAccount(_ context.Context, address string) (stellar.AccountState, error) {
	if g.err != nil {
		return stellar.AccountState{}, g.err
	}
	balance, ok := g.funded[address]
	if !ok {
		return stellar.AccountState{Address: address}, nil
	}
	return stellar.AccountState{Address: address, Exists: true, Balance: balance}, nil
}

func (g *stubGateway) RequestFunding(context.Context, string) error { return nil }

func fundedReport() provision.Report {
	outcomes := make(map[string]funding.Outcome)
	keypairs := make(map[string]keygen.Keypair)
	for _, currency := range DefaultCurrencies {
		kp, _ := keygen.Ed25519Generator{}.NewKeypair(currency)
		keypairs[currency] = kp
		outcomes[currency] = funding.Outcome{Currency: currency, Address: kp.Address, Funded: true, FinalBalance: 100}
	}
	return provision.Report{Outcomes: outcomes, Keypairs: keypairs, AllFunded: true}
}

func newTestService(repo Repository, prov Provisioner, gw stellar.Gateway) *Service {
	return NewService(repo, prov, &stubFunder{}, gw, auth.BcryptVerifier{}, "testnet", logging.Discard())
}

func TestCreateWallet(t *testing.T) {
	repo := NewMemoryRepository()
	prov := &stubProvisioner{report: fundedReport()}
	svc := newTestService(repo, prov, &stubGateway{})

	ctx := context.Background()
	result, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "ana@example.com", Password: "pass123"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if prov.calls != 1 {
		t.Fatalf("expected one provisioning run, got %d", prov.calls)
	}
	if result.Record.FiatBalance != DefaultFiatBalance {
		t.Fatalf("expected starting fiat balance, got %d", result.Record.FiatBalance)
	}
	if got := result.Record.Addresses[FiatCurrency]; got != "inr_wallet_ana_at_example.com" {
		t.Fatalf("unexpected fiat address: %s", got)
	}
	for _, currency := range DefaultCurrencies {
		if result.Record.Addresses[currency] == "" {
			t.Fatalf("missing address for %s", currency)
		}
		if result.Record.Secrets[currency] == "" {
			t.Fatalf("missing secret for %s", currency)
		}
	}
	if result.Record.Credential == "pass123" {
		t.Fatal("credential must be stored hashed")
	}

	stored, err := repo.FindByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("find stored record: %v", err)
	}
	if stored.ID != result.Record.ID {
		t.Fatalf("stored record mismatch: %s vs %s", stored.ID, result.Record.ID)
	}
}

func TestCreateWalletDuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &stubProvisioner{report: fundedReport()}, &stubGateway{})

	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "ana@example.com", Password: "p1"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "ana@example.com", Password: "p2"}); !errors.Is(err, ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
}

func TestAccessWallet(t *testing.T) {
	repo := NewMemoryRepository()
	report := fundedReport()
	gw := &stubGateway{funded: map[string]int64{
		report.Keypairs["btc"].Address: 100_000_000,
	}}
	svc := newTestService(repo, &stubProvisioner{report: report}, gw)

	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "ana@example.com", Password: "pass123"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.Access(ctx, "ana@example.com", "pass123")
	if err != nil {
		t.Fatalf("access: %v", err)
	}

	if status := result.Statuses["btc"]; !status.Funded || status.Balance != "10.0000000" {
		t.Fatalf("unexpected btc status: %+v", status)
	}
	if status := result.Statuses[FiatCurrency]; !status.Funded || status.Balance != "10000.00" {
		t.Fatalf("unexpected fiat status: %+v", status)
	}
	// eth and sol addresses are unknown to the stub gateway, hence unfunded.
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", result.Warnings)
	}
	for _, w := range result.Warnings {
		if !strings.Contains(w, "ETH") && !strings.Contains(w, "SOL") {
			t.Fatalf("unexpected warning: %q", w)
		}
	}
}

func TestAccessWalletWrongPassword(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &stubProvisioner{report: fundedReport()}, &stubGateway{})

	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "ana@example.com", Password: "pass123"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Access(ctx, "ana@example.com", "nope"); !errors.Is(err, auth.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if _, err := svc.Access(ctx, "ghost@example.com", "pass123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckAccountRejectsInvalidAddress(t *testing.T) {
	svc := newTestService(NewMemoryRepository(), &stubProvisioner{}, &stubGateway{})

	if _, err := svc.CheckAccount(context.Background(), "G123"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}
