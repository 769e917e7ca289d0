package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/transcrypt/transcrypt/internal/auth"
	"github.com/transcrypt/transcrypt/internal/funding"
	"github.com/transcrypt/transcrypt/internal/provision"
	"github.com/transcrypt/transcrypt/internal/stellar"
)

// ErrInvalidAddress marks a request carrying a malformed public key.
var ErrInvalidAddress = errors.New("invalid public key")

// Provisioner creates and funds the per-currency accounts of a new wallet.
type Provisioner interface {
	Provision(ctx context.Context, currencies []string) provision.Report
}

// Funder drives the faucet for one address.
type Funder interface {
	EnsureFunded(ctx context.Context, address string) funding.Outcome
}

// Service exposes wallet lifecycle operations: create, access, fund, check.
type Service struct {
	repo        Repository
	provisioner Provisioner
	funder      Funder
	gateway     stellar.Gateway
	verifier    auth.Verifier
	logger      *slog.Logger
	network     string
}

// NewService wires the wallet service with its explicit collaborators.
func NewService(repo Repository, provisioner Provisioner, funder Funder, gateway stellar.Gateway, verifier auth.Verifier, network string, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		provisioner: provisioner,
		funder:      funder,
		gateway:     gateway,
		verifier:    verifier,
		logger:      logger,
		network:     network,
	}
}

// CreateInput captures data required to open a wallet.
type CreateInput struct {
	Name     string
	Email    string
	Password string
}

// CreateResult bundles the stored record with the provisioning report.
type CreateResult struct {
	Record Record
	Report provision.Report
}

// Create provisions crypto accounts for every default currency, opens the
// fiat slot with the starting balance, and persists the wallet record. A
// currency that could not be funded does not fail the creation; it shows up
// in the report's warnings.
func (s *Service) Create(ctx context.Context, input CreateInput) (CreateResult, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return CreateResult{}, fmt.Errorf("name, email, and password are required")
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return CreateResult{}, ErrEmailRegistered
	} else if !errors.Is(err, ErrNotFound) {
		return CreateResult{}, err
	}

	credential, err := s.verifier.Hash(input.Password)
	if err != nil {
		return CreateResult{}, err
	}

	report := s.provisioner.Provision(ctx, DefaultCurrencies)

	record := Record{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Email:       input.Email,
		Credential:  credential,
		Addresses:   make(map[string]string, len(report.Keypairs)+1),
		Secrets:     make(map[string]string, len(report.Keypairs)),
		FiatBalance: DefaultFiatBalance,
		CreatedAt:   time.Now().UTC(),
	}
	for currency, keypair := range report.Keypairs {
		record.Addresses[currency] = keypair.Address
		record.Secrets[currency] = keypair.Seed
	}
	record.Addresses[FiatCurrency] = fiatAddress(input.Email)

	if err := s.repo.Create(ctx, record); err != nil {
		return CreateResult{}, err
	}

	if s.logger != nil {
		s.logger.Info("wallet created",
			slog.String("wallet_id", record.ID),
			slog.String("email", record.Email),
			slog.Bool("all_funded", report.AllFunded),
		)
	}

	return CreateResult{Record: record, Report: report}, nil
}

// CurrencyStatus is the live funding state of one wallet slot.
type CurrencyStatus struct {
	Currency     string
	Network      string
	Address      string
	Funded       bool
	NeedsFunding bool
	Balance      string
	Err          string
}

// AccessResult is the authenticated view of a wallet.
type AccessResult struct {
	Record   Record
	Statuses map[string]CurrencyStatus
	Warnings []string
}

// Access authenticates the caller and reports per-currency funding state,
// querying the ledger live for every crypto slot.
func (s *Service) Access(ctx context.Context, email, password string) (AccessResult, error) {
	record, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return AccessResult{}, err
	}
	if err := s.verifier.Verify(record.Credential, password); err != nil {
		return AccessResult{}, err
	}

	result := AccessResult{
		Record:   record,
		Statuses: make(map[string]CurrencyStatus, len(record.Addresses)),
	}

	for currency, address := range record.Addresses {
		result.Statuses[currency] = s.currencyStatus(ctx, currency, address, record.FiatBalance)
	}

	for currency, status := range result.Statuses {
		if status.NeedsFunding {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s wallet needs funding", strings.ToUpper(currency)))
		}
	}

	return result, nil
}

func (s *Service) currencyStatus(ctx context.Context, currency, address string, fiatBalance int64) CurrencyStatus {
	if currency == FiatCurrency {
		return CurrencyStatus{
			Currency: strings.ToUpper(currency),
			Network:  "fiat",
			Address:  address,
			Funded:   true,
			Balance:  fmt.Sprintf("%d.%02d", fiatBalance/100, fiatBalance%100),
		}
	}

	status := CurrencyStatus{
		Currency:     strings.ToUpper(currency),
		Network:      s.network,
		Address:      address,
		NeedsFunding: true,
		Balance:      stellar.FormatStroops(0),
	}

	if !stellar.IsValidAddress(address) {
		status.Err = ErrInvalidAddress.Error()
		return status
	}

	state, err := s.gateway.FetchAccount(ctx, address)
	if err != nil {
		status.Err = err.Error()
		return status
	}

	status.Funded = state.Funded()
	status.NeedsFunding = !status.Funded
	status.Balance = stellar.FormatStroops(state.Balance)
	return status
}

// Fund runs one bounded funding pass for the given address. The outcome is
// always complete: validation failures, exhaustion and timeouts all surface
// as outcome error kinds, never as Go errors.
func (s *Service) Fund(ctx context.Context, address string) funding.Outcome {
	return s.funder.EnsureFunded(ctx, address)
}

// CheckAccount reports the current on-chain state for a public key.
func (s *Service) CheckAccount(ctx context.Context, address string) (stellar.AccountState, error) {
	if !stellar.IsValidAddress(address) {
		return stellar.AccountState{}, ErrInvalidAddress
	}
	return s.gateway.FetchAccount(ctx, address)
}

func fiatAddress(email string) string {
	return "inr_wallet_" + strings.ReplaceAll(email, "@", "_at_")
}
