package stellar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrTransient marks gateway failures that are worth retrying: network
	// errors, 5xx responses and malformed payloads. A missing account is not
	// an error; it surfaces as AccountState{Exists: false}.
	ErrTransient = errors.New("transient ledger error")

	// ErrNoFaucet indicates the configured network does not offer faucet
	// funding (the production network never does).
	ErrNoFaucet = errors.New("faucet not available on this network")
)

// AccountState is a point-in-time snapshot of an account on the ledger. It is
// produced fresh on every query and must not be cached: on-chain state can
// change between calls.
type AccountState struct {
	Address string
	Exists  bool
	Balance int64 // stroops
	Raw     json.RawMessage
}

// Funded reports whether the account exists with a positive balance.
func (s AccountState) Funded() bool {
	return s.Exists && s.Balance > 0
}

// Gateway is the capability the funding orchestrator consumes: read account
// state and ask the network faucet to fund an address. Implementations make
// outbound calls only and keep no state between them.
type Gateway interface {
	// FetchAccount returns the current state of the account. Not-found is the
	// expected steady state for unfunded accounts and maps to Exists=false
	// with a nil error; every other failure wraps ErrTransient.
	FetchAccount(ctx context.Context, address string) (AccountState, error)

	// RequestFunding asks the faucet to deposit into the address. A nil error
	// means the request was accepted, not that funds arrived; callers must
	// re-verify via FetchAccount.
	RequestFunding(ctx context.Context, address string) error
}

// HorizonGateway talks to a Horizon API server and its companion friendbot.
type HorizonGateway struct {
	horizonURL   string
	friendbotURL string
	client       *http.Client
	logger       *slog.Logger
}

// NewHorizonGateway builds a gateway against the given Horizon and friendbot
// endpoints. friendbotURL may be empty, in which case funding requests fail
// with ErrNoFaucet.
func NewHorizonGateway(horizonURL, friendbotURL string, logger *slog.Logger) *HorizonGateway {
	return &HorizonGateway{
		horizonURL:   horizonURL,
		friendbotURL: friendbotURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
}

type horizonAccount struct {
	AccountID string `json:"account_id"`
	Balances  []struct {
		Balance   string `json:"balance"`
		AssetType string `json:"asset_type"`
	} `json:"balances"`
}

// FetchAccount performs GET /accounts/{address} against Horizon.
func (g *HorizonGateway) FetchAccount(ctx context.Context, address string) (AccountState, error) {
	endpoint := g.horizonURL + "/accounts/" + url.PathEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return AccountState{}, fmt.Errorf("build account request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return AccountState{}, fmt.Errorf("fetch account %s: %v: %w", address, err, ErrTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Expected for accounts that were never funded.
		return AccountState{Address: address}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AccountState{}, fmt.Errorf("read account response: %v: %w", err, ErrTransient)
	}

	if resp.StatusCode != http.StatusOK {
		return AccountState{}, fmt.Errorf("horizon returned %d for %s: %w", resp.StatusCode, address, ErrTransient)
	}

	var account horizonAccount
	if err := json.Unmarshal(body, &account); err != nil {
		return AccountState{}, fmt.Errorf("decode account response: %v: %w", err, ErrTransient)
	}

	state := AccountState{Address: address, Exists: true, Raw: body}
	state.Balance, err = nativeBalance(account)
	if err != nil {
		return AccountState{}, fmt.Errorf("account %s: %v: %w", address, err, ErrTransient)
	}

	return state, nil
}

// RequestFunding performs GET {friendbot}/?addr={address}. Friendbot both
// creates and funds testnet accounts.
func (g *HorizonGateway) RequestFunding(ctx context.Context, address string) error {
	if g.friendbotURL == "" {
		return ErrNoFaucet
	}

	endpoint := g.friendbotURL + "/?addr=" + url.QueryEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build funding request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("request funding for %s: %v: %w", address, err, ErrTransient)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("friendbot returned %d for %s: %w", resp.StatusCode, address, ErrTransient)
	}

	if g.logger != nil {
		g.logger.Debug("funding request accepted", slog.String("address", address))
	}
	return nil
}

func nativeBalance(account horizonAccount) (int64, error) {
	for _, b := range account.Balances {
		if b.AssetType == "native" {
			return ParseStroops(b.Balance)
		}
	}
	if len(account.Balances) > 0 {
		return ParseStroops(account.Balances[0].Balance)
	}
	return 0, nil
}
