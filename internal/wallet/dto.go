package wallet

import "github.com/transcrypt/transcrypt/internal/funding"

// CreateRequest captures user-provided data to open a wallet.
type CreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateResponse reports the new wallet and its per-currency funding results.
// Secrets are custodial and never leave the service.
type CreateResponse struct {
	Message         string                     `json:"message"`
	WalletID        string                     `json:"wallet_id"`
	WalletAddresses map[string]string          `json:"wallet_addresses"`
	FundingResults  map[string]funding.Outcome `json:"funding_results"`
	AllFunded       bool                       `json:"all_funded"`
	Warnings        []string                   `json:"warnings,omitempty"`
	Timestamp       string                     `json:"timestamp"`
}

// AccessRequest carries the credentials for reading a wallet.
type AccessRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type currencyStatusJSON struct {
	Currency     string `json:"currency"`
	Network      string `json:"network"`
	PublicKey    string `json:"public_key,omitempty"`
	Funded       bool   `json:"funded"`
	NeedsFunding bool   `json:"needs_funding"`
	Balance      string `json:"balance"`
	Error        string `json:"error,omitempty"`
}

// AccessResponse is the authenticated wallet view.
type AccessResponse struct {
	Message         string                        `json:"message"`
	Name            string                        `json:"name"`
	Email           string                        `json:"email"`
	WalletAddresses map[string]string             `json:"wallet_addresses"`
	WalletStatus    map[string]currencyStatusJSON `json:"wallet_status"`
	Network         string                        `json:"network"`
	Warnings        []string                      `json:"warnings,omitempty"`
	Timestamp       string                        `json:"timestamp"`
}

// FundRequest asks the faucet to fund a public key.
type FundRequest struct {
	PublicKey string `json:"public_key"`
	Email     string `json:"email,omitempty"`
}

// FundResponse reports one bounded funding pass.
type FundResponse struct {
	Funded    bool                    `json:"funded"`
	PublicKey string                  `json:"public_key"`
	Balance   string                  `json:"balance"`
	Attempts  []funding.AttemptResult `json:"attempts"`
	Error     string                  `json:"error,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Timestamp string                  `json:"timestamp"`
}

// CheckRequest asks for the on-chain state of a public key.
type CheckRequest struct {
	PublicKey string `json:"public_key"`
}

// CheckResponse reports on-chain account state.
type CheckResponse struct {
	Exists    bool   `json:"exists"`
	Funded    bool   `json:"funded"`
	PublicKey string `json:"public_key"`
	Balance   string `json:"balance"`
	Message   string `json:"message"`
}
