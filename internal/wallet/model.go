package wallet

import "time"

const (
	// FiatCurrency is the wallet slot holding the user's fiat balance.
	FiatCurrency = "inr"
	// DefaultFiatBalance is the starting fiat balance in paise (10,000.00 INR).
	DefaultFiatBalance int64 = 1_000_000
)

// DefaultCurrencies are the crypto slots provisioned for every new wallet.
var DefaultCurrencies = []string{"btc", "eth", "sol"}

// Record is the stored custodial wallet for one user, keyed by email. The
// Secrets map holds account seeds and must never appear in logs or responses.
type Record struct {
	ID          string
	Name        string
	Email       string
	Credential  string // verifier hash, never the plaintext secret
	Addresses   map[string]string
	Secrets     map[string]string
	FiatBalance int64 // paise
	CreatedAt   time.Time
}
