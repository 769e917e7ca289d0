package funding

import "time"

// ErrKind classifies funding failures for callers and API responses.
type ErrKind string

const (
	// ErrKindNone means no error occurred.
	ErrKindNone ErrKind = ""
	// ErrKindInvalidAddress marks a local validation failure; the network is never contacted.
	ErrKindInvalidAddress ErrKind = "INVALID_ADDRESS"
	// ErrKindTransient marks a retryable gateway failure (network error, 5xx, malformed response).
	ErrKindTransient ErrKind = "TRANSIENT"
	// ErrKindFundingFailed means the attempt budget was exhausted without the account being funded.
	ErrKindFundingFailed ErrKind = "FUNDING_FAILED"
	// ErrKindTimeout means the request deadline elapsed mid-retry.
	ErrKindTimeout ErrKind = "TIMEOUT"
)

// AttemptResult records a single funding attempt. Records are immutable once
// appended to an outcome.
type AttemptResult struct {
	Number    int           `json:"number"`
	Succeeded bool          `json:"succeeded"`
	Err       ErrKind       `json:"error,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Outcome is the terminal result of driving the faucet for one address. It is
// complete once Funded is true or the attempt budget is exhausted; the retrier
// never raises instead of returning one.
type Outcome struct {
	Currency     string          `json:"currency,omitempty"`
	Address      string          `json:"address"`
	Funded       bool            `json:"funded"`
	Attempts     []AttemptResult `json:"attempts"`
	FinalBalance int64           `json:"final_balance"`
	Err          ErrKind         `json:"error,omitempty"`
	Message      string          `json:"message,omitempty"`
}
