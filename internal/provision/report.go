package provision

import (
	"fmt"
	"sort"
	"strings"

	"github.com/transcrypt/transcrypt/internal/funding"
	"github.com/transcrypt/transcrypt/internal/keygen"
)

// Report aggregates per-currency funding outcomes for one provisioning
// request. It is built once, after every currency finished, and is owned by
// the caller; nothing mutates it afterwards.
type Report struct {
	Outcomes  map[string]funding.Outcome
	Keypairs  map[string]keygen.Keypair
	AllFunded bool
	Warnings  []string
}

// buildReport folds the collected outcomes into the derived fields: AllFunded
// is the conjunction over all funded flags, and each unfunded currency
// contributes one human-readable warning, ordered by currency code.
func buildReport(outcomes map[string]funding.Outcome, keypairs map[string]keygen.Keypair) Report {
	report := Report{
		Outcomes:  outcomes,
		Keypairs:  keypairs,
		AllFunded: true,
	}

	currencies := make([]string, 0, len(outcomes))
	for currency := range outcomes {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	for _, currency := range currencies {
		outcome := outcomes[currency]
		if outcome.Funded {
			continue
		}
		report.AllFunded = false
		reason := outcome.Message
		if reason == "" {
			reason = string(outcome.Err)
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s funding: %s", strings.ToUpper(currency), reason))
	}

	return report
}
