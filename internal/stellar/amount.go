package stellar

import (
	"fmt"
	"strconv"
	"strings"
)

// StroopsPerLumen is the number of stroops (the smallest ledger unit) in one lumen.
const StroopsPerLumen = 10_000_000

// ParseStroops converts a Horizon decimal balance string such as
// "10000.0000000" into stroops. Horizon renders at most seven fractional
// digits; anything beyond that is rejected rather than silently truncated.
func ParseStroops(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty balance string")
	}
	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 7 {
		return 0, fmt.Errorf("balance %q has more than 7 decimal places", s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance %q: %w", s, err)
	}

	var fracStroops int64
	if frac != "" {
		padded := frac + strings.Repeat("0", 7-len(frac))
		fracStroops, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse balance %q: %w", s, err)
		}
	}

	if units < 0 {
		return units*StroopsPerLumen - fracStroops, nil
	}
	return units*StroopsPerLumen + fracStroops, nil
}

// FormatStroops renders a stroop amount as a Horizon-style decimal string.
func FormatStroops(stroops int64) string {
	sign := ""
	if stroops < 0 {
		sign = "-"
		stroops = -stroops
	}
	return fmt.Sprintf("%s%d.%07d", sign, stroops/StroopsPerLumen, stroops%StroopsPerLumen)
}
