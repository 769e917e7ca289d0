package stellar

import (
	"strings"
	"testing"
)

func TestIsValidAddress(t *testing.T) {
	cases := []struct {
		name    string
		address string
		want    bool
	}{
		{"well formed", "G" + strings.Repeat("A", 55), true},
		{"too short", "G123", false},
		{"empty", "", false},
		{"wrong prefix", "S" + strings.Repeat("A", 55), false},
		{"too long", "G" + strings.Repeat("A", 56), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidAddress(tc.address); got != tc.want {
				t.Fatalf("IsValidAddress(%q) = %v, want %v", tc.address, got, tc.want)
			}
		})
	}
}
