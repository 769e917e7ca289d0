package stellar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/transcrypt/transcrypt/internal/logging"
)

const testAddress = "GBVNNPOFVV2YNXSQXDJPBVQYY7WJLHGECLSXDGFKUXUTKTPXCFPEWJ5C"

func TestFetchAccountFunded(t *testing.T) {
	horizon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/"+testAddress {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"account_id":"` + testAddress + `","balances":[{"balance":"10000.0000000","asset_type":"native"}]}`))
	}))
	defer horizon.Close()

	gw := NewHorizonGateway(horizon.URL, "", logging.Discard())
	state, err := gw.FetchAccount(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("fetch account: %v", err)
	}
	if !state.Exists {
		t.Fatal("expected account to exist")
	}
	if state.Balance != 100_000_000_000_000 {
		t.Fatalf("unexpected balance: %d", state.Balance)
	}
	if !state.Funded() {
		t.Fatal("expected funded state")
	}
}

func TestFetchAccountNotFoundIsState(t *testing.T) {
	horizon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":404}`, http.StatusNotFound)
	}))
	defer horizon.Close()

	gw := NewHorizonGateway(horizon.URL, "", logging.Discard())
	state, err := gw.FetchAccount(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if state.Exists {
		t.Fatal("expected Exists=false for a missing account")
	}
	if state.Balance != 0 {
		t.Fatalf("missing account must report zero balance, got %d", state.Balance)
	}
}

func TestFetchAccountServerErrorIsTransient(t *testing.T) {
	horizon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer horizon.Close()

	gw := NewHorizonGateway(horizon.URL, "", logging.Discard())
	if _, err := gw.FetchAccount(context.Background(), testAddress); !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestFetchAccountMalformedBodyIsTransient(t *testing.T) {
	horizon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer horizon.Close()

	gw := NewHorizonGateway(horizon.URL, "", logging.Discard())
	if _, err := gw.FetchAccount(context.Background(), testAddress); !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestRequestFundingAccepted(t *testing.T) {
	var gotAddr string
	friendbot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddr = r.URL.Query().Get("addr")
		w.Write([]byte(`{"hash":"abc"}`))
	}))
	defer friendbot.Close()

	gw := NewHorizonGateway("http://unused", friendbot.URL, logging.Discard())
	if err := gw.RequestFunding(context.Background(), testAddress); err != nil {
		t.Fatalf("request funding: %v", err)
	}
	if gotAddr != testAddress {
		t.Fatalf("friendbot got addr %q", gotAddr)
	}
}

func TestRequestFundingRejected(t *testing.T) {
	friendbot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusServiceUnavailable)
	}))
	defer friendbot.Close()

	gw := NewHorizonGateway("http://unused", friendbot.URL, logging.Discard())
	if err := gw.RequestFunding(context.Background(), testAddress); !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestRequestFundingWithoutFaucet(t *testing.T) {
	gw := NewHorizonGateway("http://unused", "", logging.Discard())
	if err := gw.RequestFunding(context.Background(), testAddress); !errors.Is(err, ErrNoFaucet) {
		t.Fatalf("expected ErrNoFaucet, got %v", err)
	}
}

func TestFetchAccountWithoutNativeBalance(t *testing.T) {
	horizon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"account_id":"x","balances":[{"balance":"3.5000000","asset_type":"credit_alphanum4"}]}`))
	}))
	defer horizon.Close()

	gw := NewHorizonGateway(horizon.URL, "", logging.Discard())
	state, err := gw.FetchAccount(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("fetch account: %v", err)
	}
	if state.Balance != 35_000_000 {
		t.Fatalf("expected fallback to first balance, got %d", state.Balance)
	}
	if !strings.Contains(string(state.Raw), "credit_alphanum4") {
		t.Fatal("expected raw payload retained")
	}
}
