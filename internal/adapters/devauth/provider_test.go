package devauth

import (
	"context"
	"strings"
	"testing"

	"github.com/gpjen/bookingroom/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{Username: "dev.user", Email: "dev@example.com"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	url, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(url, "/auth/callback?") {
		t.Fatalf("unexpected authURL: %s", url)
	}
	if state == "" || nonce == "" {
		t.Fatal("state and nonce should be generated")
	}
	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.Username != "dev.user" || id.Email != "dev@example.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.Tokens.AccessToken == "" || id.Tokens.RefreshToken == "" {
		t.Fatalf("expected minted tokens, got %+v", id.Tokens)
	}
}

func TestProvider_Refresh(t *testing.T) {
	prov, err := NewProvider(Config{Username: "dev.user", Email: "dev@example.com"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	ts, err := prov.Refresh(context.Background(), "dev-refresh-abc")
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if ts.AccessToken == "" || ts.ExpiresAt.IsZero() {
		t.Fatalf("expected renewed token set, got %+v", ts)
	}
	if _, err := prov.Refresh(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty refresh token")
	}
}
