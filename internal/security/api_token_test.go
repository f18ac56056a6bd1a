package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewTokenIssuerRejectsShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer("short", time.Hour); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer() unexpected error: %v", err)
	}

	token, expiresAt, err := issuer.Issue(424242)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected a compact JWT, got %q", token)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future, got %s", expiresAt)
	}

	userID, err := issuer.Parse(" " + token + " ")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if userID != 424242 {
		t.Fatalf("expected user 424242, got %d", userID)
	}
}

func TestIssueProducesDistinctTokens(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenIssuer(testSecret, time.Hour)
	first, _, _ := issuer.Issue(1)
	second, _, _ := issuer.Issue(1)
	if first == second {
		t.Fatal("expected unique token ids to make tokens distinct")
	}
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenIssuer(testSecret, time.Hour)
	other, _ := NewTokenIssuer(strings.Repeat("z", 40), time.Hour)

	foreign, _, _ := other.Issue(5)
	if _, err := issuer.Parse(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
	if _, err := issuer.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	expired, _ := NewTokenIssuer(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue(5)
	if _, err := issuer.Parse(stale); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
