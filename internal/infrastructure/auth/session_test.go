package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newProvider(t *testing.T) *SessionProvider {
	t.Helper()
	p, err := NewSessionProvider(Config{
		Secret:   testSecret,
		Issuer:   "login.test",
		LoginURL: "https://login.test/signin",
		TokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestNewSessionProviderRejectsShortSecret(t *testing.T) {
	if _, err := NewSessionProvider(Config{Secret: "short"}); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestMeReturnsUserFromClaims(t *testing.T) {
	p := newProvider(t)
	token, err := p.Issue(domain.User{ID: "u1", Email: "a@b.test", FullName: "Ann Bee"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	user, err := p.Me(context.Background(), token)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.ID != "u1" || user.Email != "a@b.test" || user.FullName != "Ann Bee" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestMeRejectsInvalidTokens(t *testing.T) {
	p := newProvider(t)
	other, _ := NewSessionProvider(Config{Secret: strings.Repeat("x", 32), Issuer: "login.test"})
	foreign, _ := other.Issue(domain.User{ID: "u1"})

	expired := newProvider(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := expired.Issue(domain.User{ID: "u1"})

	for name, token := range map[string]string{
		"empty":   "",
		"garbage": "not-a-jwt",
		"foreign": foreign,
		"expired": stale,
	} {
		if _, err := p.Me(context.Background(), token); !domain.IsKind(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	p := newProvider(t)
	token, _ := p.Issue(domain.User{ID: "u1"})

	if err := p.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := p.Me(context.Background(), token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected revoked token rejected, got %v", err)
	}

	fresh, _ := p.Issue(domain.User{ID: "u1"})
	if _, err := p.Me(context.Background(), fresh); err != nil {
		t.Fatalf("expected new session to work: %v", err)
	}
}

func TestLoginURLAppendsReturnTarget(t *testing.T) {
	p := newProvider(t)
	if got := p.LoginURL(""); got != "https://login.test/signin" {
		t.Fatalf("unexpected bare url %q", got)
	}
	got := p.LoginURL("/documents?x=1")
	if got != "https://login.test/signin?return_to=%2Fdocuments%3Fx%3D1" {
		t.Fatalf("unexpected url %q", got)
	}
}
