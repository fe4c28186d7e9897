package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clientespro/client-manager/internal/core/domain"
)

const testSecret = "test-secret"

func newTestTokens(ttl time.Duration) (*TokenService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	return NewTokenService(testSecret, ttl, clock.Now), clock
}

func TestTokenService_IssueVerify(t *testing.T) {
	svc, clock := newTestTokens(time.Hour)

	raw, issued, err := svc.Issue("u1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !issued.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", issued.ExpiresAt)
	}

	claims, err := svc.Verify(raw)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Fatalf("token id not preserved: issued %q verified %q", issued.ID, claims.ID)
	}
}

func TestTokenService_UniqueIDs(t *testing.T) {
	svc, _ := newTestTokens(time.Hour)
	_, a, _ := svc.Issue("u1", domain.RoleUser)
	_, b, _ := svc.Issue("u1", domain.RoleUser)
	if a.ID == b.ID {
		t.Fatal("every token must carry its own id")
	}
}

func TestTokenService_Expiry(t *testing.T) {
	const ttl = 30 * 24 * time.Hour
	svc, clock := newTestTokens(ttl)

	raw, _, err := svc.Issue("u1", domain.RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	clock.Advance(ttl - time.Minute)
	if _, err := svc.Verify(raw); err != nil {
		t.Fatalf("token should be valid just before expiry, got %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, err := svc.Verify(raw); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Tampered(t *testing.T) {
	svc, _ := newTestTokens(time.Hour)
	raw, _, _ := svc.Issue("u1", domain.RoleUser)

	parts := strings.Split(raw, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := svc.Verify(tampered); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc, clock := newTestTokens(time.Hour)
	other := NewTokenService("another-secret", time.Hour, clock.Now)
	raw, _, _ := other.Issue("u1", domain.RoleUser)

	if _, err := svc.Verify(raw); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc, _ := newTestTokens(time.Hour)
	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := svc.Verify(raw); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("Verify(%q): expected ErrTokenInvalid, got %v", raw, err)
		}
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc, clock := newTestTokens(time.Hour)
	claims := accessClaims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}
	if _, err := svc.Verify(hs512); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("HS512 token: expected ErrTokenInvalid, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.Verify(none); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("unsigned token: expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_RejectsUnknownRole(t *testing.T) {
	svc, clock := newTestTokens(time.Hour)
	claims := accessClaims{
		Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}
	raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	if _, err := svc.Verify(raw); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
