package auth

import (
	"testing"
	"time"

	"github.com/MechanicWorks/MechanicWorks/internal/common/config"
	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"github.com/golang-jwt/jwt/v5"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret",
		Issuer:        "shop-api",
		TokenTTLHours: 24,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	ts, err := NewTokenService(testAuthConfig())
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, exp, err := ts.IssueCustomerToken(42)
	if err != nil {
		t.Fatalf("IssueCustomerToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	sub, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub.ID != 42 {
		t.Fatalf("subject mismatch: %d", sub.ID)
	}
	if sub.Role != "" {
		t.Fatalf("customer token must not carry a role, got %q", sub.Role)
	}
}

func TestMechanicTokenCarriesRole(t *testing.T) {
	ts, _ := NewTokenService(testAuthConfig())

	token, _, err := ts.IssueMechanicToken(7)
	if err != nil {
		t.Fatalf("IssueMechanicToken: %v", err)
	}
	sub, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub.ID != 7 || sub.Role != RoleMechanic {
		t.Fatalf("unexpected subject: %+v", sub)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	ts, _ := NewTokenService(testAuthConfig())

	// 手工签一个已过期的 token
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "shop-api",
			IssuedAt:  jwt.NewNumericDate(now.Add(-25 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = ts.Verify(raw)
	if !errs.IsKind(err, errs.KindAuthExpired) {
		t.Fatalf("expected KindAuthExpired, got %v", err)
	}
}

func TestVerifyBadSignature(t *testing.T) {
	ts, _ := NewTokenService(testAuthConfig())

	other, _ := NewTokenService(config.AuthConfig{JWTSecret: "other-secret", Issuer: "shop-api"})
	token, _, err := other.IssueCustomerToken(1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = ts.Verify(token)
	if !errs.IsKind(err, errs.KindAuthInvalid) {
		t.Fatalf("expected KindAuthInvalid, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	ts, _ := NewTokenService(testAuthConfig())
	if _, err := ts.Verify("not-a-token"); !errs.IsKind(err, errs.KindAuthInvalid) {
		t.Fatalf("expected KindAuthInvalid, got %v", err)
	}
	if _, err := ts.Verify(""); !errs.IsKind(err, errs.KindAuthMissing) {
		t.Fatalf("expected KindAuthMissing, got %v", err)
	}
}
