package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"educhat-platform/internal/config"
)

func testKeyPEMs(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal private key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	return string(privPEM), string(pubPEM)
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	priv, pub := testKeyPEMs(t)
	m, err := NewManager(config.AuthConfig{
		PrivateKeyPEM:  priv,
		PublicKeyPEM:   pub,
		AccessTokenTTL: 30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func testClaims() Claims {
	return Claims{
		UserID:      42,
		Email:       "a@x.edu",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		StudentID:   "axl123",
		SystemAdmin: false,
		WorkspaceRole: map[string]WorkspaceRole{
			"ws-algebra": RoleStudent,
			"ws-physics": RoleTeacher,
		},
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	m.clock = func() time.Time { return now }

	token, err := m.Issue(testClaims())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token string")
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@x.edu" || claims.StudentID != "axl123" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.FirstName != "Ada" || claims.LastName != "Lovelace" {
		t.Fatalf("unexpected name fields: %+v", claims)
	}
	if claims.WorkspaceRole["ws-physics"] != RoleTeacher {
		t.Fatalf("workspace roles did not round-trip: %+v", claims.WorkspaceRole)
	}
	if claims.SystemAdmin || claims.WorkspaceAdmin {
		t.Fatalf("admin flags should be false")
	}
}

func TestIssueStampsThirtyMinuteExpiry(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	m.clock = func() time.Time { return now }

	token, err := m.Issue(testClaims())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	iat := claims.IssuedAt.Time
	exp := claims.ExpiresAt.Time
	if !exp.After(iat) {
		t.Fatalf("expiry must be strictly after issued-at")
	}
	if got := exp.Sub(iat); got != 30*time.Minute {
		t.Fatalf("expected exp - iat == 30m, got %v", got)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	m.clock = func() time.Time { return now }

	token, err := m.Issue(testClaims())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m.clock = func() time.Time { return now.Add(31 * time.Minute) }
	if _, err := m.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyMissingToken(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Verify(""); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Verify("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := m.Verify("a.b.c"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuerMgr := newTestManager(t)
	verifierMgr := newTestManager(t)

	token, err := issuerMgr.Issue(testClaims())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifierMgr.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign key, got %v", err)
	}
}

func TestVerifyRejectsUnknownRoleValue(t *testing.T) {
	m := newTestManager(t)

	claims := testClaims()
	claims.WorkspaceRole = map[string]WorkspaceRole{"ws-1": WorkspaceRole("owner")}
	token, err := m.Issue(claims)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for unknown role value, got %v", err)
	}
}

func TestVerifyRejectsIncompleteIdentity(t *testing.T) {
	m := newTestManager(t)

	claims := testClaims()
	claims.UserID = 0
	token, err := m.Issue(claims)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for missing user_id, got %v", err)
	}
}

func TestWorkspaceRoleIsValid(t *testing.T) {
	for _, r := range []WorkspaceRole{RoleStudent, RoleTeacher, RolePending} {
		if !r.IsValid() {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	if WorkspaceRole("owner").IsValid() {
		t.Fatalf("expected owner to be invalid")
	}
	if WorkspaceRole("").IsValid() {
		t.Fatalf("expected empty role to be invalid")
	}
}
