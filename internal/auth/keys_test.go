package auth

import (
	"strings"
	"testing"
	"time"

	"educhat-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// mangle reproduces the secret pipeline's corruption: every real newline
// becomes a literal 'n' glued onto the surrounding text.
func mangle(pemText string) string {
	return strings.ReplaceAll(strings.TrimSuffix(pemText, "\n"), "\n", "n")
}

func TestNormalizePEM_PassesCleanKeyThrough(t *testing.T) {
	priv, pub := testKeyPEMs(t)

	if got := normalizePEM(priv); got != priv {
		t.Fatalf("clean private key must pass through unchanged")
	}
	if got := normalizePEM(pub); got != pub {
		t.Fatalf("clean public key must pass through unchanged")
	}
}

func TestNormalizePEM_RepairsMangledKeys(t *testing.T) {
	priv, pub := testKeyPEMs(t)

	repairedPriv := normalizePEM(mangle(priv))
	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(repairedPriv)); err != nil {
		t.Fatalf("repaired private key does not parse: %v", err)
	}

	repairedPub := normalizePEM(mangle(pub))
	if _, err := jwt.ParseRSAPublicKeyFromPEM([]byte(repairedPub)); err != nil {
		t.Fatalf("repaired public key does not parse: %v", err)
	}
}

func TestNormalizePEM_IgnoresNonPEMInput(t *testing.T) {
	for _, in := range []string{"", "garbage", "-----BEGIN"} {
		if got := normalizePEM(in); got != in {
			t.Fatalf("non-PEM input %q must pass through, got %q", in, got)
		}
	}
}

func TestNewManager_AcceptsMangledEnvKeys(t *testing.T) {
	priv, pub := testKeyPEMs(t)

	m, err := NewManager(config.AuthConfig{
		PrivateKeyPEM:  mangle(priv),
		PublicKeyPEM:   mangle(pub),
		AccessTokenTTL: 30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("manager with mangled keys: %v", err)
	}

	token, err := m.Issue(testClaims())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestNewManager_RejectsUnparsableKeys(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{PrivateKeyPEM: "nope", PublicKeyPEM: "nope"}); err == nil {
		t.Fatalf("expected error for unparsable key material")
	}
}
