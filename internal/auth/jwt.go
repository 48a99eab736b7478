package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"educhat-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Typed verification results. Callers branch on these with errors.Is; the
// distinction is load-bearing for the HTTP layer's 401000/401001/401002
// sub-codes.
var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Manager signs and verifies session tokens with an RSA key pair (RS256).
// Issue and Verify are pure computations; the only state is the key material
// and the clock.
type Manager struct {
	private   *rsa.PrivateKey
	public    *rsa.PublicKey
	issuer    string
	accessTTL time.Duration
	clock     func() time.Time
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	private, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(normalizePEM(cfg.PrivateKeyPEM)))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM([]byte(normalizePEM(cfg.PublicKeyPEM)))
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Manager{
		private:   private,
		public:    public,
		issuer:    cfg.Issuer,
		accessTTL: cfg.AccessTokenTTL,
		clock:     time.Now,
	}, nil
}

/* ===================== ISSUE ===================== */

// Issue signs the claims, stamping iat = now and exp = now + TTL (30 minutes
// by default). No side effects beyond pure computation.
func (m *Manager) Issue(claims Claims) (string, error) {
	now := m.clock().UTC()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		ID:        uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return t.SignedString(m.private)
}

/* ===================== VERIFY ===================== */

// Verify checks signature and expiry against the public key and returns the
// decoded claims, or exactly one of ErrTokenMissing, ErrTokenExpired,
// ErrTokenInvalid. It never panics on malformed input.
//
// No leeway is applied: a token with exp <= now is expired.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.public, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	return &claims, nil
}
