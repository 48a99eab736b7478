package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educhat-platform/internal/auth"
	"educhat-platform/pkg/utils"

	"github.com/google/uuid"
)

// Service manages long-lived refresh credentials and mints session tokens
// from them.
//
// Credential invariants:
// - Rows are never deleted; revocation moves expire_at to now.
// - Claims are assembled fresh at redemption, inside the same transaction
//   that increments the issued count, so role changes propagate on the next
//   refresh without forcing re-login.
type Service struct {
	db         *sql.DB
	codec      *auth.Manager
	refreshTTL time.Duration
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB, codec *auth.Manager, refreshTTL time.Duration) *Service {
	return &Service{db: db, codec: codec, refreshTTL: refreshTTL, clock: time.Now}
}

var (
	ErrCredentialNotFound = errors.New("refresh credential not found")
	ErrCredentialExpired  = errors.New("refresh credential expired")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// IssueRefresh creates a credential for one device and returns its opaque
// value. Credentials are long-lived relative to session tokens: 15 days
// against 30 minutes with default configuration.
func (s *Service) IssueRefresh(ctx context.Context, userID int64) (string, error) {
	if userID <= 0 {
		return "", ErrInvalidArgument
	}

	now := s.clock().UTC()
	cred := Credential{
		TokenID:   uuid.NewString(),
		UserID:    userID,
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpireAt:  now.Add(s.refreshTTL),
	}

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		return insertCredential(ctx, tx, cred)
	})
	if err != nil {
		return "", err
	}
	return cred.Token, nil
}

// Redeem exchanges a refresh value for a new session token. The user row is
// read at redemption time, never cached from issuance, and the credential's
// issued count is incremented in the same transaction. The claims the new
// token carries are returned alongside it so callers can identify the user
// without re-parsing.
func (s *Service) Redeem(ctx context.Context, refreshValue string) (string, auth.Claims, error) {
	if refreshValue == "" {
		return "", auth.Claims{}, ErrInvalidArgument
	}

	now := s.clock().UTC()

	var (
		token  string
		issued auth.Claims
	)
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		cred, err := lockCredentialByToken(ctx, tx, refreshValue)
		if err != nil {
			return err
		}
		if !cred.ExpireAt.After(now) {
			return ErrCredentialExpired
		}

		claims, err := getClaimsForUser(ctx, tx, cred.UserID)
		if err != nil {
			return err
		}

		signed, err := s.codec.Issue(claims)
		if err != nil {
			return err
		}
		if err := bumpIssuedCount(ctx, tx, cred.TokenID); err != nil {
			return err
		}
		token = signed
		issued = claims
		return nil
	})

	return token, issued, err
}

// RevokeAll expires every live credential the user owns and reports how many
// were revoked. Rows stay in place, only expire_at moves. Calling it again
// is safe and revokes nothing.
func (s *Service) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrInvalidArgument
	}

	now := s.clock().UTC()

	var revoked int64
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		n, err := expireAll(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		revoked = n
		return nil
	})
	return revoked, err
}
