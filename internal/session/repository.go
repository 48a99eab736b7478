package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"educhat-platform/internal/auth"
)

// NOTE: This repository assumes the following tables exist:
// - refresh_tokens (token unique)
// - users (workspace_role stored as JSONB)

func insertCredential(ctx context.Context, tx *sql.Tx, c Credential) error {
	const q = `
INSERT INTO refresh_tokens (token_id, user_id, token, created_at, expire_at, issued_token_count)
VALUES ($1,$2,$3,$4,$5,0)
`
	_, err := tx.ExecContext(ctx, q, c.TokenID, c.UserID, c.Token, c.CreatedAt, c.ExpireAt)
	return err
}

func lockCredentialByToken(ctx context.Context, tx *sql.Tx, token string) (Credential, error) {
	// Lock the credential row so concurrent redemptions serialize on the
	// issued count.
	const q = `
SELECT token_id, user_id, token, created_at, expire_at, issued_token_count
FROM refresh_tokens
WHERE token = $1
FOR UPDATE
`
	var c Credential
	if err := tx.QueryRowContext(ctx, q, token).Scan(
		&c.TokenID,
		&c.UserID,
		&c.Token,
		&c.CreatedAt,
		&c.ExpireAt,
		&c.IssuedCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, ErrCredentialNotFound
		}
		return Credential{}, err
	}
	return c, nil
}

func bumpIssuedCount(ctx context.Context, tx *sql.Tx, tokenID string) error {
	const q = `
UPDATE refresh_tokens
SET issued_token_count = issued_token_count + 1
WHERE token_id = $1
`
	_, err := tx.ExecContext(ctx, q, tokenID)
	return err
}

func expireAll(ctx context.Context, tx *sql.Tx, userID int64, now time.Time) (int64, error) {
	const q = `
UPDATE refresh_tokens
SET expire_at = $2
WHERE user_id = $1 AND expire_at > $2
`
	res, err := tx.ExecContext(ctx, q, userID, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func getClaimsForUser(ctx context.Context, tx *sql.Tx, userID int64) (auth.Claims, error) {
	const q = `
SELECT user_id, first_name, last_name, email, student_id, workspace_role, system_admin, workspace_admin
FROM users
WHERE user_id = $1
`
	var (
		c     auth.Claims
		roles []byte
	)
	if err := tx.QueryRowContext(ctx, q, userID).Scan(
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.StudentID,
		&roles,
		&c.SystemAdmin,
		&c.WorkspaceAdmin,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A credential pointing at a vanished user is unusable.
			return auth.Claims{}, ErrCredentialNotFound
		}
		return auth.Claims{}, err
	}
	c.WorkspaceRole = make(map[string]auth.WorkspaceRole)
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &c.WorkspaceRole); err != nil {
			return auth.Claims{}, err
		}
	}
	return c, nil
}
