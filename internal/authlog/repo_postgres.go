package authlog

import (
	"context"
	"database/sql"
)

// PGRepo persists events to the auth_events table. It carries insert
// support only; no update or delete statements exist anywhere in the
// package.

type PGRepo struct {
	db *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO auth_events (
  id, type, user_id, email, actor_user_id, workspace_id, role,
  ip_address, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Type,
		e.UserID,
		e.Email,
		e.ActorUserID,
		e.WorkspaceID,
		e.Role,
		e.IPAddress,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
