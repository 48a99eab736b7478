package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"educhat-platform/internal/auth"
)

// NOTE: This repository assumes the following tables exist:
// - users (workspace_role stored as JSONB)
// - workspace_members, PRIMARY KEY (workspace_id, user_id)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u     User
		roles []byte
	)
	if err := row.Scan(
		&u.UserID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.StudentID,
		&roles,
		&u.SchoolID,
		&u.SystemAdmin,
		&u.WorkspaceAdmin,
		&u.CreatedAt,
		&u.LastLogin,
	); err != nil {
		return User{}, err
	}
	u.WorkspaceRole = make(map[string]auth.WorkspaceRole)
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &u.WorkspaceRole); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

func findUserByEmail(ctx context.Context, tx *sql.Tx, email string) (User, bool, error) {
	const q = `
SELECT user_id, first_name, last_name, email, student_id, workspace_role,
       school_id, system_admin, workspace_admin, created_at, last_login
FROM users
WHERE email = $1
`
	u, err := scanUser(tx.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

func getUser(ctx context.Context, db *sql.DB, userID int64) (User, error) {
	const q = `
SELECT user_id, first_name, last_name, email, student_id, workspace_role,
       school_id, system_admin, workspace_admin, created_at, last_login
FROM users
WHERE user_id = $1
`
	u, err := scanUser(db.QueryRowContext(ctx, q, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func lockUser(ctx context.Context, tx *sql.Tx, userID int64) (User, error) {
	// Lock the user row to serialize concurrent role mutations per user.
	const q = `
SELECT user_id, first_name, last_name, email, student_id, workspace_role,
       school_id, system_admin, workspace_admin, created_at, last_login
FROM users
WHERE user_id = $1
FOR UPDATE
`
	u, err := scanUser(tx.QueryRowContext(ctx, q, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func insertUser(ctx context.Context, tx *sql.Tx, u User) (int64, error) {
	const q = `
INSERT INTO users (
  first_name, last_name, email, student_id, workspace_role,
  school_id, system_admin, workspace_admin, created_at, last_login
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
RETURNING user_id
`
	roles, err := json.Marshal(u.WorkspaceRole)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRowContext(ctx, q,
		u.FirstName,
		u.LastName,
		u.Email,
		u.StudentID,
		roles,
		u.SchoolID,
		u.SystemAdmin,
		u.WorkspaceAdmin,
		u.CreatedAt,
		u.LastLogin,
	).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func touchLastLogin(ctx context.Context, tx *sql.Tx, userID int64, now time.Time) error {
	const q = `UPDATE users SET last_login = $2 WHERE user_id = $1`
	_, err := tx.ExecContext(ctx, q, userID, now)
	return err
}

func saveWorkspaceRoles(ctx context.Context, tx *sql.Tx, userID int64, roles map[string]auth.WorkspaceRole) error {
	const q = `UPDATE users SET workspace_role = $2 WHERE user_id = $1`
	raw, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, q, userID, raw)
	return err
}

func upsertMembership(ctx context.Context, tx *sql.Tx, m Membership, now time.Time) error {
	const q = `
INSERT INTO workspace_members (workspace_id, user_id, role, student_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$5)
ON CONFLICT (workspace_id, user_id)
DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
`
	_, err := tx.ExecContext(ctx, q, m.WorkspaceID, m.UserID, m.Role, m.StudentID, now)
	return err
}

func deleteMembership(ctx context.Context, tx *sql.Tx, workspaceID string, userID int64) (bool, error) {
	const q = `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`
	res, err := tx.ExecContext(ctx, q, workspaceID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func countUsers(ctx context.Context, db *sql.DB, workspaceID string) (int64, error) {
	var n int64
	if workspaceID == WorkspaceAll {
		const q = `SELECT COUNT(*) FROM users`
		err := db.QueryRowContext(ctx, q).Scan(&n)
		return n, err
	}
	const q = `
SELECT COUNT(*)
FROM users u
JOIN workspace_members m ON m.user_id = u.user_id
WHERE m.workspace_id = $1
`
	err := db.QueryRowContext(ctx, q, workspaceID).Scan(&n)
	return n, err
}

func listUsers(ctx context.Context, db *sql.DB, workspaceID string, limit, offset int) ([]User, error) {
	const all = `
SELECT user_id, first_name, last_name, email, student_id, workspace_role,
       school_id, system_admin, workspace_admin, created_at, last_login
FROM users
ORDER BY user_id
OFFSET $1 LIMIT $2
`
	const byWorkspace = `
SELECT u.user_id, u.first_name, u.last_name, u.email, u.student_id, u.workspace_role,
       u.school_id, u.system_admin, u.workspace_admin, u.created_at, u.last_login
FROM users u
JOIN workspace_members m ON m.user_id = u.user_id
WHERE m.workspace_id = $1
ORDER BY u.user_id
OFFSET $2 LIMIT $3
`
	var (
		rows *sql.Rows
		err  error
	)
	if workspaceID == WorkspaceAll {
		rows, err = db.QueryContext(ctx, all, offset, limit)
	} else {
		rows, err = db.QueryContext(ctx, byWorkspace, workspaceID, offset, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
