package identity

import (
	"time"

	"educhat-platform/internal/auth"
)

// User is the persisted identity behind every session token.
//
// WorkspaceRole duplicates the per-workspace membership rows as a JSON map so
// claims can be assembled from a single row read. Any mutation of membership
// must update both, inside one transaction, or freshly minted tokens will
// carry roles the membership table disagrees with.
type User struct {
	UserID    int64  `json:"user_id" db:"user_id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Email     string `json:"email" db:"email"`
	StudentID string `json:"student_id" db:"student_id"`

	// WorkspaceRole maps workspace id to the user's role there (store as
	// JSONB in Postgres).
	WorkspaceRole map[string]auth.WorkspaceRole `json:"workspace_role" db:"workspace_role"`

	SchoolID int64 `json:"school_id" db:"school_id"`

	SystemAdmin    bool `json:"system_admin" db:"system_admin"`
	WorkspaceAdmin bool `json:"workspace_admin" db:"workspace_admin"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	LastLogin time.Time `json:"last_login" db:"last_login"`
}

// Membership is one user's role inside one workspace.
// Primary key is (workspace_id, user_id).
type Membership struct {
	WorkspaceID string             `json:"workspace_id" db:"workspace_id"`
	UserID      int64              `json:"user_id" db:"user_id"`
	Role        auth.WorkspaceRole `json:"role" db:"role"`
	StudentID   string             `json:"student_id" db:"student_id"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

// Claims assembles token claims from the current row state. Tokens cache
// these by value for their lifetime; callers wanting fresh roles must reload
// the user first.
func (u User) Claims() auth.Claims {
	roles := u.WorkspaceRole
	if roles == nil {
		roles = map[string]auth.WorkspaceRole{}
	}
	return auth.Claims{
		UserID:         u.UserID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		StudentID:      u.StudentID,
		WorkspaceRole:  roles,
		SystemAdmin:    u.SystemAdmin,
		WorkspaceAdmin: u.WorkspaceAdmin,
	}
}
