package authlog

import "time"

// Event is an immutable, append-only record of an authentication lifecycle
// moment.
//
// Invariants:
// - Events are never updated or deleted.
// - user_id identifies the account the event is about.
// - ip capture is best-effort; never block an auth flow on logging failures.
//
// Storage (Postgres): table auth_events, INSERT-only.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates which lifecycle moment is being recorded.
	Type EventType `json:"type" db:"type"`

	// UserID is the account the event is about.
	UserID int64  `json:"user_id" db:"user_id"`
	Email  string `json:"email,omitempty" db:"email"`

	// ActorUserID is set when someone else caused the event, e.g. the admin
	// behind a role change.
	ActorUserID int64 `json:"actor_user_id,omitempty" db:"actor_user_id"`

	// Workspace scope for role changes; empty for account-level events.
	WorkspaceID string `json:"workspace_id,omitempty" db:"workspace_id"`
	Role        string `json:"role,omitempty" db:"role"`

	// IPAddress should hold the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin      EventType = "sso_login"
	EventTypeRedeem     EventType = "token_redeemed"
	EventTypeLogoutAll  EventType = "logout_all_devices"
	EventTypeRoleChange EventType = "role_changed"
)
