package session

import "time"

// Credential is one device's long-lived refresh credential.
//
// Lifecycle: created at login, one row per device/session. A credential is
// invalidated by natural expiry or by RevokeAll moving expire_at to now;
// rows are never deleted, preserving an audit trail.
type Credential struct {
	TokenID string `json:"token_id" db:"token_id"`
	UserID  int64  `json:"user_id" db:"user_id"`

	// Token is the opaque value handed to the client. Unique.
	Token string `json:"token" db:"token"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpireAt  time.Time `json:"expire_at" db:"expire_at"`

	// IssuedCount tracks how many session tokens this credential has minted.
	// Telemetry only, not enforced as a limit.
	IssuedCount int64 `json:"issued_token_count" db:"issued_token_count"`
}
