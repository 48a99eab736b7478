package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// WorkspaceRole is the closed set of roles a user can hold in a workspace.
type WorkspaceRole string

const (
	RoleStudent WorkspaceRole = "student"
	RoleTeacher WorkspaceRole = "teacher"
	RolePending WorkspaceRole = "pending"
)

func (r WorkspaceRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RolePending:
		return true
	default:
		return false
	}
}

// Claims is the session token payload. The workspace-role map is carried by
// value inside the token for the token's lifetime (30 minutes), so role
// staleness up to that window is tolerated; refresh redemption re-reads the
// user row and rebuilds the map.
//
// workspace_admin is absent in tokens minted by older deployments; it decodes
// to false there.
type Claims struct {
	jwt.RegisteredClaims

	UserID         int64                    `json:"user_id"`
	Email          string                   `json:"email"`
	FirstName      string                   `json:"first_name"`
	LastName       string                   `json:"last_name"`
	StudentID      string                   `json:"student_id"`
	WorkspaceRole  map[string]WorkspaceRole `json:"workspace_role"`
	SystemAdmin    bool                     `json:"system_admin"`
	WorkspaceAdmin bool                     `json:"workspace_admin,omitempty"`
}

// Validate runs inside token parsing (jwt.ClaimsValidator). A token whose
// payload is structurally unusable is rejected here, so downstream code never
// sees a half-built identity.
func (c Claims) Validate() error {
	if c.UserID <= 0 {
		return errors.New("user_id missing")
	}
	if c.Email == "" {
		return errors.New("email missing")
	}
	for ws, role := range c.WorkspaceRole {
		if !role.IsValid() {
			return fmt.Errorf("unknown role %q in workspace %q", role, ws)
		}
	}
	return nil
}
