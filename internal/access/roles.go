package access

import "educhat-platform/internal/auth"

// Flags is the coarse role set the endpoint matrix is keyed on. Finer
// per-workspace authority is checked inside the route handlers that need it.
type Flags struct {
	Admin          bool
	Teacher        bool
	Student        bool
	WorkspaceAdmin bool
}

// ExtractRoles collapses token claims into matrix flags.
//
// Admin mirrors the system_admin claim. Teacher is set when the user is a
// teacher in at least one workspace. Student is set whenever claims are
// present at all, so every authenticated user clears endpoints open to
// students. Nil claims (no valid token) yield no flags.
func ExtractRoles(c *auth.Claims) Flags {
	if c == nil {
		return Flags{}
	}

	f := Flags{Student: true}
	if c.SystemAdmin {
		f.Admin = true
	}
	for _, role := range c.WorkspaceRole {
		if role == auth.RoleTeacher {
			f.Teacher = true
			break
		}
	}
	f.WorkspaceAdmin = c.WorkspaceAdmin
	return f
}

// Intersects reports whether the caller holds at least one of the roles a
// rule allows.
func (f Flags) Intersects(allow Flags) bool {
	return (f.Admin && allow.Admin) ||
		(f.Teacher && allow.Teacher) ||
		(f.Student && allow.Student) ||
		(f.WorkspaceAdmin && allow.WorkspaceAdmin)
}
