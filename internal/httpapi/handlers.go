package httpapi

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"educhat-platform/internal/auth"
	"educhat-platform/internal/authlog"
	"educhat-platform/internal/identity"
	"educhat-platform/internal/session"
	"educhat-platform/internal/sso"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return the
// platform envelope. Authentication already happened in the gate; handlers
// only apply the finer per-workspace authority rules.

type Handlers struct {
	SSO       *sso.Service
	Sessions  *session.Service
	Users     *identity.Service
	Events    *authlog.Service
	AuthCodes *auth.AuthCode

	// Raw handles for the diagnostics probes.
	DB  *sql.DB
	RDB *redis.Client
}

// record surfaces event-log failures without failing the request.
func (h Handlers) record(err error) {
	if err != nil {
		slog.Warn("auth event not recorded", "err", err)
	}
}

// --- Login and sessions ---

// SSOLogin is the CAS callback. Whatever happens, the browser gets a
// redirect back to came_from; failure detail stays server-side.
func (h Handlers) SSOLogin(c *gin.Context) {
	if h.SSO == nil {
		respondError(c, http.StatusInternalServerError, "sso not configured")
		return
	}

	res, err := h.SSO.Login(c.Request.Context(), c.Query("ticket"), c.Query("came_from"))
	if err != nil {
		slog.Warn("sso login failed", "err", err)
	} else if h.Events != nil {
		h.record(h.Events.LogLogin(c.Request.Context(), res.UserID, res.Email, c.ClientIP()))
	}
	c.Redirect(http.StatusFound, res.RedirectURL)
}

// GenerateAccessToken mints a session token from the refresh credential in
// the Authorization header. This path is whitelisted: clients call it
// carrying only a refresh token once their access token has expired.
func (h Handlers) GenerateAccessToken(c *gin.Context) {
	if h.Sessions == nil {
		respondError(c, http.StatusInternalServerError, "sessions not configured")
		return
	}

	tokens := auth.ParseBearer(c.GetHeader("Authorization"))
	if tokens.Refresh == "" {
		respondError(c, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	access, claims, err := h.Sessions.Redeem(c.Request.Context(), tokens.Refresh)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Failed to generate access token")
		return
	}
	if h.Events != nil {
		h.record(h.Events.LogRedeem(c.Request.Context(), claims.UserID, c.ClientIP()))
	}
	respond(c, gin.H{"access_token": access}, "Success")
}

// LogoutAllDevices expires every refresh credential the caller owns.
func (h Handlers) LogoutAllDevices(c *gin.Context) {
	if h.Sessions == nil {
		respondError(c, http.StatusInternalServerError, "sessions not configured")
		return
	}
	claims, err := auth.ClaimsFromContext(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Token missing")
		return
	}

	revoked, err := h.Sessions.RevokeAll(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to log out")
		return
	}
	if h.Events != nil {
		h.record(h.Events.LogLogoutAll(c.Request.Context(), claims.UserID, revoked, c.ClientIP()))
	}
	respond(c, gin.H{"revoked_sessions": revoked}, "Logged out from all devices")
}

// --- Operational ---

func (h Handlers) Ping(c *gin.Context) {
	respond(c, nil, "pong")
}

// Diagnostics exercises each backing dependency and reports per-dependency
// results. Admin-only through the access matrix.
func (h Handlers) Diagnostics(c *gin.Context) {
	ctx := c.Request.Context()
	stamp := "success-" + time.Now().UTC().Format("2006-01-02-15:04:05")

	redisResult := "fail"
	if h.RDB != nil {
		if err := h.RDB.Set(ctx, "diagnostics:probe", stamp, time.Minute).Err(); err == nil {
			if got, err := h.RDB.Get(ctx, "diagnostics:probe").Result(); err == nil {
				redisResult = got
			}
		}
	}

	dbResult := "fail"
	if h.DB != nil {
		var one int
		if err := h.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err == nil && one == 1 {
			dbResult = stamp
		}
	}

	respond(c, gin.H{"redis": redisResult, "database": dbResult}, "Success")
}

// GetTempSTTAuthCode hands the speech-to-text client its current time-step
// code.
func (h Handlers) GetTempSTTAuthCode(c *gin.Context) {
	if h.AuthCodes == nil {
		respondError(c, http.StatusInternalServerError, "auth codes not configured")
		return
	}
	respond(c, gin.H{"auth_code": h.AuthCodes.Generate()}, "Success")
}

// --- User administration ---

// userListItem hides role information from members who are not staff of the
// requested workspace.
type userListItem struct {
	UserID        int64                         `json:"user_id"`
	Email         string                        `json:"email"`
	FirstName     string                        `json:"first_name"`
	LastName      string                        `json:"last_name"`
	StudentID     string                        `json:"student_id"`
	WorkspaceRole map[string]auth.WorkspaceRole `json:"workspace_role"`
}

// GetUserList pages through users. workspace_id=all lists every user and is
// reserved for system admins; otherwise the caller must be a member of the
// workspace (the matrix grant alone is too coarse, it admits teachers of any
// workspace).
func (h Handlers) GetUserList(c *gin.Context) {
	if h.Users == nil {
		respondError(c, http.StatusInternalServerError, "identity not configured")
		return
	}
	claims, err := auth.ClaimsFromContext(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Token missing")
		return
	}

	workspaceID := c.DefaultQuery("workspace_id", identity.WorkspaceAll)
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 10)

	if workspaceID == identity.WorkspaceAll && !claims.SystemAdmin {
		respondError(c, http.StatusForbidden, accessDeniedMessage)
		return
	}
	if _, member := claims.WorkspaceRole[workspaceID]; !member && !claims.SystemAdmin {
		respondError(c, http.StatusForbidden, accessDeniedMessage)
		return
	}

	// Role visibility: any member may list the workspace, but only its staff
	// see roles.
	staffView := claims.SystemAdmin || claims.WorkspaceRole[workspaceID] == auth.RoleTeacher

	result, err := h.Users.ListWorkspaceUsers(c.Request.Context(), workspaceID, page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch user list")
		return
	}

	items := make([]userListItem, 0, len(result.Items))
	for _, u := range result.Items {
		item := userListItem{
			UserID:        u.UserID,
			Email:         u.Email,
			FirstName:     u.FirstName,
			LastName:      u.LastName,
			StudentID:     u.StudentID,
			WorkspaceRole: map[string]auth.WorkspaceRole{},
		}
		if staffView && workspaceID != identity.WorkspaceAll {
			item.WorkspaceRole[workspaceID] = u.WorkspaceRole[workspaceID]
		}
		items = append(items, item)
	}
	respond(c, gin.H{"items": items, "total": result.Total}, "Success")
}

// userRoleUpdate is the body for both role assignment and membership
// removal; Role is ignored on removal.
type userRoleUpdate struct {
	UserID      int64  `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	Role        string `json:"role"`
}

// SetUserRole assigns a workspace role, creating the membership when absent.
func (h Handlers) SetUserRole(c *gin.Context) {
	if h.Users == nil {
		respondError(c, http.StatusInternalServerError, "identity not configured")
		return
	}
	claims, err := auth.ClaimsFromContext(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Token missing")
		return
	}

	var req userRoleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !canManageWorkspace(claims, req.WorkspaceID) {
		respondError(c, http.StatusForbidden, accessDeniedMessage)
		return
	}

	role := auth.WorkspaceRole(req.Role)
	if _, err := h.Users.SetWorkspaceRole(c.Request.Context(), req.UserID, req.WorkspaceID, role); err != nil {
		switch {
		case errors.Is(err, identity.ErrNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, identity.ErrInvalidArgument):
			respondError(c, http.StatusBadRequest, "invalid role update")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update user role")
		}
		return
	}

	if h.Events != nil {
		h.record(h.Events.LogRoleChange(c.Request.Context(), claims.UserID, req.UserID, req.WorkspaceID, role, c.ClientIP()))
	}
	respond(c, nil, "User role updated successfully")
}

// DeleteUserFromWorkspace removes a membership and its role map entry.
func (h Handlers) DeleteUserFromWorkspace(c *gin.Context) {
	if h.Users == nil {
		respondError(c, http.StatusInternalServerError, "identity not configured")
		return
	}
	claims, err := auth.ClaimsFromContext(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Token missing")
		return
	}

	var req userRoleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !canManageWorkspace(claims, req.WorkspaceID) {
		respondError(c, http.StatusForbidden, accessDeniedMessage)
		return
	}

	if _, err := h.Users.RemoveWorkspaceRole(c.Request.Context(), req.UserID, req.WorkspaceID); err != nil {
		switch {
		case errors.Is(err, identity.ErrNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, identity.ErrMembershipMissing):
			respondError(c, http.StatusNotFound, "User not in this workspace")
		case errors.Is(err, identity.ErrInvalidArgument):
			respondError(c, http.StatusBadRequest, "invalid request")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to remove user from workspace")
		}
		return
	}

	if h.Events != nil {
		h.record(h.Events.Append(c.Request.Context(), authlog.Event{
			Type:        authlog.EventTypeRoleChange,
			UserID:      req.UserID,
			ActorUserID: claims.UserID,
			WorkspaceID: req.WorkspaceID,
			IPAddress:   c.ClientIP(),
			Message:     "removed from workspace",
		}))
	}
	respond(c, nil, "User deleted from workspace successfully")
}

// canManageWorkspace is the per-workspace authority rule: system admins
// everywhere, teachers inside their own workspace.
func canManageWorkspace(claims *auth.Claims, workspaceID string) bool {
	if claims.SystemAdmin {
		return true
	}
	return claims.WorkspaceRole[workspaceID] == auth.RoleTeacher
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
