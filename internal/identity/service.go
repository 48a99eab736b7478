package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educhat-platform/internal/auth"
	"educhat-platform/pkg/utils"
)

// Service owns user identity rows and their workspace memberships.
//
// Role invariants:
// - users.workspace_role and workspace_members change together, inside one
//   transaction. A half-updated role state must never be visible.
// - Role values come from the closed student/teacher/pending set.
//
// Identity is keyed by email: first successful SSO login creates the row,
// every later login bumps last_login.
type Service struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

// WorkspaceAll selects every user regardless of membership. Reserved; not a
// valid workspace id for role mutations.
const WorkspaceAll = "all"

var (
	ErrNotFound          = errors.New("user not found")
	ErrMembershipMissing = errors.New("user not in workspace")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// LoginInfo carries the attributes the SSO server asserts about a user.
type LoginInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	StudentID string `json:"student_id"`
}

// Login records a successful SSO authentication and returns the identity row,
// creating it on first sight of the email.
func (s *Service) Login(ctx context.Context, info LoginInfo) (User, error) {
	if info.Email == "" || info.StudentID == "" {
		return User{}, ErrInvalidArgument
	}

	now := s.clock().UTC()

	var out User
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		existing, ok, err := findUserByEmail(ctx, tx, info.Email)
		if err != nil {
			return err
		}
		if ok {
			if err := touchLastLogin(ctx, tx, existing.UserID, now); err != nil {
				return err
			}
			existing.LastLogin = now
			out = existing
			return nil
		}

		u := User{
			FirstName:     info.FirstName,
			LastName:      info.LastName,
			Email:         info.Email,
			StudentID:     info.StudentID,
			WorkspaceRole: map[string]auth.WorkspaceRole{},
			CreatedAt:     now,
			LastLogin:     now,
		}
		id, err := insertUser(ctx, tx, u)
		if err != nil {
			return err
		}
		u.UserID = id
		out = u
		return nil
	})

	return out, err
}

func (s *Service) GetUser(ctx context.Context, userID int64) (User, error) {
	if userID <= 0 {
		return User{}, ErrInvalidArgument
	}
	return getUser(ctx, s.db, userID)
}

// SetWorkspaceRole assigns a role, creating the membership row when absent
// and rewriting the user's role map alongside it.
func (s *Service) SetWorkspaceRole(ctx context.Context, userID int64, workspaceID string, role auth.WorkspaceRole) (User, error) {
	if userID <= 0 || workspaceID == "" || workspaceID == WorkspaceAll {
		return User{}, ErrInvalidArgument
	}
	if !role.IsValid() {
		return User{}, ErrInvalidArgument
	}

	now := s.clock().UTC()

	var out User
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		u, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		m := Membership{
			WorkspaceID: workspaceID,
			UserID:      u.UserID,
			Role:        role,
			StudentID:   u.StudentID,
		}
		if err := upsertMembership(ctx, tx, m, now); err != nil {
			return err
		}

		u.WorkspaceRole[workspaceID] = role
		if err := saveWorkspaceRoles(ctx, tx, u.UserID, u.WorkspaceRole); err != nil {
			return err
		}
		out = u
		return nil
	})

	return out, err
}

// RemoveWorkspaceRole drops the user from a workspace, deleting the
// membership row and its role map entry together.
func (s *Service) RemoveWorkspaceRole(ctx context.Context, userID int64, workspaceID string) (User, error) {
	if userID <= 0 || workspaceID == "" || workspaceID == WorkspaceAll {
		return User{}, ErrInvalidArgument
	}

	var out User
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		u, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		removed, err := deleteMembership(ctx, tx, workspaceID, u.UserID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrMembershipMissing
		}

		delete(u.WorkspaceRole, workspaceID)
		if err := saveWorkspaceRoles(ctx, tx, u.UserID, u.WorkspaceRole); err != nil {
			return err
		}
		out = u
		return nil
	})

	return out, err
}

type UserPage struct {
	Items []User `json:"items"`
	Total int64  `json:"total"`
}

// ListWorkspaceUsers pages through a workspace's members ordered by user id,
// or through every user when workspaceID is WorkspaceAll.
func (s *Service) ListWorkspaceUsers(ctx context.Context, workspaceID string, page, pageSize int) (UserPage, error) {
	if workspaceID == "" || page < 1 || pageSize < 1 {
		return UserPage{}, ErrInvalidArgument
	}

	total, err := countUsers(ctx, s.db, workspaceID)
	if err != nil {
		return UserPage{}, err
	}
	items, err := listUsers(ctx, s.db, workspaceID, pageSize, (page-1)*pageSize)
	if err != nil {
		return UserPage{}, err
	}
	if items == nil {
		items = []User{}
	}
	return UserPage{Items: items, Total: total}, nil
}
