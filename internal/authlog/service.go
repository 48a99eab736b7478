package authlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"educhat-platform/internal/auth"

	"github.com/google/uuid"
)

// Repository is the persistence contract for auth events.
//
// It MUST be append-only. No Update/Delete methods are provided.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records authentication lifecycle events.
//
// IMPORTANT:
// - The log is internal-only. Do not expose these records to end users.
// - Callers should treat logging as best-effort: log the failure and move
//   on, never fail the auth flow itself.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("authlog: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("authlog: repository not configured")
	}
	if e.UserID <= 0 {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogLogin records a successful SSO authentication.
func (s *Service) LogLogin(ctx context.Context, userID int64, email, ip string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeLogin,
		UserID:    userID,
		Email:     email,
		IPAddress: ip,
		Message:   "sso login",
	})
}

// LogRedeem records a refresh credential minting a new session token.
func (s *Service) LogRedeem(ctx context.Context, userID int64, ip string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeRedeem,
		UserID:    userID,
		IPAddress: ip,
		Message:   "access token issued from refresh credential",
	})
}

// LogLogoutAll records a logout-everywhere request and how many credentials
// it revoked.
func (s *Service) LogLogoutAll(ctx context.Context, userID int64, revoked int64, ip string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeLogoutAll,
		UserID:    userID,
		IPAddress: ip,
		Message:   "all devices logged out",
		Metadata:  fmt.Sprintf(`{"revoked":%d}`, revoked),
	})
}

// LogRoleChange records who changed whose role, in which workspace.
func (s *Service) LogRoleChange(ctx context.Context, actorUserID, userID int64, workspaceID string, role auth.WorkspaceRole, ip string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeRoleChange,
		UserID:      userID,
		ActorUserID: actorUserID,
		WorkspaceID: workspaceID,
		Role:        string(role),
		IPAddress:   ip,
		Message:     "workspace role changed",
	})
}
