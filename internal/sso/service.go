package sso

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"educhat-platform/internal/identity"
	"educhat-platform/internal/session"
	"educhat-platform/pkg/utils"
)

// Directory attribute names asserted by the SSO server.
const (
	AttrGivenName = "givenName"
	AttrSurname   = "sn"
	AttrMail      = "mail"
)

var (
	ErrTicketRequired = errors.New("sso: ticket is required")
	ErrTicketReplayed = errors.New("sso: ticket already used")
)

// Tickets are short-lived; guarding them for a few minutes is enough to
// cover the validation window.
const ticketGuardTTL = 5 * time.Minute

// Service drives the browser login flow: claim the one-shot ticket, validate
// it with the SSO server, upsert the user record, mint a refresh credential
// plus a first access token, and compute where to send the browser.
type Service struct {
	client   *Client
	users    *identity.Service
	sessions *session.Service
	rdb      *redis.Client

	// domain and env shape the callback URL the SSO server compares the
	// ticket against (https://<domain>/v1/<env>/user/sso).
	domain string
	env    string
}

func NewService(client *Client, users *identity.Service, sessions *session.Service, rdb *redis.Client, domain, env string) *Service {
	return &Service{
		client:   client,
		users:    users,
		sessions: sessions,
		rdb:      rdb,
		domain:   domain,
		env:      env,
	}
}

// LoginResult carries the redirect target plus the identity that logged in.
// RedirectURL is always set: on failure it points at the client's error
// landing so the browser is never left hanging.
type LoginResult struct {
	RedirectURL string
	UserID      int64
	Email       string
}

func (s *Service) Login(ctx context.Context, ticket, cameFrom string) (LoginResult, error) {
	fail := LoginResult{RedirectURL: errorRedirect(cameFrom)}

	if strings.TrimSpace(ticket) == "" {
		return fail, ErrTicketRequired
	}

	// Tickets are one-shot. Claim before validating so a replayed ticket
	// never reaches the SSO server twice.
	fresh, err := utils.ClaimSingleUse(ctx, s.rdb, "sso:ticket:"+ticket, ticketGuardTTL)
	if err != nil {
		return fail, err
	}
	if !fresh {
		return fail, ErrTicketReplayed
	}

	principal, err := s.client.ValidateTicket(ctx, ticket, s.serviceURL(cameFrom))
	if err != nil {
		return fail, err
	}

	user, err := s.users.Login(ctx, identity.LoginInfo{
		Email:     principal.Attributes[AttrMail],
		FirstName: principal.Attributes[AttrGivenName],
		LastName:  principal.Attributes[AttrSurname],
		StudentID: principal.StudentID,
	})
	if err != nil {
		return fail, err
	}

	refresh, err := s.sessions.IssueRefresh(ctx, user.UserID)
	if err != nil {
		return fail, err
	}
	access, _, err := s.sessions.Redeem(ctx, refresh)
	if err != nil {
		return fail, err
	}

	return LoginResult{
		RedirectURL: successRedirect(cameFrom, refresh, access),
		UserID:      user.UserID,
		Email:       user.Email,
	}, nil
}

// serviceURL is the callback URL registered with the SSO server. The server
// compares it literally against the service the ticket was issued for, so
// came_from is embedded as-is.
func (s *Service) serviceURL(cameFrom string) string {
	return fmt.Sprintf("https://%s/v1/%s/user/sso?came_from=%s", s.domain, s.env, cameFrom)
}

func successRedirect(cameFrom, refresh, access string) string {
	return fmt.Sprintf("%s?refresh=%s&access=%s", cameFrom, refresh, access)
}

func errorRedirect(cameFrom string) string {
	return fmt.Sprintf("%s?refresh=error&access=error", cameFrom)
}
