// Unit tests cover the ticket guard and redirect construction. The full
// login flow spans the SSO server, Postgres, and Redis and is best covered
// by integration tests.
package sso

import (
	"context"
	"errors"
	"testing"
)

func TestLogin_RequiresTicket(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, "chat.example.edu", "prod")

	res, err := svc.Login(context.Background(), "   ", "https://app.example.edu/cb")
	if !errors.Is(err, ErrTicketRequired) {
		t.Fatalf("err = %v, want ErrTicketRequired", err)
	}
	want := "https://app.example.edu/cb?refresh=error&access=error"
	if res.RedirectURL != want {
		t.Fatalf("RedirectURL = %q, want %q", res.RedirectURL, want)
	}
}

func TestServiceURL(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, "chat.example.edu", "prod")

	got := svc.serviceURL("https://app.example.edu/cb")
	want := "https://chat.example.edu/v1/prod/user/sso?came_from=https://app.example.edu/cb"
	if got != want {
		t.Fatalf("serviceURL = %q, want %q", got, want)
	}
}

func TestRedirectTargets(t *testing.T) {
	got := successRedirect("https://app.example.edu/cb", "R1", "A1")
	want := "https://app.example.edu/cb?refresh=R1&access=A1"
	if got != want {
		t.Fatalf("successRedirect = %q, want %q", got, want)
	}

	// An absent came_from still produces a relative redirect target.
	if got := errorRedirect(""); got != "?refresh=error&access=error" {
		t.Fatalf("errorRedirect = %q", got)
	}
}
