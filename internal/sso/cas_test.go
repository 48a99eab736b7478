package sso

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const validateSuccessBody = `<?xml version="1.0" encoding="UTF-8"?>
<cas:serviceResponse xmlns:cas="http://www.yale.edu/tp/cas">
  <cas:authenticationSuccess>
    <cas:user>axl123</cas:user>
    <cas:attributes>
      <cas:givenName>Ada</cas:givenName>
      <cas:sn>Lovelace</cas:sn>
      <cas:mail>axl123@case.edu</cas:mail>
    </cas:attributes>
  </cas:authenticationSuccess>
</cas:serviceResponse>`

const validateFailureBody = `<?xml version="1.0" encoding="UTF-8"?>
<cas:serviceResponse xmlns:cas="http://www.yale.edu/tp/cas">
  <cas:authenticationFailure code="INVALID_TICKET">
    Ticket ST-12345 not recognized
  </cas:authenticationFailure>
</cas:serviceResponse>`

func TestValidateTicket_Success(t *testing.T) {
	const service = "https://chat.example.edu/v1/prod/user/sso?came_from=https://app.example.edu/cb"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/serviceValidate" {
			t.Errorf("path = %q, want /serviceValidate", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("ticket"); got != "ST-1" {
			t.Errorf("ticket = %q, want ST-1", got)
		}
		if got := q.Get("service"); got != service {
			t.Errorf("service = %q, want %q", got, service)
		}
		fmt.Fprint(w, validateSuccessBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	p, err := c.ValidateTicket(context.Background(), "ST-1", service)
	if err != nil {
		t.Fatalf("ValidateTicket: %v", err)
	}
	if p.StudentID != "axl123" {
		t.Fatalf("StudentID = %q, want axl123", p.StudentID)
	}
	if got := p.Attributes[AttrGivenName]; got != "Ada" {
		t.Fatalf("givenName = %q, want Ada", got)
	}
	if got := p.Attributes[AttrSurname]; got != "Lovelace" {
		t.Fatalf("sn = %q, want Lovelace", got)
	}
	if got := p.Attributes[AttrMail]; got != "axl123@case.edu" {
		t.Fatalf("mail = %q, want axl123@case.edu", got)
	}
}

func TestValidateTicket_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, validateFailureBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ValidateTicket(context.Background(), "ST-used", "https://chat.example.edu/v1/prod/user/sso?came_from=x")
	if !errors.Is(err, ErrTicketRejected) {
		t.Fatalf("err = %v, want ErrTicketRejected", err)
	}
	if !strings.Contains(err.Error(), "INVALID_TICKET") {
		t.Fatalf("err = %v, want failure code in message", err)
	}
}

func TestValidateTicket_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not xml", "nope, not xml"},
		{"wrong root", "<html><body>login page</body></html>"},
		{"empty response", `<cas:serviceResponse xmlns:cas="http://www.yale.edu/tp/cas"></cas:serviceResponse>`},
		{"success without user", `<cas:serviceResponse xmlns:cas="http://www.yale.edu/tp/cas"><cas:authenticationSuccess></cas:authenticationSuccess></cas:serviceResponse>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second)
			_, err := c.ValidateTicket(context.Background(), "ST-1", "https://chat.example.edu/v1/dev/user/sso?came_from=x")
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("err = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestValidateTicket_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ValidateTicket(context.Background(), "ST-1", "https://chat.example.edu/v1/dev/user/sso?came_from=x")
	if err == nil {
		t.Fatal("expected error talking to a closed server")
	}
}
