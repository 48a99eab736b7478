package sso

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a CAS-style SSO server. The only call we make is
// serviceValidate: exchange a one-time service ticket for the identity the
// SSO server asserts.
type Client struct {
	httpClient *http.Client
	serverURL  string
}

func NewClient(serverURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		serverURL:  strings.TrimRight(serverURL, "/"),
	}
}

var (
	ErrTicketRejected    = errors.New("sso: ticket rejected")
	ErrMalformedResponse = errors.New("sso: malformed validation response")
)

// Principal is the identity asserted by the SSO server.
type Principal struct {
	// StudentID is the login name the server authenticated.
	StudentID string

	// Attributes holds the asserted directory attributes keyed by local tag
	// name (givenName, sn, mail, ...).
	Attributes map[string]string
}

// Validation responses are small XML documents; anything bigger is garbage.
const maxValidateBody = 1 << 20

// ValidateTicket asks the SSO server whether a ticket is good for the given
// service URL and returns the asserted principal.
func (c *Client) ValidateTicket(ctx context.Context, ticket, serviceURL string) (Principal, error) {
	u, err := url.Parse(c.serverURL + "/serviceValidate")
	if err != nil {
		return Principal{}, fmt.Errorf("sso: bad server url: %w", err)
	}
	q := u.Query()
	q.Set("ticket", ticket)
	q.Set("service", serviceURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Principal{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Principal{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxValidateBody))
	if err != nil {
		return Principal{}, err
	}
	return parseValidateResponse(body)
}

// CAS serviceValidate response shapes. Tags are matched by local name, so
// the cas: namespace prefix is irrelevant.

type serviceResponse struct {
	XMLName xml.Name     `xml:"serviceResponse"`
	Success *authSuccess `xml:"authenticationSuccess"`
	Failure *authFailure `xml:"authenticationFailure"`
}

type authSuccess struct {
	User       string       `xml:"user"`
	Attributes attributeSet `xml:"attributes"`
}

type attributeSet struct {
	Items []attribute `xml:",any"`
}

type attribute struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type authFailure struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

func parseValidateResponse(body []byte) (Principal, error) {
	var sr serviceResponse
	if err := xml.Unmarshal(body, &sr); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch {
	case sr.Success != nil:
		user := strings.TrimSpace(sr.Success.User)
		if user == "" {
			return Principal{}, ErrMalformedResponse
		}
		p := Principal{StudentID: user, Attributes: make(map[string]string, len(sr.Success.Attributes.Items))}
		for _, a := range sr.Success.Attributes.Items {
			p.Attributes[a.XMLName.Local] = strings.TrimSpace(a.Value)
		}
		return p, nil
	case sr.Failure != nil:
		return Principal{}, fmt.Errorf("%w: %s", ErrTicketRejected, strings.TrimSpace(sr.Failure.Code))
	default:
		return Principal{}, ErrMalformedResponse
	}
}
