package auth

import "strings"

// BearerTokens carries the two credentials packed into the Authorization
// header. The wire format is non-standard:
//
//	Authorization: Bearer access=<session token>&refresh=<opaque value>
//
// i.e. an ampersand-delimited key=value list after the Bearer prefix. Either
// value may be absent independently.
type BearerTokens struct {
	Access  string
	Refresh string
}

// ParseBearer unpacks the header. Pairs split on the FIRST '=' only, so
// values keep any '=' they contain; unknown keys and malformed pairs are
// ignored; empty values count as missing.
func ParseBearer(header string) BearerTokens {
	var out BearerTokens

	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "Bearer ") {
		return out
	}

	for _, pair := range strings.Split(header[len("Bearer "):], "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		switch key {
		case "access":
			out.Access = value
		case "refresh":
			out.Refresh = value
		}
	}
	return out
}
