package auth

import "testing"

func TestParseBearer(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		access  string
		refresh string
	}{
		{"both tokens", "Bearer access=aaa&refresh=rrr", "aaa", "rrr"},
		{"access only", "Bearer access=aaa", "aaa", ""},
		{"refresh only", "Bearer refresh=rrr", "", "rrr"},
		{"reversed order", "Bearer refresh=rrr&access=aaa", "aaa", "rrr"},
		{"empty values are missing", "Bearer access=&refresh=", "", ""},
		{"value keeps inner equals", "Bearer access=a=b&refresh=r", "a=b", "r"},
		{"unknown keys ignored", "Bearer foo=1&access=aaa", "aaa", ""},
		{"pair without equals ignored", "Bearer access&refresh=rrr", "", "rrr"},
		{"no bearer prefix", "access=aaa&refresh=rrr", "", ""},
		{"plain bearer token", "Bearer sometoken", "", ""},
		{"empty header", "", "", ""},
		{"surrounding whitespace", "  Bearer access=aaa", "aaa", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseBearer(tc.header)
			if got.Access != tc.access || got.Refresh != tc.refresh {
				t.Fatalf("ParseBearer(%q) = %+v, want access=%q refresh=%q", tc.header, got, tc.access, tc.refresh)
			}
		})
	}
}
