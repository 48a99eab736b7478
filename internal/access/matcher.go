package access

import "strings"

// Requests arrive as /v1/<env>/<audience>/<logical path>; the matrix keys on
// the logical path alone.
const prefixSegments = 4

// NormalizePath strips the version and environment prefix, exactly the first
// four slash-delimited fields, and returns the logical path with a leading
// slash.
func NormalizePath(raw string) string {
	parts := strings.Split(raw, "/")
	if len(parts) <= prefixSegments {
		return "/"
	}
	return "/" + strings.Join(parts[prefixSegments:], "/")
}

// Match resolves a logical path to its rule. An exact entry decides
// outright. Otherwise templated patterns are scanned in declaration order
// and the first whose segments all match wins. No match means no rule, which
// the gate treats as deny.
func (m *Matrix) Match(path string) (Rule, bool) {
	if r, ok := m.exact[path]; ok {
		return r, true
	}

	pathParts := strings.Split(path, "/")
	for _, r := range m.rules {
		if !strings.Contains(r.Pattern, "{") {
			continue
		}
		if matchSegments(strings.Split(r.Pattern, "/"), pathParts) {
			return r, true
		}
	}
	return Rule{}, false
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i := range pattern {
		if strings.Contains(pattern[i], "{") {
			continue
		}
		if pattern[i] != path[i] {
			return false
		}
	}
	return true
}
