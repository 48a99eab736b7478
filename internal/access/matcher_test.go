package access

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"/v1/dev/admin/ping", "/ping"},
		{"/v1/prod/user/agents/agent/123", "/agents/agent/123"},
		{"/v1/dev/user/workspace/set_user_role", "/workspace/set_user_role"},
		{"/v1/dev/admin", "/"},
		{"/", "/"},
		{"", "/"},
	}
	for _, tc := range cases {
		if got := NormalizePath(tc.raw); got != tc.want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestMatch_ExactEntryDecides(t *testing.T) {
	m := NewMatrix([]Rule{
		{"/agents/{anything}", everyone},
		{"/agents/agents", adminOnly},
	})

	r, ok := m.Match("/agents/agents")
	if !ok {
		t.Fatalf("expected a match")
	}
	if r.Allow != adminOnly {
		t.Fatalf("exact entry must win over templates, got %+v", r)
	}
}

func TestMatch_TemplatedSegments(t *testing.T) {
	m := NewMatrix([]Rule{{"/agents/agent/{agent_id}", everyone}})

	for _, path := range []string{"/agents/agent/123", "/agents/agent/abc-def"} {
		if _, ok := m.Match(path); !ok {
			t.Fatalf("expected %q to match", path)
		}
	}
	if _, ok := m.Match("/agents/agent/123/extra"); ok {
		t.Fatalf("segment count mismatch must not match")
	}
	if _, ok := m.Match("/agents/other/123"); ok {
		t.Fatalf("literal segment mismatch must not match")
	}
}

func TestMatch_DeclarationOrderWins(t *testing.T) {
	m := NewMatrix([]Rule{
		{"/threads/{a}", adminOnly},
		{"/{x}/get_thread_list", everyone},
	})

	r, ok := m.Match("/threads/get_thread_list")
	if !ok {
		t.Fatalf("expected a match")
	}
	if r.Pattern != "/threads/{a}" {
		t.Fatalf("first declared pattern must win, got %q", r.Pattern)
	}
}

func TestMatch_UnlistedPathHasNoRule(t *testing.T) {
	if _, ok := DefaultMatrix().Match("/not/listed"); ok {
		t.Fatalf("unlisted paths must stay unmatched")
	}
}

func TestDefaultMatrixEntries(t *testing.T) {
	m := DefaultMatrix()

	r, ok := m.Match("/diagnostics")
	if !ok || r.Allow != adminOnly {
		t.Fatalf("diagnostics should be admin only, got %+v ok=%v", r, ok)
	}

	r, ok = m.Match("/workspace/set_user_role")
	if !ok || r.Allow != workspaceStaff {
		t.Fatalf("set_user_role should be staff only, got %+v ok=%v", r, ok)
	}

	if _, ok := m.Match("/agents/agent/42"); !ok {
		t.Fatalf("templated agent route should match")
	}
}

func TestIsPublic(t *testing.T) {
	for _, path := range []string{"/", "/ping", "/sso", "/generate_access_token"} {
		if !IsPublic(path) {
			t.Fatalf("expected %q to be public", path)
		}
	}
	if IsPublic("/workspace/create_workspace") {
		t.Fatalf("gated path must not be public")
	}
}
