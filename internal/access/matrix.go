package access

import "strings"

// Rule grants one endpoint pattern to a set of roles. Patterns are logical
// paths (prefix already stripped by NormalizePath); a segment written as
// {name} matches any single literal segment.
type Rule struct {
	Pattern string
	Allow   Flags
}

// Matrix is the static endpoint table the gate consults. It is pure data,
// immutable after construction and safe for concurrent reads. Declaration
// order is the priority order among templated patterns.
type Matrix struct {
	rules []Rule
	exact map[string]Rule
}

func NewMatrix(rules []Rule) *Matrix {
	m := &Matrix{
		rules: append([]Rule(nil), rules...),
		exact: make(map[string]Rule, len(rules)),
	}
	for _, r := range m.rules {
		if strings.Contains(r.Pattern, "{") {
			continue
		}
		if _, ok := m.exact[r.Pattern]; !ok {
			m.exact[r.Pattern] = r
		}
	}
	return m
}

var (
	everyone       = Flags{Admin: true, Teacher: true, Student: true, WorkspaceAdmin: true}
	workspaceStaff = Flags{Admin: true, Teacher: true, WorkspaceAdmin: true}
	adminOnly      = Flags{Admin: true}
)

// DefaultMatrix lists every gated endpoint. Endpoints absent from the table
// are denied for everyone, so new routes must be registered here before they
// can serve authenticated traffic.
func DefaultMatrix() *Matrix {
	return NewMatrix([]Rule{
		{"/diagnostics", adminOnly},
		{"/agent/{agent_id}", everyone},
		{"/agent/get/{agent_id}", everyone},
		{"/agents/add_agent", workspaceStaff},
		{"/agents/delete_agent", workspaceStaff},
		{"/agents/update_agent", workspaceStaff},
		{"/agents/agents", everyone},
		{"/agents/agent/{agent_id}", everyone},
		{"/feedback/rating", everyone},
		{"/threads/get_thread/{thread_id}", everyone},
		{"/threads/get_thread_list", everyone},
		{"/sso", everyone},
		{"/logout_all_devices", everyone},
		{"/stream_chat", everyone},
		{"/get_tts_file", everyone},
		{"/get_temp_stt_auth_code", everyone},
		{"/get_new_thread", everyone},
		{"/access/get_user_list", workspaceStaff},

		// workspace endpoints
		{"/workspace/create_workspace", adminOnly},
		{"/workspace/set_workspace_status", workspaceStaff},
		{"/workspace/add_users_via_csv", workspaceStaff},
		{"/workspace/student_join_workspace", everyone},
		{"/workspace/delete_user_from_workspace", workspaceStaff},
		{"/workspace/set_user_role", workspaceStaff},
		{"/workspace/set_user_role_with_student_id", workspaceStaff},
		{"/workspace/get_workspace_list", adminOnly},
		{"/workspace/delete_workspace/{workspace}", adminOnly},

		// file and chat endpoints
		{"/test_query", everyone},
		{"/test_query/history", everyone},
		{"/test_query/clear_history", everyone},
		{"/upload_file", everyone},
		{"/get_presigned_url_for_file", everyone},
		{"/ping", everyone},
	})
}

// publicPaths bypass the gate entirely, matrix contents notwithstanding.
// /generate_access_token must stay here: clients call it carrying only a
// refresh token once their access token has expired.
var publicPaths = map[string]struct{}{
	"/":                      {},
	"/ping":                  {},
	"/sso":                   {},
	"/docs":                  {},
	"/openapi.json":          {},
	"/generate_access_token": {},
}

// IsPublic reports whether the logical path skips authorization.
func IsPublic(path string) bool {
	_, ok := publicPaths[path]
	return ok
}
