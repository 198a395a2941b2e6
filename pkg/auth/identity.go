// Package auth gates every API request: CORS, optional IP whitelist, API-key
// role resolution and per-key rate limiting. The service is usually bound to
// loopback with no keys configured, in which case every request resolves to
// the admin role.
package auth

import "net/http"

// Role is the resolved caller role for a request.
type Role int

const (
	RoleUnauth Role = iota
	RoleViewer
	RoleEditor
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleViewer:
		return "viewer"
	case RoleEditor:
		return "editor"
	case RoleAdmin:
		return "admin"
	default:
		return "unauth"
	}
}

// SecConfig drives the gateway middleware. Empty key sets disable
// authentication entirely (local single-user mode).
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	IPWhitelist    []string
	ViewerKeys     map[string]struct{}
	EditorKeys     map[string]struct{}
	AdminKeys      map[string]struct{}
}

func (c SecConfig) open() bool {
	return len(c.ViewerKeys) == 0 && len(c.EditorKeys) == 0 && len(c.AdminKeys) == 0
}

// RoleFromRequest returns the role the gateway resolved for the request.
func RoleFromRequest(r *http.Request) Role {
	switch r.Header.Get("X-Role-Name") {
	case "viewer":
		return RoleViewer
	case "editor":
		return RoleEditor
	case "admin":
		return RoleAdmin
	}
	return RoleUnauth
}
