package auth

import (
	"net"
	"net/http"
	"strings"

	"marginalia/pkg/logger"
	"marginalia/pkg/utils"
)

// Middleware wraps the API with CORS handling, IP whitelisting, API-key role
// resolution, role scoping and per-key rate limiting, in that order.
func Middleware(cfg SecConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogRequest(r)

			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,PATCH,OPTIONS")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-API-Key")
				w.Header().Set("Access-Control-Expose-Headers", "X-Role-Name")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if len(cfg.IPWhitelist) > 0 {
				ip := clientIP(r)
				if !ipWhitelisted(ip, cfg.IPWhitelist) {
					utils.JSONError(w, http.StatusForbidden, "forbidden")
					logger.Warn("request_blocked", "reason", "ip_not_whitelisted", "ip", ip, "path", r.URL.Path)
					return
				}
			}

			role, key := authenticate(r, cfg)

			// probes stay unauthenticated
			if (r.URL.Path == "/healthz" || r.URL.Path == "/readyz") && r.Method == http.MethodGet {
				r.Header.Set("X-Role-Name", "unauth")
				next.ServeHTTP(w, r)
				return
			}

			if role == RoleUnauth {
				utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
				logger.Warn("request_unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
				return
			}
			r.Header.Set("X-Role-Name", role.String())

			if !roleAllowed(role, r) {
				utils.JSONError(w, http.StatusForbidden, "forbidden")
				logger.Warn("request_forbidden", "role", role.String(), "method", r.Method, "path", r.URL.Path)
				return
			}

			if !limiters.Allow(key) {
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				logger.Warn("rate_limited", "path", r.URL.Path)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func ipWhitelisted(ip string, list []string) bool {
	for _, w := range list {
		if ip == w {
			return true
		}
	}
	return false
}

// authenticate resolves the caller role. Prefers Authorization: Bearer,
// falls back to X-API-Key. With no keys configured at all, everyone is admin
// and the limiter keys on client ip.
func authenticate(r *http.Request, cfg SecConfig) (Role, string) {
	if cfg.open() {
		return RoleAdmin, clientIP(r)
	}
	auth := r.Header.Get("Authorization")
	var key string
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		key = strings.TrimSpace(auth[7:])
	}
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	if key == "" {
		return RoleUnauth, clientIP(r)
	}
	if _, ok := cfg.AdminKeys[key]; ok {
		return RoleAdmin, key
	}
	if _, ok := cfg.EditorKeys[key]; ok {
		return RoleEditor, key
	}
	if _, ok := cfg.ViewerKeys[key]; ok {
		return RoleViewer, key
	}
	return RoleUnauth, key
}

// roleAllowed scopes viewer keys to reads and editor keys to the annotation
// and export surface. Admin sees everything, including sweep triggers.
func roleAllowed(role Role, r *http.Request) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleEditor:
		return !strings.HasPrefix(r.URL.Path, "/v1/admin")
	case RoleViewer:
		if strings.HasPrefix(r.URL.Path, "/v1/admin") {
			return false
		}
		return r.Method == http.MethodGet || r.Method == http.MethodHead
	}
	return false
}
