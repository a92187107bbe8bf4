package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

const (
	signInMessage    = "Please sign in"
	forbiddenMessage = "You do not have access to this page"
)

// Middleware gates handlers on the permissions cached in the session.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// permissionSet is a lower-cased lookup of granted permission codes.
type permissionSet map[string]struct{}

func newPermissionSet(granted []string) permissionSet {
	set := make(permissionSet, len(granted))
	for _, p := range granted {
		set[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}
	return set
}

func (s permissionSet) any(required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, p := range required {
		if _, ok := s[p]; ok {
			return true
		}
	}
	return false
}

func (s permissionSet) all(required []string) bool {
	for _, p := range required {
		if _, ok := s[p]; !ok {
			return false
		}
	}
	return true
}

// RequireRoute checks the request path against the route map.
func (m Middleware) RequireRoute(next http.Handler) http.Handler {
	return m.guard("route", next, func(r *http.Request, granted []string) bool {
		return m.Service.Allowed(r.URL.Path, granted)
	})
}

// RequireAny admits sessions holding at least one of perms.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return m.guard("any", next, func(_ *http.Request, granted []string) bool {
			return newPermissionSet(granted).any(required)
		})
	}
}

// RequireAll admits sessions holding every one of perms.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return m.guard("all", next, func(_ *http.Request, granted []string) bool {
			return newPermissionSet(granted).all(required)
		})
	}
}

// guard answers 401 for anonymous sessions and 403 when allow refuses.
func (m Middleware) guard(mode string, next http.Handler, allow func(*http.Request, []string) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || strings.TrimSpace(sess.User()) == "" {
			httpx.Fail(w, http.StatusUnauthorized, signInMessage)
			return
		}
		if !allow(r, shared.PermissionsFromSession(sess)) {
			if m.Logger != nil {
				m.Logger.Info("rbac denied",
					slog.String("mode", mode),
					slog.String("path", r.URL.Path),
					slog.String("user", sess.User()))
			}
			httpx.Fail(w, http.StatusForbidden, forbiddenMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// normalizePermissions lower-cases, trims and de-duplicates perms, keeping
// first-seen order.
func normalizePermissions(perms []string) []string {
	out := make([]string, 0, len(perms))
	seen := make(map[string]bool, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func hasAnyPermission(granted, required []string) bool {
	return newPermissionSet(granted).any(required)
}

// HasAny reports whether granted holds at least one of perms.
func HasAny(granted []string, perms ...string) bool {
	return hasAnyPermission(granted, normalizePermissions(perms))
}
