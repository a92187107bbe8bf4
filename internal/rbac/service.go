package rbac

import (
	"sort"
	"strings"
)

// Service answers route permission questions.
type Service struct {
	routes []RoutePermission
}

// NewService builds a Service from a prefix map. A nil map uses RoutePermissions.
func NewService(routes map[string][]string) *Service {
	if routes == nil {
		routes = RoutePermissions
	}
	list := make([]RoutePermission, 0, len(routes))
	for prefix, perms := range routes {
		prefix = "/" + strings.Trim(prefix, "/")
		list = append(list, RoutePermission{Prefix: prefix, Permissions: normalizePermissions(perms)})
	}
	sort.Slice(list, func(i, j int) bool {
		if len(list[i].Prefix) != len(list[j].Prefix) {
			return len(list[i].Prefix) > len(list[j].Prefix)
		}
		return list[i].Prefix < list[j].Prefix
	})
	return &Service{routes: list}
}

// Required returns the permissions for path. The longest matching prefix wins;
// ok is false when no prefix matches.
func (s *Service) Required(path string) ([]string, bool) {
	for _, route := range s.routes {
		if matchPrefix(path, route.Prefix) {
			return route.Permissions, true
		}
	}
	return nil, false
}

// Allowed reports whether granted opens path.
func (s *Service) Allowed(path string, granted []string) bool {
	required, ok := s.Required(path)
	if !ok {
		return true
	}
	return hasAnyPermission(granted, required)
}

// AllowedPrefixes lists the prefixes granted opens, sorted.
func (s *Service) AllowedPrefixes(granted []string) []string {
	out := make([]string, 0, len(s.routes))
	for _, route := range s.routes {
		if hasAnyPermission(granted, route.Permissions) {
			out = append(out, route.Prefix)
		}
	}
	sort.Strings(out)
	return out
}

// Routes returns the route map ordered by prefix.
func (s *Service) Routes() []RoutePermission {
	out := make([]RoutePermission, len(s.routes))
	copy(out, s.routes)
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

func matchPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
