package auth

import (
	"net/url"
	"path"
	"strings"
)

// AppSubdomains lists the subdomains that host console apps.
var AppSubdomains = []string{"hr", "erp", "payroll", "procurement"}

const dashboardPrefix = "/dashboard"

// Redirect is the post-login destination.
type Redirect struct {
	Subdomain string `json:"subdomain"`
	Path      string `json:"path"`
	URL       string `json:"url"`
}

// Redirector resolves login callbacks onto app subdomains.
type Redirector struct {
	scheme     string
	rootDomain string
	fallback   string
	known      map[string]struct{}
}

// NewRedirector builds a Redirector. apps defaults to AppSubdomains.
func NewRedirector(scheme, rootDomain, defaultSubdomain string, apps ...string) Redirector {
	if scheme == "" {
		scheme = "https"
	}
	if len(apps) == 0 {
		apps = AppSubdomains
	}
	known := make(map[string]struct{}, len(apps)+1)
	for _, app := range apps {
		known[strings.ToLower(app)] = struct{}{}
	}
	defaultSubdomain = strings.ToLower(strings.TrimSpace(defaultSubdomain))
	if defaultSubdomain == "" {
		defaultSubdomain = "hr"
	}
	known[defaultSubdomain] = struct{}{}
	return Redirector{scheme: scheme, rootDomain: rootDomain, fallback: defaultSubdomain, known: known}
}

// Resolve maps a callback path and optional subdomain to a redirect target.
// Non-local callbacks collapse to "/". The legacy /dashboard prefix points at the
// default app. Without an explicit subdomain the first path segment is used when it
// names an app, otherwise the default. The subdomain prefix is stripped from the path.
func (r Redirector) Resolve(callbackURL, subdomain string) Redirect {
	p, query := localPath(callbackURL)

	if p == dashboardPrefix || strings.HasPrefix(p, dashboardPrefix+"/") {
		p = "/" + r.fallback + strings.TrimPrefix(p, dashboardPrefix)
	}

	sub := strings.ToLower(strings.TrimSpace(subdomain))
	if !r.isApp(sub) {
		sub = ""
	}
	if sub == "" {
		if seg := firstSegment(p); r.isApp(seg) {
			sub = seg
		} else {
			sub = r.fallback
		}
	}

	p = stripSegment(p, sub)

	target := url.URL{
		Scheme:   r.scheme,
		Host:     sub + "." + r.rootDomain,
		Path:     p,
		RawQuery: query,
	}
	return Redirect{Subdomain: sub, Path: p, URL: target.String()}
}

func (r Redirector) isApp(name string) bool {
	if name == "" {
		return false
	}
	_, ok := r.known[name]
	return ok
}

func localPath(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/", ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/", ""
	}
	return path.Clean(u.Path), u.RawQuery
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(p)
}

func stripSegment(p, segment string) string {
	prefix := "/" + segment
	switch {
	case strings.EqualFold(p, prefix):
		return "/"
	case len(p) > len(prefix) && strings.EqualFold(p[:len(prefix)], prefix) && p[len(prefix)] == '/':
		return p[len(prefix):]
	default:
		return p
	}
}
