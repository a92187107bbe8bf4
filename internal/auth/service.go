package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// Service wraps authentication and company-context rules.
type Service struct {
	repo       Repository
	sealer     *shared.TokenSealer
	redirector Redirector
	audit      *shared.AuditLogger
	validate   *validator.Validate
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new Service. audit and logger may be nil.
func NewService(repo Repository, sealer *shared.TokenSealer, redirector Redirector, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		sealer:     sealer,
		redirector: redirector,
		audit:      audit,
		validate:   validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// Login exchanges credentials with the backend and stores the resulting
// principal in sess. The caller renews the session id beforehand.
func (s *Service) Login(ctx context.Context, sess *shared.Session, creds Credentials) (Redirect, error) {
	if sess == nil {
		return Redirect{}, shared.ErrUnauthenticated
	}
	if err := s.validate.Struct(creds); err != nil {
		return Redirect{}, httpx.Invalid("Email and password are required")
	}

	res, err := s.repo.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, httpx.ErrUpstream) {
			return Redirect{}, err
		}
		return Redirect{}, shared.ErrInvalidCredentials
	}
	token := res.BearerToken()
	if token == "" || s.expired(token) {
		return Redirect{}, shared.ErrInvalidCredentials
	}

	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return Redirect{}, fmt.Errorf("seal token: %w", err)
	}
	principal := Principal{User: res.User, Permissions: res.Permissions, Companies: res.Companies}
	if err := s.storePrincipal(sess, principal); err != nil {
		return Redirect{}, err
	}
	sess.Set(shared.SessionKeyAccessToken, sealed)
	sess.SetUser(res.User.ID)
	if len(principal.Companies) > 0 {
		sess.Set(shared.SessionKeyCompany, principal.Companies[0].ID)
	} else {
		sess.Delete(shared.SessionKeyCompany)
	}

	s.record(ctx, res.User.ID, sess.Get(shared.SessionKeyCompany), "auth.login", "session", map[string]any{"email": creds.Email})
	return s.redirector.Resolve(creds.CallbackURL, creds.Subdomain), nil
}

// AccessToken opens the sealed token stored in sess. Expired or missing tokens
// yield ErrUnauthenticated.
func (s *Service) AccessToken(sess *shared.Session) (string, error) {
	sealed := sess.Get(shared.SessionKeyAccessToken)
	if sealed == "" {
		return "", shared.ErrUnauthenticated
	}
	token, err := s.sealer.Open(sealed)
	if err != nil {
		return "", shared.ErrUnauthenticated
	}
	if s.expired(token) {
		return "", shared.ErrUnauthenticated
	}
	return token, nil
}

// Principal returns the principal stored at login.
func (s *Service) Principal(sess *shared.Session) (Principal, error) {
	var p Principal
	ok, err := sess.GetJSON(shared.SessionKeyPrincipal, &p)
	if err != nil {
		return Principal{}, fmt.Errorf("decode principal: %w", err)
	}
	if !ok {
		return Principal{}, shared.ErrUnauthenticated
	}
	return p, nil
}

// Attach places the bearer token and selected company in ctx for backend calls.
// It reports false when sess holds no usable login.
func (s *Service) Attach(ctx context.Context, sess *shared.Session) (context.Context, bool) {
	token, err := s.AccessToken(sess)
	if err != nil {
		return ctx, false
	}
	ctx = shared.ContextWithAccessToken(ctx, token)
	if company := sess.Get(shared.SessionKeyCompany); company != "" {
		ctx = shared.ContextWithCompany(ctx, company)
	}
	return ctx, true
}

// Me reloads the principal from the backend and refreshes the session copy.
func (s *Service) Me(ctx context.Context, sess *shared.Session) (Session, error) {
	if _, err := s.AccessToken(sess); err != nil {
		return Session{}, err
	}
	principal, err := s.repo.Me(ctx)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.Logout(sess)
			return Session{}, shared.ErrUnauthenticated
		}
		return Session{}, err
	}
	if len(principal.Companies) == 0 {
		stored, _ := s.Principal(sess)
		principal.Companies = stored.Companies
	}
	if err := s.storePrincipal(sess, principal); err != nil {
		return Session{}, err
	}
	return s.view(sess, principal), nil
}

// Current returns the session view without a backend round trip.
func (s *Service) Current(sess *shared.Session) (Session, error) {
	if _, err := s.AccessToken(sess); err != nil {
		return Session{}, err
	}
	principal, err := s.Principal(sess)
	if err != nil {
		return Session{}, err
	}
	return s.view(sess, principal), nil
}

// Companies refreshes the company list from the backend.
func (s *Service) Companies(ctx context.Context, sess *shared.Session) ([]Company, error) {
	principal, err := s.Principal(sess)
	if err != nil {
		return nil, err
	}
	companies, err := s.repo.Companies(ctx)
	if err != nil {
		return nil, err
	}
	principal.Companies = companies
	if err := s.storePrincipal(sess, principal); err != nil {
		return nil, err
	}
	if _, ok := principal.Company(sess.Get(shared.SessionKeyCompany)); !ok {
		if len(companies) > 0 {
			sess.Set(shared.SessionKeyCompany, companies[0].ID)
		} else {
			sess.Delete(shared.SessionKeyCompany)
		}
	}
	return companies, nil
}

// CurrentCompany returns the selected company.
func (s *Service) CurrentCompany(sess *shared.Session) (Company, bool) {
	principal, err := s.Principal(sess)
	if err != nil {
		return Company{}, false
	}
	return principal.Company(sess.Get(shared.SessionKeyCompany))
}

// SetCompany switches the selected company. The company must be one the
// principal was granted.
func (s *Service) SetCompany(ctx context.Context, sess *shared.Session, companyID string) (Company, error) {
	principal, err := s.Principal(sess)
	if err != nil {
		return Company{}, err
	}
	company, ok := principal.Company(companyID)
	if !ok {
		return Company{}, shared.ErrUnknownCompany
	}
	previous := sess.Get(shared.SessionKeyCompany)
	sess.Set(shared.SessionKeyCompany, company.ID)
	if previous != company.ID {
		s.record(ctx, principal.User.ID, company.ID, "company.switch", "company", map[string]any{"from": previous})
	}
	return company, nil
}

// Logout clears login state from sess.
func (s *Service) Logout(sess *shared.Session) {
	if sess == nil {
		return
	}
	sess.Delete(shared.SessionKeyAccessToken)
	sess.Delete(shared.SessionKeyPrincipal)
	sess.Delete(shared.SessionKeyPermissions)
	sess.Delete(shared.SessionKeyCompany)
	sess.SetUser("")
}

func (s *Service) storePrincipal(sess *shared.Session, p Principal) error {
	if p.Permissions == nil {
		p.Permissions = []string{}
	}
	if err := sess.SetJSON(shared.SessionKeyPrincipal, p); err != nil {
		return fmt.Errorf("encode principal: %w", err)
	}
	if err := sess.SetJSON(shared.SessionKeyPermissions, p.Permissions); err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	return nil
}

func (s *Service) view(sess *shared.Session, p Principal) Session {
	out := Session{User: p.User, Permissions: p.Permissions, Companies: p.Companies}
	if c, ok := p.Company(sess.Get(shared.SessionKeyCompany)); ok {
		out.CurrentCompany = &c
	}
	return out
}

// expired reports whether token is a JWT whose exp claim has passed. Opaque
// tokens never expire here; the backend rejects them instead.
func (s *Service) expired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

func (s *Service) record(ctx context.Context, actor, company, action, entity string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{ActorID: actor, CompanyID: company, Action: action, Entity: entity, EntityID: actor, Meta: meta, At: s.now()}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
