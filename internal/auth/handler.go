package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// CompanyCookie mirrors the selected company for the browser.
const CompanyCookie = "current_company"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	secureCookies  bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, secureCookies bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		secureCookies:  secureCookies,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/csrf", h.handleCSRF)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireLogin)
		r.Get("/me", h.handleMe)
		r.Get("/companies", h.handleCompanies)
		r.Get("/company", h.handleGetCompany)
		r.Post("/company", h.handleSetCompany)
	})
}

func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "", map[string]string{"csrfToken": token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := httpx.DecodeJSON(r, &creds); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Fail(w, http.StatusInternalServerError, httpx.GenericMessage)
		return
	}
	redirect, err := h.service.Login(ctx, sess, creds)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) && !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error("login", slog.Any("error", err))
		}
		h.respondError(w, err)
		return
	}
	if err := h.sessionManager.Renew(ctx, sess); err != nil {
		h.logger.Error("renew session", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, httpx.GenericMessage)
		return
	}

	token, err := h.csrfManager.Rotate(ctx, sess)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeCompanyCookie(w, sess.Get(shared.SessionKeyCompany))
	httpx.OK(w, "Signed in", map[string]any{
		"redirect":  redirect.URL,
		"subdomain": redirect.Subdomain,
		"path":      redirect.Path,
		"csrfToken": token,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.service.Logout(sess)
		h.sessionManager.Destroy(sess)
	}
	h.writeCompanyCookie(w, "")
	httpx.OK(w, "Signed out", nil)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	var (
		view Session
		err  error
	)
	if r.URL.Query().Get("refresh") == "1" {
		view, err = h.service.Me(r.Context(), sess)
	} else {
		view, err = h.service.Current(sess)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "", view)
}

func (h *Handler) handleCompanies(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	companies, err := h.service.Companies(r.Context(), sess)
	if err != nil {
		h.logger.Warn("list companies", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "", companies)
}

func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	company, ok := h.service.CurrentCompany(sess)
	if !ok {
		httpx.OK(w, "No company selected", nil)
		return
	}
	httpx.OK(w, "", company)
}

type setCompanyRequest struct {
	CompanyID string `json:"companyId"`
}

func (h *Handler) handleSetCompany(w http.ResponseWriter, r *http.Request) {
	var req setCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.CompanyID == "" {
		httpx.Fail(w, http.StatusBadRequest, "companyId is required")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	company, err := h.service.SetCompany(r.Context(), sess, req.CompanyID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeCompanyCookie(w, company.ID)
	httpx.OK(w, "Company switched to "+company.Name, company)
}

// RequireLogin rejects requests without a usable backend token and attaches the
// token and selected company to the request context.
func (h *Handler) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess != nil && sess.Get(shared.SessionKeyCompany) == "" {
			if c, err := r.Cookie(CompanyCookie); err == nil && c.Value != "" {
				_, _ = h.service.SetCompany(r.Context(), sess, c.Value)
			}
		}
		ctx, ok := h.service.Attach(r.Context(), sess)
		if !ok {
			httpx.Fail(w, http.StatusUnauthorized, "Please sign in")
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) writeCompanyCookie(w http.ResponseWriter, companyID string) {
	cookie := &http.Cookie{
		Name:     CompanyCookie,
		Value:    companyID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if companyID == "" {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else if ttl := h.sessionManager.TTL(); ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, shared.ErrUnauthenticated):
		httpx.Fail(w, http.StatusUnauthorized, "Please sign in")
	case errors.Is(err, shared.ErrUnknownCompany):
		httpx.Fail(w, http.StatusForbidden, "Company not available for this account")
	case errors.Is(err, shared.ErrCSRFTokenMissing):
		httpx.Fail(w, http.StatusBadRequest, "Session not initialised")
	default:
		httpx.RespondError(w, err)
	}
}
