package payroll

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/rbac"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// Handler exposes payroll endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, authz rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: authz}
}

// MountRoutes registers payroll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/runs", func(r chi.Router) {
		r.With(h.rbac.RequireAny(shared.PermPayrollView, shared.PermPayrollCompute)).Get("/", h.list)
		r.With(h.rbac.RequireAny(shared.PermPayrollView, shared.PermPayrollCompute)).Get("/{id}", h.get)
		r.With(h.rbac.RequireAny(shared.PermPayrollCompute)).Post("/", h.trigger)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	runs, err := h.service.ListRuns(r.Context(), r.URL.Query())
	if err != nil {
		h.respondError(w, "list payroll runs", err)
		return
	}
	httpx.OK(w, "", runs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get payroll run", err)
		return
	}
	httpx.OK(w, "", run)
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	var input TriggerInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sealed := shared.SessionFromContext(r.Context()).Get(shared.SessionKeyAccessToken)
	trigger, msg, err := h.service.TriggerRun(r.Context(), sealed, input)
	if err != nil {
		h.respondError(w, "trigger payroll", err)
		return
	}
	if trigger.Queued {
		httpx.JSON(w, http.StatusAccepted, httpx.ActionResult{Status: true, Message: msg, Data: trigger})
		return
	}
	httpx.Created(w, msg, trigger)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrInvalidState) {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
