package masterdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/rbac"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

const maxRowKeys = 50

type resourceContextKey struct{}

// Handler manages master data endpoints for one catalog.
type Handler struct {
	logger  *slog.Logger
	service *Service
	catalog *Catalog
	warmups WarmupScheduler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, catalog *Catalog) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, catalog: catalog}
}

// WithWarmups enables POST /warmup.
func (h *Handler) WithWarmups(scheduler WarmupScheduler) *Handler {
	h.warmups = scheduler
	return h
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listResources)
	if h.warmups != nil {
		r.Post("/warmup", h.warmup)
	}
	r.Route("/{resource}", func(r chi.Router) {
		r.Use(h.resolveResource)
		r.Group(func(r chi.Router) {
			r.Use(h.require(func(res Resource) string { return res.ViewPerm }))
			r.Get("/", h.list)
			r.Get("/row-key", h.rowKeys)
			r.Get("/{id}", h.get)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.require(func(res Resource) string { return res.EditPerm }))
			r.Post("/", h.create)
			r.Put("/", h.updateMany)
			r.Put("/{id}", h.update)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.require(func(res Resource) string { return res.DeletePerm }))
			r.Post("/delete", h.deleteMany)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *Handler) resolveResource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := h.catalog.Lookup(chi.URLParam(r, "resource"))
		if !ok {
			httpx.Fail(w, http.StatusNotFound, "Unknown resource")
			return
		}
		ctx := context.WithValue(r.Context(), resourceContextKey{}, res)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) require(perm func(Resource) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			granted := shared.PermissionsFromSession(shared.SessionFromContext(r.Context()))
			if p := perm(resourceFrom(r)); p != "" && !rbac.HasAny(granted, p) {
				httpx.Fail(w, http.StatusForbidden, "You do not have access to this page")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resourceFrom(r *http.Request) Resource {
	res, _ := r.Context().Value(resourceContextKey{}).(Resource)
	return res
}

func (h *Handler) listResources(w http.ResponseWriter, r *http.Request) {
	granted := shared.PermissionsFromSession(shared.SessionFromContext(r.Context()))
	visible := make([]Resource, 0)
	for _, res := range h.catalog.All() {
		if res.ViewPerm == "" || rbac.HasAny(granted, res.ViewPerm) {
			visible = append(visible, res)
		}
	}
	httpx.OK(w, "", visible)
}

type warmupRequest struct {
	Resources []string `json:"resources"`
}

func (h *Handler) warmup(w http.ResponseWriter, r *http.Request) {
	var req warmupRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	names := req.Resources
	if len(names) == 0 {
		for _, res := range h.catalog.All() {
			names = append(names, res.Name)
		}
	}
	granted := shared.PermissionsFromSession(shared.SessionFromContext(r.Context()))
	for _, name := range names {
		res, ok := h.catalog.Lookup(name)
		if !ok {
			httpx.Fail(w, http.StatusBadRequest, "Unknown resource "+name)
			return
		}
		if res.ViewPerm != "" && !rbac.HasAny(granted, res.ViewPerm) {
			httpx.Fail(w, http.StatusForbidden, "You do not have access to this page")
			return
		}
	}
	id, err := ScheduleWarmup(r.Context(), h.warmups, shared.SessionFromContext(r.Context()), names)
	if err != nil {
		h.respondError(w, "schedule warmup", err)
		return
	}
	httpx.OK(w, "Cache warmup scheduled", map[string]string{"taskId": id})
}

type listView struct {
	Items      []Row             `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res := resourceFrom(r)
	query := r.URL.Query()
	page, perPage := shared.PaginationFromQuery(query)
	query.Del("page")
	query.Del("per_page")

	rows, err := h.service.List(r.Context(), res, query)
	if err != nil {
		h.logger.Error("list "+res.Name, slog.Any("error", err))
		httpx.Fail(w, httpx.StatusFor(err), "Failed to load "+res.Plural)
		return
	}
	items, pagination := shared.Paginate(rows, page, perPage)
	httpx.OK(w, "", listView{Items: items, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	res := resourceFrom(r)
	row, err := h.service.Get(r.Context(), res, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get "+res.Name, err)
		return
	}
	httpx.OK(w, "", row)
}

func (h *Handler) rowKeys(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	if n <= 0 {
		n = 1
	}
	if n > maxRowKeys {
		n = maxRowKeys
	}
	httpx.OK(w, "", map[string][]string{"keys": shared.NewRowKeys(n)})
}

// create accepts a single object, a bare array, or {"items": [...]}.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	res := resourceFrom(r)
	rows, single, err := decodeRows(r.Body)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if single {
		created, msg, err := h.service.Create(r.Context(), res, rows[0])
		if err != nil {
			h.respondError(w, "create "+res.Name, err)
			return
		}
		httpx.Created(w, msg, created)
		return
	}
	out, err := h.service.CreateMany(r.Context(), res, rows)
	if err != nil {
		h.respondError(w, "create "+res.Plural, err)
		return
	}
	httpx.OK(w, out.Message, out.Result)
}

func (h *Handler) updateMany(w http.ResponseWriter, r *http.Request) {
	res := resourceFrom(r)
	rows, _, err := decodeRows(r.Body)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	out, err := h.service.UpdateMany(r.Context(), res, rows)
	if err != nil {
		h.respondError(w, "update "+res.Plural, err)
		return
	}
	httpx.OK(w, out.Message, out.Result)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	res := resourceFrom(r)
	rows, single, err := decodeRows(r.Body)
	if err != nil || !single {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	msg, err := h.service.Update(r.Context(), res, chi.URLParam(r, "id"), rows[0])
	if err != nil {
		h.respondError(w, "update "+res.Name, err)
		return
	}
	httpx.OK(w, msg, nil)
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) deleteMany(w http.ResponseWriter, r *http.Request) {
	res := resourceFrom(r)
	var req deleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	out, err := h.service.DeleteMany(r.Context(), res, req.IDs)
	if err != nil {
		h.respondError(w, "delete "+res.Plural, err)
		return
	}
	httpx.OK(w, out.Message, out.Result)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	res := resourceFrom(r)
	msg, err := h.service.Delete(r.Context(), res, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "delete "+res.Name, err)
		return
	}
	httpx.OK(w, msg, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, httpx.ErrValidation) {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

// decodeRows reads rows keeping numbers as json.Number. single reports whether
// the body was one object.
func decodeRows(body io.Reader) ([]Row, bool, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, false, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false, errors.New("empty body")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if raw[0] == '[' {
		var rows []Row
		if err := dec.Decode(&rows); err != nil {
			return nil, false, err
		}
		return rows, false, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false, err
	}
	if items, ok := obj["items"]; ok && len(obj) == 1 {
		itemsDec := json.NewDecoder(bytes.NewReader(items))
		itemsDec.UseNumber()
		var rows []Row
		if err := itemsDec.Decode(&rows); err != nil {
			return nil, false, err
		}
		return rows, false, nil
	}
	var row Row
	if err := dec.Decode(&row); err != nil {
		return nil, false, err
	}
	return []Row{row}, true, nil
}
