package procurement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/rbac"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// Handler exposes procurement endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter *Exporter
	rbac     rbac.Middleware
}

// NewHandler builds Handler. exporter may be nil when PDF rendering is not
// configured.
func NewHandler(logger *slog.Logger, service *Service, exporter *Exporter, authz rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, exporter: exporter, rbac: authz}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/purchase-requisitions", func(r chi.Router) {
		r.With(h.rbac.RequireAny(shared.PermPRView, shared.PermPREdit)).Get("/", h.listPRs)
		r.With(h.rbac.RequireAny(shared.PermPRView, shared.PermPREdit)).Get("/{id}", h.getPR)
		r.With(h.rbac.RequireAny(shared.PermPRView)).Get("/{id}/history", h.history(moduleRequisition))
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(shared.PermPREdit))
			r.Post("/", h.createPR)
			r.Put("/{id}", h.updatePR)
			r.Delete("/{id}", h.deletePR)
			r.Post("/{id}/submit", h.submitPR)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(shared.PermPRApprove))
			r.Post("/{id}/approve", h.approvePR)
			r.Post("/{id}/reject", h.rejectPR)
		})
		r.With(h.rbac.RequireAll(shared.PermPRView, shared.PermRFQEdit)).Post("/{id}/convert-to-rfq", h.convertPR)
	})

	r.Route("/rfqs", func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRFQView, shared.PermRFQEdit))
		r.Get("/", h.listRFQs)
		r.Get("/{id}", h.getRFQ)
		r.With(h.rbac.RequireAny(shared.PermRFQEdit)).Post("/{id}/send", h.sendRFQ)
		r.With(h.rbac.RequireAny(shared.PermQuotationView)).Get("/{id}/comparison", h.comparison)
		r.With(h.rbac.RequireAny(shared.PermQuotationView)).Get("/{id}/comparison.pdf", h.comparisonPDF)
	})

	r.Route("/quotations", func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermQuotationView, shared.PermQuotationEdit, shared.PermQuotationSelect))
		r.Get("/", h.listQuotations)
		r.Get("/{id}", h.getQuotation)
		r.Get("/{id}/history", h.history(moduleQuotation))
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(shared.PermQuotationEdit))
			r.Post("/", h.createQuotation)
			r.Post("/{id}/submit", h.submitQuotation)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(shared.PermQuotationSelect))
			r.Post("/{id}/select", h.selectQuotation)
			r.Post("/{id}/reject", h.rejectQuotation)
		})
	})

	r.Route("/purchase-orders", func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPOView, shared.PermPOEdit))
		r.Get("/", h.listPOs)
		r.Get("/pending", h.pendingPOs)
		r.Get("/{id}", h.getPO)
		r.With(h.rbac.RequireAny(shared.PermPOEdit)).Post("/", h.createPO)
	})

	r.Route("/goods-receipts", func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermGRNView, shared.PermGRNEdit))
		r.Get("/", h.listGRNs)
		r.With(h.rbac.RequireAny(shared.PermGRNEdit)).Get("/new/{poID}", h.prepareGRN)
		r.With(h.rbac.RequireAny(shared.PermGRNEdit)).Post("/{poID}", h.createGRN)
	})
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) listPRs(w http.ResponseWriter, r *http.Request) {
	prs, err := h.service.ListPRs(r.Context(), r.URL.Query())
	if err != nil {
		h.respondError(w, "list purchase requisitions", err)
		return
	}
	httpx.OK(w, "", prs)
}

func (h *Handler) getPR(w http.ResponseWriter, r *http.Request) {
	pr, err := h.service.GetPR(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get purchase requisition", err)
		return
	}
	httpx.OK(w, "", pr)
}

func (h *Handler) createPR(w http.ResponseWriter, r *http.Request) {
	var input PRInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.RequestedBy == "" {
		input.RequestedBy = shared.SessionFromContext(r.Context()).User()
	}
	pr, msg, err := h.service.CreatePR(r.Context(), input)
	if err != nil {
		h.respondError(w, "create purchase requisition", err)
		return
	}
	httpx.Created(w, msg, PRView{PurchaseRequisition: pr, Actions: PRActions(pr.Status)})
}

func (h *Handler) updatePR(w http.ResponseWriter, r *http.Request) {
	var input PRInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	msg, err := h.service.UpdatePR(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, "update purchase requisition", err)
		return
	}
	httpx.OK(w, msg, nil)
}

func (h *Handler) deletePR(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.DeletePR(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "delete purchase requisition", err)
		return
	}
	httpx.OK(w, msg, nil)
}

func (h *Handler) submitPR(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.SubmitPR(r.Context(), chi.URLParam(r, "id"))
	h.respondMessage(w, "submit purchase requisition", msg, err)
}

func (h *Handler) approvePR(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	_ = httpx.DecodeJSON(r, &req)
	msg, err := h.service.ApprovePR(r.Context(), chi.URLParam(r, "id"), req.Note)
	h.respondMessage(w, "approve purchase requisition", msg, err)
}

func (h *Handler) rejectPR(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	_ = httpx.DecodeJSON(r, &req)
	msg, err := h.service.RejectPR(r.Context(), chi.URLParam(r, "id"), req.Note)
	h.respondMessage(w, "reject purchase requisition", msg, err)
}

func (h *Handler) convertPR(w http.ResponseWriter, r *http.Request) {
	var input ConvertInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rfq, msg, err := h.service.ConvertPRToRFQ(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, "convert purchase requisition", err)
		return
	}
	httpx.Created(w, msg, RFQView{RFQ: rfq, Actions: RFQActions(rfq.Status)})
}

func (h *Handler) listRFQs(w http.ResponseWriter, r *http.Request) {
	rfqs, err := h.service.ListRFQs(r.Context(), r.URL.Query())
	if err != nil {
		h.respondError(w, "list rfqs", err)
		return
	}
	httpx.OK(w, "", rfqs)
}

func (h *Handler) getRFQ(w http.ResponseWriter, r *http.Request) {
	rfq, err := h.service.GetRFQ(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get rfq", err)
		return
	}
	httpx.OK(w, "", rfq)
}

func (h *Handler) sendRFQ(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.SendRFQ(r.Context(), chi.URLParam(r, "id"))
	h.respondMessage(w, "send rfq", msg, err)
}

func (h *Handler) comparison(w http.ResponseWriter, r *http.Request) {
	tag := shared.LocaleFromHeader(r.Header.Get("Accept-Language"))
	cmp, err := h.service.Compare(r.Context(), chi.URLParam(r, "id"), tag)
	if err != nil {
		h.respondError(w, "compare quotations", err)
		return
	}
	httpx.OK(w, "", cmp)
}

func (h *Handler) comparisonPDF(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		httpx.Fail(w, http.StatusServiceUnavailable, "PDF export is not available")
		return
	}
	tag := shared.LocaleFromHeader(r.Header.Get("Accept-Language"))
	pdf, name, err := h.exporter.ComparisonPDF(r.Context(), h.service, chi.URLParam(r, "id"), tag)
	if err != nil {
		h.respondError(w, "export comparison", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) listQuotations(w http.ResponseWriter, r *http.Request) {
	rfqID := r.URL.Query().Get("rfqId")
	if rfqID == "" {
		httpx.Fail(w, http.StatusBadRequest, "rfqId is required")
		return
	}
	quotations, err := h.service.ListQuotations(r.Context(), rfqID)
	if err != nil {
		h.respondError(w, "list quotations", err)
		return
	}
	httpx.OK(w, "", quotations)
}

func (h *Handler) getQuotation(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetQuotation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get quotation", err)
		return
	}
	httpx.OK(w, "", q)
}

func (h *Handler) createQuotation(w http.ResponseWriter, r *http.Request) {
	var input QuotationInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	q, msg, err := h.service.CreateQuotation(r.Context(), input)
	if err != nil {
		h.respondError(w, "create quotation", err)
		return
	}
	httpx.Created(w, msg, QuotationView{VendorQuotation: q, Actions: QuotationActions(q.Status)})
}

func (h *Handler) submitQuotation(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.SubmitQuotation(r.Context(), chi.URLParam(r, "id"))
	h.respondMessage(w, "submit quotation", msg, err)
}

func (h *Handler) selectQuotation(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.SelectQuotation(r.Context(), chi.URLParam(r, "id"))
	h.respondMessage(w, "select quotation", msg, err)
}

func (h *Handler) rejectQuotation(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.RejectQuotation(r.Context(), chi.URLParam(r, "id"))
	h.respondMessage(w, "reject quotation", msg, err)
}

func (h *Handler) listPOs(w http.ResponseWriter, r *http.Request) {
	pos, err := h.service.ListPOs(r.Context(), r.URL.Query())
	if err != nil {
		h.respondError(w, "list purchase orders", err)
		return
	}
	httpx.OK(w, "", pos)
}

func (h *Handler) pendingPOs(w http.ResponseWriter, r *http.Request) {
	pos, err := h.service.PendingPOs(r.Context(), r.URL.Query())
	if err != nil {
		h.respondError(w, "list pending purchase orders", err)
		return
	}
	httpx.OK(w, "", pos)
}

func (h *Handler) getPO(w http.ResponseWriter, r *http.Request) {
	po, err := h.service.GetPO(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get purchase order", err)
		return
	}
	httpx.OK(w, "", po)
}

func (h *Handler) createPO(w http.ResponseWriter, r *http.Request) {
	var input POInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	po, msg, err := h.service.CreatePOFromQuotation(r.Context(), input)
	if err != nil {
		h.respondError(w, "create purchase order", err)
		return
	}
	httpx.Created(w, msg, POView{PurchaseOrder: po, Actions: POActions(po)})
}

func (h *Handler) listGRNs(w http.ResponseWriter, r *http.Request) {
	grns, err := h.service.ListGRNs(r.Context(), r.URL.Query())
	if err != nil {
		h.respondError(w, "list goods receipts", err)
		return
	}
	httpx.OK(w, "", grns)
}

func (h *Handler) prepareGRN(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.PrepareReceipt(r.Context(), chi.URLParam(r, "poID"))
	if err != nil {
		h.respondError(w, "prepare goods receipt", err)
		return
	}
	httpx.OK(w, "", draft)
}

func (h *Handler) createGRN(w http.ResponseWriter, r *http.Request) {
	var input ReceiptInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	grn, msg, err := h.service.CreateGRN(r.Context(), chi.URLParam(r, "poID"), input)
	if err != nil {
		h.respondError(w, "create goods receipt", err)
		return
	}
	httpx.Created(w, msg, grn)
}

func (h *Handler) history(module string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := h.service.History(r.Context(), module, chi.URLParam(r, "id"))
		if err != nil {
			h.respondError(w, "approval history", err)
			return
		}
		httpx.OK(w, "", logs)
	}
}

func (h *Handler) respondMessage(w http.ResponseWriter, op, msg string, err error) {
	if err != nil {
		h.respondError(w, op, err)
		return
	}
	httpx.OK(w, msg, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrInvalidState) {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
