package report

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
)

// Handler exposes renderer health to operators.
type Handler struct {
	client *Client
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
}

type pingView struct {
	Renderer  string `json:"renderer"`
	Available bool   `json:"available"`
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		httpx.JSON(w, http.StatusServiceUnavailable, httpx.ActionResult{
			Status:  false,
			Message: "PDF renderer is unavailable",
			Data:    pingView{Renderer: "gotenberg"},
		})
		return
	}
	httpx.OK(w, "", pingView{Renderer: "gotenberg", Available: true})
}
