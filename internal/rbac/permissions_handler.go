package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// PermissionsHandler exposes the route map so the UI can gate navigation.
type PermissionsHandler struct {
	service *Service
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(service *Service) *PermissionsHandler {
	return &PermissionsHandler{service: service}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/routes", h.listRoutes)
}

type routesView struct {
	Routes      []RoutePermission `json:"routes"`
	Permissions []string          `json:"permissions"`
	Allowed     []string          `json:"allowed"`
}

func (h *PermissionsHandler) listRoutes(w http.ResponseWriter, r *http.Request) {
	granted := shared.PermissionsFromSession(shared.SessionFromContext(r.Context()))
	if granted == nil {
		granted = []string{}
	}
	httpx.OK(w, "", routesView{
		Routes:      h.service.Routes(),
		Permissions: granted,
		Allowed:     h.service.AllowedPrefixes(granted),
	})
}
