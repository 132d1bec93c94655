package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/httpx"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// PermissionsHandler exposes the caller's effective permissions.
type PermissionsHandler struct {
	service *Service
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(service *Service) *PermissionsHandler {
	return &PermissionsHandler{service: service}
}

// MountRoutes registers permission routes. Callers must already be authenticated.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.mine)
	r.Get("/roles", h.roles)
}

func (h *PermissionsHandler) mine(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	httpx.Data(w, http.StatusOK, Role{Name: caller.Role, Permissions: h.service.EffectivePermissions(caller.Role)})
}

func (h *PermissionsHandler) roles(w http.ResponseWriter, r *http.Request) {
	httpx.Data(w, http.StatusOK, h.service.ListRoles())
}
