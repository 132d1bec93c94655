package storages

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/shared"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/httpx"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/rbac"
	internalShared "github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes registers storage routes.
func (h *Handler) MountRoutes(r chi.Router, authenticated func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Group(func(r chi.Router) {
		r.Use(authenticated, h.rbac.RequireAny(rbac.PermStorageWrite))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r.URL.Query())
	units, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.fail(w, "list storages", err)
		return
	}
	if units == nil {
		units = []StorageUnit{}
	}
	httpx.Data(w, http.StatusOK, shared.Page[StorageUnit]{Items: units, Total: total, Page: filters.Page, Limit: filters.Limit})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	unit, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get storage", err)
		return
	}
	httpx.Data(w, http.StatusOK, unit)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), form.Unit(""))
	if err != nil {
		h.fail(w, "create storage", err)
		return
	}
	httpx.Data(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	updated, err := h.service.Update(r.Context(), id, form.Unit(id))
	if err != nil {
		h.fail(w, "update storage", err)
		return
	}
	httpx.Data(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete storage", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (StorageForm, bool) {
	var form StorageForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return form, false
	}
	if err := httpx.ValidateStruct(h.validator, form); err != nil {
		httpx.RespondError(w, err)
		return form, false
	}
	return form, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if internalShared.KindOf(err) == internalShared.KindInternal {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
