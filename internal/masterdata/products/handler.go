package products

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

// MountRoutes registers product routes. Reads are public; writes need
// product.write on an authenticated caller placed in the context upstream.
func (h *Handler) MountRoutes(r chi.Router, authenticated func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/needsRestock", h.NeedsRestock)
	r.Get("/category/{category}", h.ByCategory)
	r.Get("/supplier/{supplierId}", h.BySupplier)
	r.Get("/{id}", h.Show)
	r.Group(func(r chi.Router) {
		r.Use(authenticated, h.rbac.RequireAny(rbac.PermProductWrite))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r.URL.Query())
	items, total, err := h.service.List(r.Context(), filters)
	h.respondPage(w, filters, items, total, err)
}

func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r.URL.Query())
	items, total, err := h.service.ByCategory(r.Context(), chi.URLParam(r, "category"), filters)
	h.respondPage(w, filters, items, total, err)
}

func (h *Handler) BySupplier(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r.URL.Query())
	items, total, err := h.service.BySupplier(r.Context(), chi.URLParam(r, "supplierId"), filters)
	h.respondPage(w, filters, items, total, err)
}

func (h *Handler) NeedsRestock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.NeedsRestock(r.Context())
	if err != nil {
		h.fail(w, "needs restock", err)
		return
	}
	if items == nil {
		items = []Product{}
	}
	httpx.Data(w, http.StatusOK, items)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get product", err)
		return
	}
	httpx.Data(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), form.Product(""), r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.fail(w, "create product", err)
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
	updated, err := h.service.Update(r.Context(), id, form.Product(id))
	if err != nil {
		h.fail(w, "update product", err)
		return
	}
	httpx.Data(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ProductForm, bool) {
	var form ProductForm
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

func (h *Handler) respondPage(w http.ResponseWriter, filters shared.ListFilters, items []Product, total int, err error) {
	if err != nil {
		h.fail(w, "list products", err)
		return
	}
	if items == nil {
		items = []Product{}
	}
	httpx.Data(w, http.StatusOK, shared.Page[Product]{Items: items, Total: total, Page: filters.Page, Limit: filters.Limit})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if internalShared.KindOf(err) == internalShared.KindInternal {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
