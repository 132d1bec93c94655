package inventory

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/httpx"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/rbac"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// Handler wires HTTP endpoints for inventory module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes registers inventory routes. Reads are public, ledger mutations
// need an authenticated caller with inventory.write, and lifecycle changes
// need inventory.manage.
func (h *Handler) MountRoutes(r chi.Router, authenticated func(http.Handler) http.Handler) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Get("/{id}/products", h.handleProducts)
	r.Get("/{id}/utilization", h.handleUtilization)
	r.Get("/{id}/cost-summary", h.handleCostSummary)

	r.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(rbac.PermInventoryWrite))
			r.Post("/{id}/products", h.handleAddProduct)
			r.Delete("/{id}/products", h.handleRemoveProduct)
			r.Post("/{id}/storage", h.handleAddStorage)
			r.Delete("/{id}/storage", h.handleRemoveStorage)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(rbac.PermInventoryManage))
			r.Post("/create", h.handleCreate)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

type inventoryRequest struct {
	Name          string   `json:"name" validate:"required"`
	TotalCapacity *float64 `json:"totalCapacity" validate:"required,gte=0"`
	TotalVolume   *float64 `json:"totalVolume" validate:"required,gte=0"`
	Location      *Point   `json:"inventoryLocation" validate:"required"`
}

func (req inventoryRequest) input() CreateInput {
	return CreateInput{
		Name:          req.Name,
		Location:      *req.Location,
		TotalCapacity: *req.TotalCapacity,
		TotalVolume:   *req.TotalVolume,
	}
}

type addProductRequest struct {
	ProductID string   `json:"productId" validate:"required"`
	Quantity  *float64 `json:"quantity" validate:"required"`
}

type removeProductRequest struct {
	ProductID string   `json:"productId" validate:"required"`
	Quantity  *float64 `json:"quantity"`
}

// wholeQuantity rejects fractional and out-of-range quantities. Sign is
// checked by the Ledger.
func wholeQuantity(q float64) (int64, error) {
	if q != math.Trunc(q) || math.IsInf(q, 0) || math.Abs(q) > maxQuantity {
		return 0, shared.Errorf(shared.KindInvalidQuantity, "quantity must be a whole number, got %v", q)
	}
	return int64(q), nil
}

// maxQuantity is the largest integer a float64 represents exactly.
const maxQuantity = 1 << 53

type storageRequest struct {
	StorageUnitID string `json:"storageUnitId" validate:"required"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list inventories", err)
		return
	}
	httpx.Data(w, http.StatusOK, snaps)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get inventory", err)
		return
	}
	httpx.Data(w, http.StatusOK, snap)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.Products(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "inventory products", err)
		return
	}
	httpx.Data(w, http.StatusOK, details)
}

func (h *Handler) handleUtilization(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Utilization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "utilization", err)
		return
	}
	httpx.Data(w, http.StatusOK, report)
}

func (h *Handler) handleCostSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.CostSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "cost summary", err)
		return
	}
	httpx.Data(w, http.StatusOK, report)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		h.fail(w, "create inventory", err)
		return
	}
	httpx.Data(w, http.StatusCreated, snap)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.fail(w, "update inventory", err)
		return
	}
	httpx.Data(w, http.StatusOK, snap)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete inventory", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	qty, err := wholeQuantity(*req.Quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	snap, err := h.service.AddProduct(r.Context(), chi.URLParam(r, "id"), req.ProductID, qty)
	if err != nil {
		h.fail(w, "add product", err)
		return
	}
	httpx.Data(w, http.StatusOK, snap)
}

func (h *Handler) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	var req removeProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	var qty *int64
	if req.Quantity != nil {
		n, err := wholeQuantity(*req.Quantity)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		qty = &n
	}
	snap, err := h.service.RemoveProduct(r.Context(), chi.URLParam(r, "id"), req.ProductID, qty)
	if err != nil {
		h.fail(w, "remove product", err)
		return
	}
	httpx.Data(w, http.StatusOK, snap)
}

func (h *Handler) handleAddStorage(w http.ResponseWriter, r *http.Request) {
	var req storageRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.service.AddStorage(r.Context(), chi.URLParam(r, "id"), req.StorageUnitID)
	if err != nil {
		h.fail(w, "add storage", err)
		return
	}
	httpx.Data(w, http.StatusOK, snap)
}

func (h *Handler) handleRemoveStorage(w http.ResponseWriter, r *http.Request) {
	var req storageRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.service.RemoveStorage(r.Context(), chi.URLParam(r, "id"), req.StorageUnitID)
	if err != nil {
		h.fail(w, "remove storage", err)
		return
	}
	httpx.Data(w, http.StatusOK, snap)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := httpx.ValidateStruct(h.validator, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if shared.KindOf(err) == shared.KindInternal {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
