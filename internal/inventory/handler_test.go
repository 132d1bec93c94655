package inventory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/httpx"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/rbac"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// testAuth trusts the X-Test-Role header so handler tests can pick a caller.
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Test-Role")
		if role == "" {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		caller := shared.Caller{UserID: "caller-" + role, Role: role}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithCaller(r.Context(), caller)))
	})
}

func newTestRouter(t *testing.T) (http.Handler, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(repo, ServiceConfig{Audit: &recordingAudit{}})
	mw := rbac.Middleware{Service: rbac.NewService(nil)}
	r := chi.NewRouter()
	r.Route("/inventory", func(r chi.Router) {
		NewHandler(nil, svc, mw).MountRoutes(r, testAuth)
	})
	return r, repo
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Kind    shared.Kind     `json:"kind"`
	Message string          `json:"message"`
}

func call(t *testing.T, h http.Handler, method, path, role, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func TestHandlerLedgerFlow(t *testing.T) {
	router, repo := newTestRouter(t)
	product := repo.addProduct("A", 20, 1, "5.00")

	code, env := call(t, router, http.MethodPost, "/inventory/create", "admin",
		`{"name":"North","totalCapacity":100,"totalVolume":10,"inventoryLocation":{"type":"Point","coordinates":[77.59,12.97]}}`)
	require.Equal(t, http.StatusCreated, code)
	var created Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &created))
	base := "/inventory/" + created.ID

	code, env = call(t, router, http.MethodPost, base+"/products", "user", `{"productId":"`+product+`","quantity":4}`)
	require.Equal(t, http.StatusOK, code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	require.InDelta(t, 80, snap.CapacityOccupied, 1e-9)
	require.Len(t, snap.Holdings, 1)

	code, env = call(t, router, http.MethodPost, base+"/products", "user", `{"productId":"`+product+`","quantity":2}`)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, shared.KindCapacityExceeded, env.Kind)

	code, env = call(t, router, http.MethodGet, base+"/utilization", "", "")
	require.Equal(t, http.StatusOK, code)
	var util Utilization
	require.NoError(t, json.Unmarshal(env.Data, &util))
	require.InDelta(t, 80, *util.CapacityPct, 1e-9)

	code, env = call(t, router, http.MethodGet, base+"/cost-summary", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(env.Data), `"totalValue":"20"`)

	code, env = call(t, router, http.MethodDelete, base+"/products", "user", `{"productId":"`+product+`"}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	require.Equal(t, 0.0, snap.CapacityOccupied)
	require.Empty(t, snap.Holdings)

	code, _ = call(t, router, http.MethodDelete, base, "admin", "")
	require.Equal(t, http.StatusNoContent, code)
}

func TestHandlerZeroCeilingUtilizationIsNull(t *testing.T) {
	router, repo := newTestRouter(t)
	inv := repo.addInventory(0, 0)

	code, env := call(t, router, http.MethodGet, "/inventory/"+inv+"/utilization", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(env.Data), `"capacityPct":null`)
	require.Contains(t, string(env.Data), `"volumePct":null`)
}

func TestHandlerQuantityErrors(t *testing.T) {
	router, repo := newTestRouter(t)
	inv := repo.addInventory(100, 100)
	product := repo.addProduct("A", 1, 1, "1")
	path := "/inventory/" + inv + "/products"

	code, env := call(t, router, http.MethodPost, path, "user", `{"productId":"`+product+`","quantity":1.5}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, shared.KindInvalidQuantity, env.Kind)

	code, env = call(t, router, http.MethodPost, path, "user", `{"productId":"`+product+`","quantity":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, shared.KindInvalidQuantity, env.Kind)

	code, env = call(t, router, http.MethodPost, path, "user", `{"productId":"`+product+`"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, shared.KindValidation, env.Kind)

	code, env = call(t, router, http.MethodDelete, path, "user", `{"productId":"`+product+`","quantity":1}`)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, shared.KindNotFound, env.Kind)
}

func TestHandlerStorageConflicts(t *testing.T) {
	router, repo := newTestRouter(t)
	invA := repo.addInventory(1, 1)
	invB := repo.addInventory(1, 1)
	unit := repo.addStorage()
	body := `{"storageUnitId":"` + unit + `"}`

	code, _ := call(t, router, http.MethodPost, "/inventory/"+invA+"/storage", "user", body)
	require.Equal(t, http.StatusOK, code)
	code, env := call(t, router, http.MethodPost, "/inventory/"+invB+"/storage", "user", body)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, shared.KindStorageAlreadyAttached, env.Kind)
	code, env = call(t, router, http.MethodDelete, "/inventory/"+invB+"/storage", "user", body)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, shared.KindStorageNotAttached, env.Kind)

	code, env = call(t, router, http.MethodDelete, "/inventory/"+invA, "admin", "")
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, shared.KindInventoryNotEmpty, env.Kind)
}

func TestHandlerAuthorization(t *testing.T) {
	router, repo := newTestRouter(t)
	inv := repo.addInventory(10, 10)
	create := `{"name":"South","totalCapacity":5,"totalVolume":5,"inventoryLocation":{"type":"Point","coordinates":[0,0]}}`

	code, _ := call(t, router, http.MethodPost, "/inventory/create", "", create)
	require.Equal(t, http.StatusUnauthorized, code)

	code, env := call(t, router, http.MethodPost, "/inventory/create", "user", create)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, shared.KindForbidden, env.Kind)

	code, _ = call(t, router, http.MethodPost, "/inventory/"+inv+"/storage", "", `{"storageUnitId":"x"}`)
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, router, http.MethodGet, "/inventory/"+inv, "", "")
	require.Equal(t, http.StatusOK, code)
	code, env = call(t, router, http.MethodGet, "/inventory/not-a-uuid", "", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, shared.KindNotFound, env.Kind)
}

func TestHandlerCreateValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	code, env := call(t, router, http.MethodPost, "/inventory/create", "admin",
		`{"name":"Bad","totalCapacity":5,"totalVolume":5,"inventoryLocation":{"type":"LineString","coordinates":[0,0]}}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, shared.KindValidation, env.Kind)

	code, env = call(t, router, http.MethodPost, "/inventory/create", "admin", `{"name":"Bad","totalCapacity":-1,"totalVolume":5,"inventoryLocation":{"type":"Point","coordinates":[0,0]}}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, env.Message, "totalCapacity")
}
