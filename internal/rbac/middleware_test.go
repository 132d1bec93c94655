package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAs(h http.Handler, caller *shared.Caller) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/inventory/1", nil)
	if caller != nil {
		req = req.WithContext(shared.ContextWithCaller(req.Context(), *caller))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAnyByRole(t *testing.T) {
	mw := Middleware{Service: NewService(nil)}
	guarded := mw.RequireAny(PermInventoryManage)(okHandler())

	require.Equal(t, http.StatusUnauthorized, serveAs(guarded, nil).Code)
	require.Equal(t, http.StatusForbidden, serveAs(guarded, &shared.Caller{UserID: "u", Role: "user"}).Code)
	require.Equal(t, http.StatusOK, serveAs(guarded, &shared.Caller{UserID: "a", Role: "Admin"}).Code)
}

func TestRequireAllNeedsEveryPermission(t *testing.T) {
	mw := Middleware{Service: NewService(nil)}
	guarded := mw.RequireAll(PermInventoryWrite, PermInventoryManage)(okHandler())
	require.Equal(t, http.StatusForbidden, serveAs(guarded, &shared.Caller{UserID: "u", Role: "user"}).Code)
	require.Equal(t, http.StatusOK, serveAs(guarded, &shared.Caller{UserID: "a", Role: "admin"}).Code)

	open := mw.RequireAll()(okHandler())
	require.Equal(t, http.StatusOK, serveAs(open, nil).Code)
}

func TestEffectivePermissions(t *testing.T) {
	svc := NewService(map[string][]Permission{"Clerk": {PermStorageWrite, PermStorageWrite}})
	require.Equal(t, []Permission{PermStorageWrite}, svc.EffectivePermissions("clerk"))
	require.Empty(t, svc.EffectivePermissions("ghost"))
	require.Len(t, NewService(nil).ListRoles(), 2)
}
