package rbac

import (
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/httpx"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAny ensures the current caller has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, func(granted []Permission) bool {
		return lo.Some(granted, perms)
	})
}

// RequireAll ensures the current caller has all required permissions.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, func(granted []Permission) bool {
		return lo.Every(granted, perms)
	})
}

func (m Middleware) require(perms []Permission, allowed func([]Permission) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			caller, ok := shared.CallerFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if allowed(m.Service.EffectivePermissions(caller.Role)) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied",
					slog.String("user_id", caller.UserID),
					slog.String("role", caller.Role),
					slog.Any("required", perms),
					slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, shared.Errorf(shared.KindForbidden, "role %q may not perform this operation", caller.Role))
		})
	}
}
