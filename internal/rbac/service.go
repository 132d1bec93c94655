package rbac

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Service resolves the permissions granted to a role.
type Service struct {
	roles map[string][]Permission
}

// DefaultRoles grants admins every capability and users the ledger and
// master-data writes.
func DefaultRoles() map[string][]Permission {
	return map[string][]Permission{
		"admin": {PermInventoryManage, PermInventoryWrite, PermProductWrite, PermStorageWrite},
		"user":  {PermInventoryWrite, PermProductWrite, PermStorageWrite},
	}
}

// NewService constructs a Service. A nil roles map uses DefaultRoles.
func NewService(roles map[string][]Permission) *Service {
	if roles == nil {
		roles = DefaultRoles()
	}
	normalized := make(map[string][]Permission, len(roles))
	for name, perms := range roles {
		normalized[normalizeRole(name)] = lo.Uniq(perms)
	}
	return &Service{roles: normalized}
}

// EffectivePermissions returns the sorted permissions of role. Unknown roles
// have none.
func (s *Service) EffectivePermissions(role string) []Permission {
	perms := append([]Permission(nil), s.roles[normalizeRole(role)]...)
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// ListRoles returns every configured role sorted by name.
func (s *Service) ListRoles() []Role {
	names := lo.Keys(s.roles)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) Role {
		return Role{Name: name, Permissions: s.EffectivePermissions(name)}
	})
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
