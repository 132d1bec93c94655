package rbac

// Permission names an atomic capability.
type Permission string

// Capabilities guarded by the HTTP layer.
const (
	PermInventoryManage Permission = "inventory.manage"
	PermInventoryWrite  Permission = "inventory.write"
	PermProductWrite    Permission = "product.write"
	PermStorageWrite    Permission = "storage.write"
)

// Role groups permissions. Roles come from the users table.
type Role struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}
