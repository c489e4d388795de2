package authz

const (
	Superuser = "superuser"

	// Store
	StoreView   = "store:view"
	StoreManage = "store:manage"

	// Users
	UsersView   = "users:view"
	UsersCreate = "users:create"
	UsersUpdate = "users:update"
	UsersDelete = "users:delete"
)

// basePermissions is what every active, logged-in user holds.
var basePermissions = []string{StoreView, StoreManage, UsersView}

var superuserPermissions = []string{Superuser, UsersCreate, UsersUpdate, UsersDelete}

// PermissionsFor expands the account flags into a permission set.
func PermissionsFor(isSuperuser bool) map[string]bool {
	perms := make(map[string]bool, len(basePermissions)+len(superuserPermissions))
	for _, p := range basePermissions {
		perms[p] = true
	}
	if isSuperuser {
		for _, p := range superuserPermissions {
			perms[p] = true
		}
	}
	return perms
}
