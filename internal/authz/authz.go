// Package authz holds the role to permission mapping. The mapping is fixed at
// compile time and checked with a pure lookup, so an authorization decision
// never touches the store.
package authz

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleCashier    = "cashier"
	RoleUser       = "user"
)

const (
	PermManageUsers    = "manage-users"
	PermManageProducts = "manage-products"
	PermManageBlogs    = "manage-blogs"
	PermManagePayments = "manage-payments"
	PermPaymentView    = "payment-view"
	PermBlogView       = "blog-view"
	PermProductView    = "product-view"
)

var rolePermissions = map[string]map[string]struct{}{
	RoleSuperAdmin: permSet(PermManageUsers, PermManageProducts, PermManageBlogs, PermManagePayments),
	RoleAdmin:      permSet(PermManageProducts, PermManageBlogs),
	RoleManager:    permSet(PermManageProducts),
	RoleCashier:    permSet(PermManagePayments),
	RoleUser:       permSet(PermPaymentView, PermBlogView, PermProductView),
}

func permSet(perms ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Allowed reports whether role carries perm. Unknown roles carry nothing.
func Allowed(role, perm string) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

// ValidStaffRole reports whether role can be assigned to a staff account.
func ValidStaffRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}
