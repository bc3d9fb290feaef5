package models

// Role is an admin dashboard role
type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

// Permission names one dashboard capability
type Permission string

const (
	PermDashboardRead  Permission = "dashboard:read"
	PermOrdersManage   Permission = "orders:manage"
	PermBookingsManage Permission = "bookings:manage"
	PermLeadsManage    Permission = "leads:manage"
	PermProductsManage Permission = "products:manage"
	PermCatalogManage  Permission = "catalog:manage"
	PermExportsRead    Permission = "exports:read"
	PermAdminsManage   Permission = "admins:manage"
)

var staffPermissions = []Permission{
	PermDashboardRead,
	PermOrdersManage,
	PermBookingsManage,
	PermLeadsManage,
}

var managerPermissions = append(append([]Permission{}, staffPermissions...),
	PermProductsManage,
	PermCatalogManage,
	PermExportsRead,
)

var ownerPermissions = append(append([]Permission{}, managerPermissions...),
	PermAdminsManage,
)

var rolePermissions = map[Role]map[Permission]bool{
	RoleStaff:   toSet(staffPermissions),
	RoleManager: toSet(managerPermissions),
	RoleOwner:   toSet(ownerPermissions),
}

func toSet(ps []Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(ps))
	for _, p := range ps {
		set[p] = true
	}
	return set
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Can reports whether the role grants p
func (r Role) Can(p Permission) bool {
	return rolePermissions[r][p]
}

// Permissions lists everything the role grants
func (r Role) Permissions() []Permission {
	switch r {
	case RoleOwner:
		return ownerPermissions
	case RoleManager:
		return managerPermissions
	case RoleStaff:
		return staffPermissions
	}
	return nil
}
