package model

// Permission names guard every mutating or analytics endpoint.  The set is
// fixed; handlers reference these constants rather than raw strings.
const (
	PermViewAnalytics    = "VIEW_ANALYTICS"
	PermManagePublishers = "MANAGE_PUBLISHERS"
	PermManageOffers     = "MANAGE_OFFERS"
	PermManageUsers      = "MANAGE_USERS"
	PermManageSettings   = "MANAGE_SETTINGS"
)

// Role names stored in users.role.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleEditor     = "editor"
	RoleUser       = "user"
)

// RolePermissions is the single authoritative role → permission mapping.
// Earlier generations of the portal kept a parallel copy of this table in
// the roles/user_roles tables; authorization now reads only this map and the
// DB tables are retained for historical rows.
var RolePermissions = map[string][]string{
	RoleSuperAdmin: {PermViewAnalytics, PermManagePublishers, PermManageOffers, PermManageUsers, PermManageSettings},
	RoleAdmin:      {PermViewAnalytics, PermManagePublishers, PermManageOffers, PermManageUsers, PermManageSettings},
	RoleManager:    {PermViewAnalytics, PermManagePublishers, PermManageOffers},
	RoleEditor:     {PermViewAnalytics, PermManageOffers},
	RoleUser:       {PermViewAnalytics},
}

// Can reports whether a role holds a permission.  Unknown roles hold nothing.
func Can(role, permission string) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidRole reports whether the given role name is one of the five known
// roles.  Used when creating or updating user records.
func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
