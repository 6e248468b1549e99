package authz

const (
	RoleCustomer = 10
	RoleAdmin    = 50
)

func IsAdmin(roleID int) bool {
	return roleID == RoleAdmin
}

func ValidRole(roleID int) bool {
	return roleID == RoleCustomer || roleID == RoleAdmin
}
