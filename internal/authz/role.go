package authz

// Role is a named bundle of default permissions.
type Role string

const (
	RoleSuperAdmin      Role = "super-admin"
	RoleDeveloper       Role = "developer"
	RoleExecutive       Role = "executive"
	RoleProvinceManager Role = "province-manager"
	RoleProvinceAdmin   Role = "province-admin"
	RoleGeneralManager  Role = "general-manager"
	RoleBranchManager   Role = "branch-manager"
	RoleUser            Role = "user"
	RoleGuest           Role = "guest"
)

// AllRoles lists every role known to the system.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleDeveloper,
	RoleExecutive,
	RoleProvinceManager,
	RoleProvinceAdmin,
	RoleGeneralManager,
	RoleBranchManager,
	RoleUser,
	RoleGuest,
}

// privilegeLevels encodes the total order over roles. Lower level = more
// privileged. The table is explicit so adding a role cannot silently reshuffle
// comparisons. Lateral roles still get distinct positions; this is a total
// order, not a lattice.
var privilegeLevels = map[Role]int{
	RoleSuperAdmin:      0,
	RoleDeveloper:       1,
	RoleExecutive:       2,
	RoleProvinceManager: 3,
	RoleProvinceAdmin:   4,
	RoleGeneralManager:  5,
	RoleBranchManager:   6,
	RoleUser:            7,
	RoleGuest:           8,
}

// guestLevel is the least-privileged position, assigned to any unknown role.
const guestLevel = 8

// ParseRole maps a stored role string to a Role. Unknown or empty strings
// default to guest so a malformed profile is never more privileged than a new one.
func ParseRole(s string) Role {
	r := Role(s)
	if _, ok := privilegeLevels[r]; ok {
		return r
	}
	return RoleGuest
}

// PrivilegeLevel returns the numeric rank of a role in the total order.
func PrivilegeLevel(r Role) int {
	if lvl, ok := privilegeLevels[r]; ok {
		return lvl
	}
	return guestLevel
}

// singleBranchRoles are scoped to exactly their home branch; every other role
// sees all branches of its accessible provinces.
var singleBranchRoles = map[Role]bool{
	RoleBranchManager: true,
	RoleUser:          true,
	RoleGuest:         true,
}

// IsSingleBranch reports whether a role is confined to its home branch.
func IsSingleBranch(r Role) bool {
	return singleBranchRoles[r]
}

// developerTierRoles are masked from view for anyone less privileged than a
// developer. This is a one-directional visibility rule, independent of the
// permission matrix.
var developerTierRoles = map[Role]bool{
	RoleSuperAdmin: true,
	RoleDeveloper:  true,
}

// IsDeveloperTier reports whether accounts with this role are subject to the
// visibility mask.
func IsDeveloperTier(r Role) bool {
	return developerTierRoles[r]
}
