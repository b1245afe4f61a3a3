package authz

// rolePermissions is the static role → permission matrix. Every role maps to
// some set; guest is near-empty. Edits here are the single source of truth for
// role-derived capabilities.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermAccountsView, PermAccountsEdit, PermReportsView,
		PermSalesView, PermSalesEdit,
		PermWarehouseView, PermWarehouseEdit,
		PermEmployeeView, PermEmployeeCreate, PermEmployeeEdit,
		PermLeaveApprove, PermAttendanceView, PermAttendanceImport, PermPayrollView,
		PermUsersView, PermUsersManage, PermRolesManage, PermSystemSettingsEdit, PermAuditView,
		PermProvincesView, PermBranchesView, PermAllProvinces,
	},
	RoleDeveloper: {
		PermAccountsView, PermAccountsEdit, PermReportsView,
		PermSalesView, PermSalesEdit,
		PermWarehouseView, PermWarehouseEdit,
		PermEmployeeView, PermEmployeeCreate, PermEmployeeEdit,
		PermLeaveApprove, PermAttendanceView, PermAttendanceImport, PermPayrollView,
		PermUsersView, PermUsersManage, PermRolesManage, PermSystemSettingsEdit, PermAuditView,
		PermProvincesView, PermBranchesView, PermAllProvinces,
	},
	RoleExecutive: {
		PermAccountsView, PermReportsView,
		PermSalesView,
		PermWarehouseView,
		PermEmployeeView, PermLeaveApprove, PermAttendanceView, PermPayrollView,
		PermUsersView, PermAuditView,
		PermProvincesView, PermBranchesView, PermAllProvinces,
	},
	RoleProvinceManager: {
		PermAccountsView, PermReportsView,
		PermSalesView, PermSalesEdit,
		PermWarehouseView, PermWarehouseEdit,
		PermEmployeeView, PermEmployeeCreate, PermEmployeeEdit,
		PermLeaveApprove, PermAttendanceView, PermAttendanceImport, PermPayrollView,
		PermUsersView,
		PermProvincesView, PermBranchesView,
	},
	RoleProvinceAdmin: {
		PermAccountsView, PermReportsView,
		PermSalesView,
		PermWarehouseView,
		PermEmployeeView, PermEmployeeCreate, PermEmployeeEdit,
		PermAttendanceView, PermAttendanceImport,
		PermUsersView,
		PermProvincesView, PermBranchesView,
	},
	RoleGeneralManager: {
		PermAccountsView, PermReportsView,
		PermSalesView, PermSalesEdit,
		PermWarehouseView,
		PermEmployeeView, PermLeaveApprove, PermAttendanceView,
		PermProvincesView, PermBranchesView,
	},
	RoleBranchManager: {
		PermSalesView, PermSalesEdit,
		PermWarehouseView, PermWarehouseEdit,
		PermLeaveApprove, PermAttendanceView,
		PermBranchesView,
	},
	RoleUser: {
		PermSalesView,
		PermWarehouseView,
		PermAttendanceView,
	},
	RoleGuest: {},
}

// PermissionsFor returns the role-derived permission set. Total: unknown roles
// map to the empty set (fail safe, never fail open). The returned slice is a
// copy so callers cannot mutate the matrix.
func PermissionsFor(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
