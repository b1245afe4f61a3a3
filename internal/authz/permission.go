package authz

// Permission is a single named capability flag. Codes follow the
// "<module>.<action>" convention used across the API.
type Permission string

const (
	// Accounting
	PermAccountsView Permission = "accounts.view"
	PermAccountsEdit Permission = "accounts.edit"
	PermReportsView  Permission = "reports.view"

	// Sales
	PermSalesView Permission = "sales.view"
	PermSalesEdit Permission = "sales.edit"

	// Warehouse
	PermWarehouseView Permission = "warehouse.view"
	PermWarehouseEdit Permission = "warehouse.edit"

	// HR
	PermEmployeeView      Permission = "employees.view"
	PermEmployeeCreate    Permission = "employees.create"
	PermEmployeeEdit      Permission = "employees.edit"
	PermLeaveApprove      Permission = "leave.approve"
	PermAttendanceView    Permission = "attendance.view"
	PermAttendanceImport  Permission = "attendance.import"
	PermPayrollView       Permission = "payroll.view"

	// Administration
	PermUsersView          Permission = "users.view"
	PermUsersManage        Permission = "users.manage"
	PermRolesManage        Permission = "roles.manage"
	PermSystemSettingsEdit Permission = "settings.edit"
	PermAuditView          Permission = "audit.view"

	// Organization scoping
	PermProvincesView Permission = "provinces.view"
	PermBranchesView  Permission = "branches.view"
	// PermAllProvinces grants organization-wide scope: the scope resolver
	// returns every province regardless of the profile's accessible list.
	PermAllProvinces Permission = "provinces.all"
)

// AllPermissions lists every permission known to the system, grouped the same
// way the constants above are.
var AllPermissions = []Permission{
	PermAccountsView, PermAccountsEdit, PermReportsView,
	PermSalesView, PermSalesEdit,
	PermWarehouseView, PermWarehouseEdit,
	PermEmployeeView, PermEmployeeCreate, PermEmployeeEdit,
	PermLeaveApprove, PermAttendanceView, PermAttendanceImport, PermPayrollView,
	PermUsersView, PermUsersManage, PermRolesManage, PermSystemSettingsEdit, PermAuditView,
	PermProvincesView, PermBranchesView, PermAllProvinces,
}
