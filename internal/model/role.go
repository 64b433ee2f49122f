package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleAdmin               = "admin"
	RoleAccounting          = "accounting"
	RoleEstimator           = "estimator"
	RoleSiteSupervisor      = "site_supervisor"
	RoleProjectPlanningTeam = "project_planning_team"
	RoleDrafter             = "drafter"
	RoleEmployee            = "employee"
	RoleInventory           = "inventory"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{Code: RoleAdmin, Name: "Administrator", Description: "Full system access with all privileges"},
	{Code: RoleAccounting, Name: "Accounting", Description: "Transactions and financial reports"},
	{Code: RoleEstimator, Name: "Estimator", Description: "Cost estimation and price comparison"},
	{Code: RoleSiteSupervisor, Name: "Site Supervisor", Description: "Project execution and warehouse usage"},
	{Code: RoleProjectPlanningTeam, Name: "Project Planning Team", Description: "Projects in planning phase"},
	{Code: RoleDrafter, Name: "Drafter", Description: "Design work on planning projects"},
	{Code: RoleEmployee, Name: "Employee", Description: "Read-only project access"},
	{Code: RoleInventory, Name: "Inventory", Description: "Warehouse stock management"},
}

// DefaultRolePrivileges lists the privilege codes granted to each role on seed.
// Admin receives every privilege.
var DefaultRolePrivileges = map[string][]string{
	RoleAccounting: {
		PrivProjectView, PrivTransactionView, PrivTransactionCreate, PrivTransactionUpdate,
		PrivTransactionDelete, PrivInventoryView, PrivFinancialView, PrivDashboardView,
		PrivRABView,
	},
	RoleEstimator: {
		PrivProjectView, PrivTransactionView, PrivInventoryView, PrivDashboardView,
		PrivRABView, PrivRABManage,
	},
	RoleSiteSupervisor: {
		PrivProjectView, PrivProjectUpdate, PrivTransactionView, PrivTransactionCreate,
		PrivInventoryView, PrivInventoryIssue, PrivDashboardView,
		PrivTaskView, PrivTaskManage,
	},
	RoleProjectPlanningTeam: {
		PrivProjectView, PrivProjectCreate, PrivProjectUpdate, PrivDashboardView,
		PrivRABView, PrivRABManage, PrivRABApprove, PrivScheduleManage, PrivTaskView, PrivTaskManage,
	},
	RoleDrafter: {
		PrivProjectView, PrivProjectUpdate, PrivTaskView,
	},
	RoleEmployee: {
		PrivProjectView, PrivTaskView,
	},
	RoleInventory: {
		PrivProjectView, PrivTransactionView, PrivInventoryView, PrivInventoryCreate,
		PrivInventoryUpdate, PrivInventoryDelete, PrivInventoryIssue, PrivDashboardView,
	},
}
