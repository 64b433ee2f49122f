package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "inventory:issue"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView          = "user:view"
	PrivUserCreate        = "user:create"
	PrivUserUpdate        = "user:update"
	PrivUserDelete        = "user:delete"
	PrivUserPrivilege     = "user:update_privilege"
	PrivProjectView       = "project:view"
	PrivProjectCreate     = "project:create"
	PrivProjectUpdate     = "project:update"
	PrivProjectDelete     = "project:delete"
	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivTransactionUpdate = "transaction:update"
	PrivTransactionDelete = "transaction:delete"
	PrivInventoryView     = "inventory:view"
	PrivInventoryCreate   = "inventory:create"
	PrivInventoryUpdate   = "inventory:update"
	PrivInventoryDelete   = "inventory:delete"
	PrivInventoryIssue    = "inventory:issue"
	PrivFinancialView     = "financial:view"
	PrivDashboardView     = "dashboard:view"
	PrivRABView           = "rab:view"
	PrivRABManage         = "rab:manage"
	PrivRABApprove        = "rab:approve"
	PrivScheduleManage    = "schedule:manage"
	PrivTaskView          = "task:view"
	PrivTaskManage        = "task:manage"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserPrivilege, Name: "Update User Privileges"},
	// Projects
	{Code: PrivProjectView, Name: "View Project"},
	{Code: PrivProjectCreate, Name: "Create Project"},
	{Code: PrivProjectUpdate, Name: "Update Project"},
	{Code: PrivProjectDelete, Name: "Delete Project"},
	// Transactions
	{Code: PrivTransactionView, Name: "View Transaction"},
	{Code: PrivTransactionCreate, Name: "Create Transaction"},
	{Code: PrivTransactionUpdate, Name: "Update Transaction"},
	{Code: PrivTransactionDelete, Name: "Delete Transaction"},
	// Inventory
	{Code: PrivInventoryView, Name: "View Inventory"},
	{Code: PrivInventoryCreate, Name: "Create Inventory"},
	{Code: PrivInventoryUpdate, Name: "Update Inventory"},
	{Code: PrivInventoryDelete, Name: "Delete Inventory"},
	{Code: PrivInventoryIssue, Name: "Issue Warehouse Stock"},
	// Reports
	{Code: PrivFinancialView, Name: "View Financial Summary"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	// Planning
	{Code: PrivRABView, Name: "View RAB"},
	{Code: PrivRABManage, Name: "Manage RAB"},
	{Code: PrivRABApprove, Name: "Approve RAB"},
	{Code: PrivScheduleManage, Name: "Manage Schedule"},
	{Code: PrivTaskView, Name: "View Task"},
	{Code: PrivTaskManage, Name: "Manage Task"},
}
