package handler

import (
	"go-construction-inventory/internal/middleware"
	"go-construction-inventory/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler mounted under /api.
type Handlers struct {
	Auth         *AuthHandler
	Transaction  *TransactionHandler
	Inventory    *InventoryHandler
	Project      *ProjectHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
	User         *UserHandler
	Role         *RoleHandler
	RAB          *RABHandler
	Planning     *PlanningHandler
	Task         *TaskHandler
}

// Register mounts the API. requireAuth guards everything except login, reset-password and validate-token.
func Register(api fiber.Router, h Handlers, requireAuth fiber.Handler) {
	priv := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/validate-token", h.Auth.ValidateToken)
	auth.Post("/logout", requireAuth, h.Auth.Logout)
	auth.Get("/me", requireAuth, h.Auth.Me)
	auth.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Transactions
	protected.Post("/transactions", priv(model.PrivTransactionCreate), h.Transaction.CreateTransaction)
	protected.Get("/transactions", priv(model.PrivTransactionView), h.Transaction.GetTransactions)
	protected.Get("/transactions/recent", priv(model.PrivTransactionView), h.Transaction.GetRecentTransactions)
	protected.Get("/transactions/:id", priv(model.PrivTransactionView), h.Transaction.GetTransaction)
	protected.Patch("/transactions/:id", priv(model.PrivTransactionUpdate), h.Transaction.UpdateTransaction)
	protected.Put("/transactions/:id/item-status",
		middleware.RequireAnyPrivilege(model.PrivTransactionUpdate, model.PrivInventoryUpdate), h.Transaction.UpdateItemStatus)
	protected.Delete("/transactions/:id", priv(model.PrivTransactionDelete), h.Transaction.DeleteTransaction)

	// Inventory; static paths before /:id
	protected.Get("/inventory", priv(model.PrivInventoryView), h.Inventory.GetInventory)
	protected.Get("/inventory/price-comparison", priv(model.PrivInventoryView), h.Inventory.PriceComparison)
	protected.Get("/inventory/usage-report", priv(model.PrivInventoryView), h.Inventory.UsageReport)
	protected.Get("/inventory/item-names", priv(model.PrivInventoryView), h.Inventory.GetItemNames)
	protected.Get("/inventory/suppliers", priv(model.PrivInventoryView), h.Inventory.GetSuppliers)
	protected.Get("/inventory/export", priv(model.PrivInventoryView), h.Inventory.Export)
	protected.Post("/inventory/warehouse-transaction", priv(model.PrivInventoryIssue), h.Inventory.WarehouseTransaction)
	protected.Post("/inventory", priv(model.PrivInventoryCreate), h.Inventory.CreateInventory)
	protected.Get("/inventory/:id", priv(model.PrivInventoryView), h.Inventory.GetInventoryByID)
	protected.Get("/inventory/:id/breakdown-by-supplier", priv(model.PrivInventoryView), h.Inventory.BreakdownBySupplier)
	protected.Put("/inventory/:id", priv(model.PrivInventoryUpdate), h.Inventory.UpdateInventory)
	protected.Delete("/inventory/:id", priv(model.PrivInventoryDelete), h.Inventory.DeleteInventory)

	// Projects
	protected.Post("/projects", priv(model.PrivProjectCreate), h.Project.CreateProject)
	protected.Get("/projects", priv(model.PrivProjectView), h.Project.GetProjects)
	protected.Get("/projects/:id", priv(model.PrivProjectView), h.Project.GetProject)
	protected.Patch("/projects/:id", priv(model.PrivProjectUpdate), h.Project.UpdateProject)
	protected.Patch("/projects/:id/design-progress", priv(model.PrivProjectUpdate), h.Project.UpdateDesignProgress)
	protected.Delete("/projects/:id", priv(model.PrivProjectDelete), h.Project.DeleteProject)

	// RAB
	protected.Post("/rabs", priv(model.PrivRABManage), h.RAB.CreateRAB)
	protected.Get("/rabs", priv(model.PrivRABView), h.RAB.GetRABs)
	protected.Get("/rabs/:id", priv(model.PrivRABView), h.RAB.GetRAB)
	protected.Get("/rabs/:id/export", priv(model.PrivRABView), h.RAB.Export)
	protected.Patch("/rabs/:id", priv(model.PrivRABManage), h.RAB.UpdateRAB)
	protected.Patch("/rabs/:id/status", priv(model.PrivRABApprove), h.RAB.UpdateStatus)
	protected.Post("/rabs/:id/approve", priv(model.PrivRABApprove), h.RAB.Approve)
	protected.Delete("/rabs/:id", priv(model.PrivRABManage), h.RAB.DeleteRAB)
	protected.Post("/rab-items", priv(model.PrivRABManage), h.RAB.CreateItem)
	protected.Get("/rab-items/:rab_id", priv(model.PrivRABView), h.RAB.GetItems)
	protected.Patch("/rab-items/:id", priv(model.PrivRABManage), h.RAB.UpdateItem)
	protected.Delete("/rab-items/:id", priv(model.PrivRABManage), h.RAB.DeleteItem)

	// Planning
	protected.Post("/schedule", priv(model.PrivScheduleManage), h.Planning.CreateScheduleItem)
	protected.Delete("/schedule/items/:id", priv(model.PrivScheduleManage), h.Planning.DeleteScheduleItem)
	protected.Get("/schedule/:project_id", priv(model.PrivProjectView), h.Planning.GetSchedule)
	protected.Get("/planning/overview", priv(model.PrivProjectView), h.Planning.Overview)

	// Tasks
	protected.Post("/tasks", priv(model.PrivTaskManage), h.Task.CreateTask)
	protected.Get("/tasks", priv(model.PrivTaskView), h.Task.GetTasks)
	protected.Patch("/tasks/:id", priv(model.PrivTaskManage), h.Task.UpdateTask)
	protected.Patch("/tasks/:id/status", priv(model.PrivTaskView), h.Task.UpdateStatus)
	protected.Delete("/tasks/:id", priv(model.PrivTaskManage), h.Task.DeleteTask)
	protected.Post("/tasks/:id/report", priv(model.PrivTaskView), h.Task.CreateReport)
	protected.Get("/tasks/:id/reports", priv(model.PrivTaskView), h.Task.GetReports)

	// Notifications (own only)
	protected.Get("/notifications", h.Notification.GetNotifications)
	protected.Get("/notifications/unread/count", h.Notification.UnreadCount)
	protected.Patch("/notifications/:id/read", h.Notification.MarkRead)

	// Dashboard & financial
	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", priv(model.PrivDashboardView), h.Dashboard.GetStockMovement)
	protected.Get("/financial/summary", priv(model.PrivFinancialView), h.Dashboard.GetFinancialSummary)
	protected.Get("/financial/monthly", priv(model.PrivFinancialView), h.Dashboard.GetMonthlyFinancial)
	protected.Get("/financial/project-allocation", priv(model.PrivFinancialView), h.Dashboard.GetProjectAllocation)
	protected.Get("/financial/projects-progress", priv(model.PrivFinancialView), h.Dashboard.GetProjectsProgress)
	protected.Get("/financial/project/:id", priv(model.PrivFinancialView), h.Dashboard.GetProjectFinancial)

	// Users and members
	protected.Get("/users", h.User.GetUsers)
	protected.Get("/roles", h.Role.GetRoles)
	protected.Get("/privileges", h.Role.GetPrivileges)

	admin := protected.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.Get("/members", h.User.GetUsers)
	admin.Post("/members/bulk-delete", priv(model.PrivUserDelete), h.User.BulkDeleteUsers)
	admin.Patch("/members/bulk-update", priv(model.PrivUserUpdate), h.User.BulkUpdateUsers)
	admin.Get("/members/:id", h.User.GetUser)
	admin.Post("/members", priv(model.PrivUserCreate), h.User.CreateUser)
	admin.Put("/members/:id", priv(model.PrivUserUpdate), h.User.UpdateUser)
	admin.Patch("/members/:id", priv(model.PrivUserUpdate), h.User.UpdateUser)
	admin.Delete("/members/:id", priv(model.PrivUserDelete), h.User.DeleteUser)
	admin.Put("/members/:id/privileges", priv(model.PrivUserPrivilege), h.User.UpdateUserPrivileges)
}
