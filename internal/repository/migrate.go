package repository

import (
	"go-construction-inventory/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the application uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Project{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.InventoryRecord{},
		&model.InventoryMovement{},
		&model.WarehouseUsage{},
		&model.Notification{},
		&model.RAB{},
		&model.RABItem{},
		&model.ScheduleItem{},
		&model.Task{},
		&model.WorkReport{},
	)
}
