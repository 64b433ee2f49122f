package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UsageType string

const (
	UsageProduction UsageType = "production"
	UsageReturn     UsageType = "return"
	UsageAdjustment UsageType = "adjustment"
)

// WarehouseUsage records a quantity drawn from the warehouse for a project.
type WarehouseUsage struct {
	BaseModel
	InventoryID uuid.UUID       `gorm:"type:varchar(36);index;not null" json:"inventory_id"`
	ItemName    string          `gorm:"type:varchar(255);not null" json:"item_name"`
	Category    string          `gorm:"type:varchar(20)" json:"category"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(50)" json:"unit"`
	ProjectID   uuid.UUID       `gorm:"type:varchar(36);index;not null" json:"project_id"`
	ProjectName string          `gorm:"type:varchar(255)" json:"project_name"`
	UsageType   UsageType       `gorm:"type:varchar(20);not null" json:"usage_type"`
	Notes       string          `gorm:"type:text" json:"notes"`
}
