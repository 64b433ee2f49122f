package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StockAvailable = "Tersedia"
	StockDepleted  = "Habis"
)

// StockKey is the identity of an inventory record.
type StockKey struct {
	ItemName  string
	Category  string
	ProjectID uuid.UUID
}

func (k StockKey) LockKey() string {
	return fmt.Sprintf("inventory:%s:%s:%s", k.ProjectID, k.Category, k.ItemName)
}

type InventoryRecord struct {
	BaseModel
	ItemName             string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_inventory_identity,priority:1" json:"item_name"`
	Category             string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_inventory_identity,priority:2" json:"category"`
	ProjectID            uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_inventory_identity,priority:3" json:"project_id"`
	QuantityInWarehouse  decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity_in_warehouse"`
	QuantityOutWarehouse decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity_out_warehouse"`
	Quantity             decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	Unit                 string          `gorm:"type:varchar(50)" json:"unit"`
	UnitPrice            decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"unit_price"`
	TotalValue           decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"total_value"`
	ProjectType          string          `gorm:"type:varchar(20)" json:"project_type"`
	TransactionID        *uuid.UUID      `gorm:"type:varchar(36);index" json:"transaction_id,omitempty"`
	Status               string          `gorm:"type:varchar(30)" json:"status"`

	ProjectName string `gorm:"-" json:"project_name,omitempty"`
}

func (InventoryRecord) TableName() string {
	return "inventories"
}

func (r *InventoryRecord) Key() StockKey {
	return StockKey{ItemName: r.ItemName, Category: r.Category, ProjectID: r.ProjectID}
}

// Sync recomputes quantity from the two counters.
func (r *InventoryRecord) Sync() {
	r.Quantity = r.QuantityInWarehouse.Add(r.QuantityOutWarehouse)
}
