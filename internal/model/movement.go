package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementKind string

const (
	MovementReceive      MovementKind = "receive"
	MovementOutWarehouse MovementKind = "out_warehouse"
	MovementStatusChange MovementKind = "status_change"
	MovementIssue        MovementKind = "issue"
	MovementAdjust       MovementKind = "adjust"
)

// InventoryMovement is an append-only audit line for one ledger mutation.
type InventoryMovement struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	InventoryID      uuid.UUID       `gorm:"type:varchar(36);index;not null" json:"inventory_id"`
	TransactionID    *uuid.UUID      `gorm:"type:varchar(36);index" json:"transaction_id,omitempty"`
	WarehouseUsageID *uuid.UUID      `gorm:"type:varchar(36)" json:"warehouse_usage_id,omitempty"`
	Kind             MovementKind    `gorm:"type:varchar(20);not null" json:"kind"`
	DeltaIn          decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"delta_in"`
	DeltaOut         decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"delta_out"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
}
