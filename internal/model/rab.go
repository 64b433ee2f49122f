package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RABDraft          = "draft"
	RABBiddingProcess = "bidding_process"
	RABApproved       = "approved"
	RABRejected       = "rejected"
)

// DefaultRABTax is the PPN percentage a new RAB starts with.
var DefaultRABTax = decimal.NewFromInt(11)

var hundred = decimal.NewFromInt(100)

// RAB (Rencana Anggaran Biaya) is a cost estimate offered to a client. Approving it
// creates the project it describes; ProjectID links the two until the approval is withdrawn.
type RAB struct {
	BaseModel
	ProjectID      *uuid.UUID      `gorm:"type:varchar(36);index" json:"project_id"`
	ProjectName    string          `gorm:"type:varchar(255);not null" json:"project_name"`
	ProjectType    string          `gorm:"type:varchar(20);not null" json:"project_type"`
	ClientName     *string         `gorm:"type:varchar(255)" json:"client_name,omitempty"`
	Location       *string         `gorm:"type:varchar(255)" json:"location,omitempty"`
	Status         string          `gorm:"type:varchar(20);index;not null" json:"status"`
	Discount       decimal.Decimal `gorm:"type:numeric(9,4);not null" json:"discount"` // percent
	Tax            decimal.Decimal `gorm:"type:numeric(9,4);not null" json:"tax"`      // percent
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	RejectedReason *string         `gorm:"type:text" json:"rejected_reason,omitempty"`
	Items          []RABItem       `gorm:"foreignKey:RABID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (RAB) TableName() string { return "rabs" }

func ValidRABStatus(status string) bool {
	switch status {
	case RABDraft, RABBiddingProcess, RABApproved, RABRejected:
		return true
	}
	return false
}

type RABTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Totals sums the loaded items, takes the discount percentage off the subtotal
// and adds tax on what remains.
func (r *RAB) Totals() RABTotals {
	subtotal := decimal.Zero
	for _, item := range r.Items {
		subtotal = subtotal.Add(item.Total)
	}
	discount := subtotal.Mul(r.Discount).Div(hundred)
	afterDiscount := subtotal.Sub(discount)
	tax := afterDiscount.Mul(r.Tax).Div(hundred)
	return RABTotals{
		Subtotal:   subtotal,
		Discount:   discount,
		Tax:        tax,
		GrandTotal: afterDiscount.Add(tax),
	}
}

// RABItem is one work line of a RAB, grouped by a free form category (persiapan, struktur, finishing...).
type RABItem struct {
	BaseModel
	RABID       uuid.UUID       `gorm:"column:rab_id;type:varchar(36);index;not null" json:"rab_id"`
	ProjectID   *uuid.UUID      `gorm:"type:varchar(36);index" json:"project_id,omitempty"`
	Category    string          `gorm:"type:varchar(100);not null" json:"category"`
	Description string          `gorm:"type:text;not null" json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"unit_price"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(50)" json:"unit"`
	Total       decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"total"`
}

func (RABItem) TableName() string { return "rab_items" }

// Recalculate refreshes Total from price and quantity.
func (i *RABItem) Recalculate() {
	i.Total = i.UnitPrice.Mul(i.Quantity)
}
