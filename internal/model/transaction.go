package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionCategory string

const (
	CategoryBahan       TransactionCategory = "bahan"
	CategoryAlat        TransactionCategory = "alat"
	CategoryUpah        TransactionCategory = "upah"
	CategoryVendor      TransactionCategory = "vendor"
	CategoryOperasional TransactionCategory = "operasional"
	CategoryKasMasuk    TransactionCategory = "kas_masuk"
	CategoryUangMasuk   TransactionCategory = "uang_masuk"
	CategoryAset        TransactionCategory = "aset"
	CategoryHutang      TransactionCategory = "hutang"
)

// IsStock reports whether transactions of this category move inventory.
func (c TransactionCategory) IsStock() bool {
	return c == CategoryBahan || c == CategoryAlat
}

type ItemStatus string

const (
	ItemReceiving    ItemStatus = "receiving"
	ItemOutWarehouse ItemStatus = "out_warehouse"
)

func (s ItemStatus) Valid() bool {
	return s == ItemReceiving || s == ItemOutWarehouse
}

// OrDefault maps the empty status to receiving.
func (s ItemStatus) OrDefault() ItemStatus {
	if s == "" {
		return ItemReceiving
	}
	return s
}

type Transaction struct {
	BaseModel
	ProjectID       uuid.UUID           `gorm:"type:varchar(36);index;not null" json:"project_id"`
	Category        TransactionCategory `gorm:"type:varchar(20);index;not null" json:"category"`
	Description     string              `gorm:"type:text" json:"description"`
	Amount          decimal.Decimal     `gorm:"type:numeric(18,4);not null" json:"amount"`
	Quantity        *decimal.Decimal    `gorm:"type:numeric(18,4)" json:"quantity,omitempty"`
	Unit            *string             `gorm:"type:varchar(50)" json:"unit,omitempty"`
	Status          *string             `gorm:"type:varchar(30)" json:"status,omitempty"`
	Receipt         *string             `gorm:"type:text" json:"receipt,omitempty"` // base64
	TransactionDate time.Time           `gorm:"index" json:"transaction_date"`
	Items           []TransactionItem   `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`

	ProjectName string `gorm:"-" json:"project_name,omitempty"`
}

// TransactionItem is one purchased line. Description is the inventory identity name.
type TransactionItem struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	TransactionID uuid.UUID       `gorm:"type:varchar(36);index;not null" json:"-"`
	Position      int             `gorm:"not null" json:"-"`
	Description   string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity      decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	Unit          string          `gorm:"type:varchar(50)" json:"unit"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"unit_price"`
	Total         decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"total"`
	Status        ItemStatus      `gorm:"type:varchar(20);not null" json:"status"`
	Supplier      *string         `gorm:"type:varchar(255)" json:"supplier,omitempty"`
}

// StockItems returns the lines that drive the ledger: the item list, or a single
// pseudo item built from quantity and unit. The pseudo item takes the transaction
// status when it is an item status and receiving otherwise. Nil means no stock effect.
func (t *Transaction) StockItems() []TransactionItem {
	if len(t.Items) > 0 {
		return t.Items
	}
	if t.Quantity == nil || t.Unit == nil {
		return nil
	}
	status := ItemReceiving
	if t.Status != nil {
		if s := ItemStatus(*t.Status); s.Valid() {
			status = s
		}
	}
	qty := *t.Quantity
	price := t.Amount
	if !qty.IsZero() {
		price = t.Amount.Div(qty)
	}
	return []TransactionItem{{
		TransactionID: t.ID,
		Description:   t.Description,
		Quantity:      qty,
		Unit:          *t.Unit,
		UnitPrice:     price,
		Total:         t.Amount,
		Status:        status,
	}}
}
