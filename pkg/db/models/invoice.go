package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// Invoice consumes stock. Status is draft -> finalized -> posted; a finalized
// invoice may reopen to draft, which releases its serial reservations. The tax
// columns are the snapshot computed at finalize and recomputed at post.
type Invoice struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrgID         uuid.UUID           `gorm:"column:org_id;type:uuid;not null;index"`
	CustomerID    *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null"`
	Status        enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	SupplyType    *enums.SupplyType   `gorm:"column:supply_type;type:text"`
	TotalTaxable  decimal.Decimal     `gorm:"column:total_taxable;type:decimal(20,4);not null;default:0"`
	TotalCGST     decimal.Decimal     `gorm:"column:total_cgst;type:decimal(20,4);not null;default:0"`
	TotalSGST     decimal.Decimal     `gorm:"column:total_sgst;type:decimal(20,4);not null;default:0"`
	TotalIGST     decimal.Decimal     `gorm:"column:total_igst;type:decimal(20,4);not null;default:0"`
	GrandTotal    decimal.Decimal     `gorm:"column:grand_total;type:decimal(20,4);not null;default:0"`
	FinalizedAt   *time.Time          `gorm:"column:finalized_at"`
	PostedBy      *uuid.UUID          `gorm:"column:posted_by;type:uuid"`
	PostedAt      *time.Time          `gorm:"column:posted_at"`
	Items         []InvoiceItem       `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (inv *Invoice) BeforeCreate(*gorm.DB) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return nil
}

// InvoiceItem is one sold line. Serial-tracked products list serial numbers and
// derive Quantity from them; quantity products carry Quantity alone.
type InvoiceItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceID     uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:decimal(20,4);not null;default:0"`
	LineTotal     decimal.Decimal `gorm:"column:line_total;type:decimal(20,4);not null;default:0"`
	HSNCode       string          `gorm:"column:hsn_code;not null;default:''"`
	GSTRate       decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null;default:0"`
	SerialNumbers []string        `gorm:"column:serial_numbers;type:jsonb;serializer:json"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *InvoiceItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
