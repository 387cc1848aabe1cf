package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// PurchaseBill originates stock. Status is monotonic draft -> approved -> posted.
type PurchaseBill struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	OrgID        uuid.UUID                `gorm:"column:org_id;type:uuid;not null;index"`
	SupplierName string                   `gorm:"column:supplier_name;not null"`
	BillNumber   string                   `gorm:"column:bill_number;not null"`
	Status       enums.PurchaseBillStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	ApprovedBy   *uuid.UUID               `gorm:"column:approved_by;type:uuid"`
	ApprovedAt   *time.Time               `gorm:"column:approved_at"`
	PostedBy     *uuid.UUID               `gorm:"column:posted_by;type:uuid"`
	PostedAt     *time.Time               `gorm:"column:posted_at"`
	Items        []PurchaseBillItem       `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *PurchaseBill) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// PurchaseBillItem is one received line. The declared HSN code and GST rate are
// checked against the active HSN master when the bill is approved.
type PurchaseBillItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BillID    uuid.UUID       `gorm:"column:bill_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitCost  decimal.Decimal `gorm:"column:unit_cost;type:decimal(20,4);not null;default:0"`
	HSNCode   string          `gorm:"column:hsn_code;not null;default:''"`
	GSTRate   decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null;default:0"`
	// Serial numbers supplied on the bill; when empty, posting generates them.
	SerialNumbers []string  `gorm:"column:serial_numbers;type:jsonb;serializer:json"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *PurchaseBillItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
