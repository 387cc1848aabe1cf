package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// ProductSerial tracks one physical unit of a serial-tracked product. Status is
// the authoritative lifecycle state; link rows (InvoiceItemSerial) record which
// invoice item holds a reservation or consumed the unit.
type ProductSerial struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrgID        uuid.UUID          `gorm:"column:org_id;type:uuid;not null;uniqueIndex:uq_serial_org_product_number"`
	ProductID    uuid.UUID          `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_serial_org_product_number"`
	SerialNumber string             `gorm:"column:serial_number;not null;uniqueIndex:uq_serial_org_product_number"`
	Status       enums.SerialStatus `gorm:"column:status;type:text;not null;default:'available'"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *ProductSerial) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
