package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// InvoiceItemSerial links one serial number to the invoice item holding it.
// A serial has at most one active link at a time; releasing a reservation
// deletes the row rather than leaving a cancelled tombstone.
type InvoiceItemSerial struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceItemID uuid.UUID              `gorm:"column:invoice_item_id;type:uuid;not null;index"`
	SerialID      uuid.UUID              `gorm:"column:serial_id;type:uuid;not null;uniqueIndex:uq_link_serial"`
	SerialNumber  string                 `gorm:"column:serial_number;not null"`
	Status        enums.LinkSerialStatus `gorm:"column:status;type:text;not null;default:'reserved'"`
	UsedAt        *time.Time             `gorm:"column:used_at"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (l *InvoiceItemSerial) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
