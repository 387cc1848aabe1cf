package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// Org is a tenant. Every core table carries its org_id; the auth layer
// guarantees callers only ever present their own.
type Org struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	GSTIN     *string         `gorm:"column:gstin"`
	StateCode string          `gorm:"column:state_code;not null"`
	TaxStatus enums.TaxStatus `gorm:"column:tax_status;type:text;not null;default:'registered'"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Org) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
