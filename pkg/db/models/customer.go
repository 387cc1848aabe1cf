package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// Customer is an org-scoped invoice counterparty. StateCode and TaxStatus feed
// the supply-type decision; either may be absent for walk-in consumers.
type Customer struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	OrgID     uuid.UUID        `gorm:"column:org_id;type:uuid;not null;index"`
	Name      string           `gorm:"column:name;not null"`
	GSTIN     *string          `gorm:"column:gstin"`
	StateCode *string          `gorm:"column:state_code"`
	TaxStatus *enums.TaxStatus `gorm:"column:tax_status;type:text"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
