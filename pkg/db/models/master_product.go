package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// MasterProduct is the governed catalog entry shared across tenants. Its review
// workflow is owned by a separate service; this backend only reads the outcome.
type MasterProduct struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	Name      string                    `gorm:"column:name;not null"`
	Status    enums.MasterProductStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	HSNCode   *string                   `gorm:"column:hsn_code"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MasterProduct) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
