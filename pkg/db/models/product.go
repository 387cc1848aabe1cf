package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// Product is the org-scoped sellable item. SerialTracked products track every
// unit through the serial lifecycle; the rest are counted in aggregate only.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrgID           uuid.UUID       `gorm:"column:org_id;type:uuid;not null;index"`
	SKU             string          `gorm:"column:sku;not null"`
	Name            string          `gorm:"column:name;not null"`
	SerialTracked   bool            `gorm:"column:serial_tracked;not null;default:false"`
	SellingPrice    decimal.Decimal `gorm:"column:selling_price;type:decimal(20,4);not null;default:0"`
	MasterProductID *uuid.UUID      `gorm:"column:master_product_id;type:uuid"`
	Master          *MasterProduct  `gorm:"foreignKey:MasterProductID"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ResolvedHSN returns the governed HSN code for the product, if any.
func (p *Product) ResolvedHSN() *string {
	if p.Master == nil {
		return nil
	}
	return p.Master.HSNCode
}

// GovernanceApproved reports whether the linked master product cleared review.
func (p *Product) GovernanceApproved() bool {
	return p.Master != nil && p.Master.Status == enums.MasterProductStatusApproved
}
