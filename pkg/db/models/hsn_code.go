package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HSNCode is a row of the HSN/SAC master. Declared HSN codes and GST rates on
// purchase bill lines are validated against active rows at approval time.
type HSNCode struct {
	Code        string          `gorm:"column:code;primaryKey"`
	Description string          `gorm:"column:description;not null;default:''"`
	GSTRate     decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null"`
	Active      bool            `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (HSNCode) TableName() string {
	return "hsn_codes"
}
