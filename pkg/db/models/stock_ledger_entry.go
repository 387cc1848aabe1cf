package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// StockLedgerEntry records one immutable stock movement. Rows are only ever
// inserted; current stock is always derived by summation, never stored.
//
// Quantity is stored positive for every row. Direction is +1 except for
// downward adjustments, where it is -1; in/out rows derive their sign from the
// movement type during aggregation.
type StockLedgerEntry struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrgID     uuid.UUID               `gorm:"column:org_id;type:uuid;not null;index:idx_ledger_org_product"`
	ProductID uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index:idx_ledger_org_product"`
	Type      enums.StockMovementType `gorm:"column:type;type:text;not null"`
	Quantity  int                     `gorm:"column:quantity;not null"`
	Direction int                     `gorm:"column:direction;not null;default:1"`
	Notes     string                  `gorm:"column:notes;not null;default:''"`
	RefType   *string                 `gorm:"column:ref_type"`
	RefID     *uuid.UUID              `gorm:"column:ref_id;type:uuid"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (e *StockLedgerEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SignedQuantity is the entry's contribution to the derived stock level.
func (e *StockLedgerEntry) SignedQuantity() int {
	switch e.Type {
	case enums.StockMovementTypeIn:
		return e.Quantity
	case enums.StockMovementTypeOut:
		return -e.Quantity
	default:
		return e.Quantity * e.Direction
	}
}
