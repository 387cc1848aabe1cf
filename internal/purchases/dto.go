package purchases

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBillInput captures a draft purchase bill. Drafts are freely editable
// and nothing is validated against the HSN master until approval.
type CreateBillInput struct {
	OrgID        uuid.UUID
	SupplierName string
	BillNumber   string
	Items        []BillItemInput
}

// BillItemInput is one received line on a draft bill. SerialNumbers may be
// empty for serial-tracked products; posting then generates them.
type BillItemInput struct {
	ProductID     uuid.UUID
	Quantity      int
	UnitCost      decimal.Decimal
	HSNCode       string
	GSTRate       decimal.Decimal
	SerialNumbers []string
}

// ApproveInput moves a draft bill to approved.
type ApproveInput struct {
	OrgID   uuid.UUID
	BillID  uuid.UUID
	ActorID uuid.UUID
}

// PostInput moves an approved bill to posted, writing stock and serials.
type PostInput struct {
	OrgID   uuid.UUID
	BillID  uuid.UUID
	ActorID uuid.UUID
}

// LineError pins a validation finding to a bill line. Line is 1-based.
type LineError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}
