package invoices

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// SaveDraftInput creates a draft invoice. Drafts tolerate every governance and
// stock problem; only finalize enforces them.
type SaveDraftInput struct {
	OrgID         uuid.UUID
	CustomerID    *uuid.UUID
	InvoiceNumber string
	Items         []InvoiceItemInput
}

// UpdateDraftInput replaces the item set of an existing draft.
type UpdateDraftInput struct {
	OrgID      uuid.UUID
	InvoiceID  uuid.UUID
	CustomerID *uuid.UUID
	Items      []InvoiceItemInput
}

// InvoiceItemInput is one sold line. UnitPrice falls back to the product's
// selling price when nil. Serial-tracked products identify units by
// SerialNumbers; Quantity then must match their count.
type InvoiceItemInput struct {
	ProductID     uuid.UUID
	Quantity      int
	UnitPrice     *decimal.Decimal
	SerialNumbers []string
}

// FinalizeInput moves a draft to finalized, reserving serials and snapshotting tax.
type FinalizeInput struct {
	OrgID     uuid.UUID
	InvoiceID uuid.UUID
	ActorID   uuid.UUID
}

// PostInput moves a finalized invoice to posted, consuming stock and serials.
type PostInput struct {
	OrgID     uuid.UUID
	InvoiceID uuid.UUID
	ActorID   uuid.UUID
}

// ReopenInput takes a finalized invoice back to draft, releasing reservations.
type ReopenInput struct {
	OrgID     uuid.UUID
	InvoiceID uuid.UUID
	ActorID   uuid.UUID
}

// ItemIssue is one categorized validation finding on an invoice line.
// Line is 1-based. AvailableQty is set for insufficient_stock only.
type ItemIssue struct {
	Line          int                 `json:"line"`
	ProductID     uuid.UUID           `json:"product_id"`
	Kind          enums.ItemIssueKind `json:"kind"`
	Message       string              `json:"message"`
	AvailableQty  *int                `json:"available_qty,omitempty"`
	SerialNumbers []string            `json:"serial_numbers,omitempty"`
}
