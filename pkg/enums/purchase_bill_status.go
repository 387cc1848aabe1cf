package enums

import "fmt"

// PurchaseBillStatus maps to the purchase_bill_status_enum enum in Postgres.
type PurchaseBillStatus string

const (
	PurchaseBillStatusDraft    PurchaseBillStatus = "draft"
	PurchaseBillStatusApproved PurchaseBillStatus = "approved"
	PurchaseBillStatusPosted   PurchaseBillStatus = "posted"
)

var validPurchaseBillStatuses = []PurchaseBillStatus{
	PurchaseBillStatusDraft,
	PurchaseBillStatusApproved,
	PurchaseBillStatusPosted,
}

func (s PurchaseBillStatus) IsValid() bool {
	for _, candidate := range validPurchaseBillStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo enforces the monotonic draft -> approved -> posted chain.
func (s PurchaseBillStatus) CanTransitionTo(next PurchaseBillStatus) bool {
	switch s {
	case PurchaseBillStatusDraft:
		return next == PurchaseBillStatusApproved
	case PurchaseBillStatusApproved:
		return next == PurchaseBillStatusPosted
	default:
		return false
	}
}

// ParsePurchaseBillStatus converts raw input into PurchaseBillStatus.
func ParsePurchaseBillStatus(value string) (PurchaseBillStatus, error) {
	for _, candidate := range validPurchaseBillStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase bill status %q", value)
}
