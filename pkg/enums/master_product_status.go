package enums

import "fmt"

// MasterProductStatus is the governance review state of a master product.
// The review workflow itself lives outside this service; posting paths only
// care whether a product cleared review.
type MasterProductStatus string

const (
	MasterProductStatusPending  MasterProductStatus = "pending"
	MasterProductStatusApproved MasterProductStatus = "approved"
	MasterProductStatusRejected MasterProductStatus = "rejected"
)

var validMasterProductStatuses = []MasterProductStatus{
	MasterProductStatusPending,
	MasterProductStatusApproved,
	MasterProductStatusRejected,
}

func (s MasterProductStatus) IsValid() bool {
	for _, candidate := range validMasterProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMasterProductStatus converts raw input into MasterProductStatus.
func ParseMasterProductStatus(value string) (MasterProductStatus, error) {
	for _, candidate := range validMasterProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid master product status %q", value)
}
