package enums

import "fmt"

// TaxStatus captures a party's GST registration standing.
type TaxStatus string

const (
	TaxStatusRegistered   TaxStatus = "registered"
	TaxStatusComposition  TaxStatus = "composition"
	TaxStatusUnregistered TaxStatus = "unregistered"
	TaxStatusConsumer     TaxStatus = "consumer"
	TaxStatusSEZUnit      TaxStatus = "sez_unit"
	TaxStatusSEZDeveloper TaxStatus = "sez_developer"
)

var validTaxStatuses = []TaxStatus{
	TaxStatusRegistered,
	TaxStatusComposition,
	TaxStatusUnregistered,
	TaxStatusConsumer,
	TaxStatusSEZUnit,
	TaxStatusSEZDeveloper,
}

func (s TaxStatus) IsValid() bool {
	for _, candidate := range validTaxStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsSEZ reports whether supplies to or from this party are zero-rated.
func (s TaxStatus) IsSEZ() bool {
	return s == TaxStatusSEZUnit || s == TaxStatusSEZDeveloper
}

// ParseTaxStatus converts raw input into TaxStatus.
func ParseTaxStatus(value string) (TaxStatus, error) {
	for _, candidate := range validTaxStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tax status %q", value)
}
