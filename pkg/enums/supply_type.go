package enums

import "fmt"

// SupplyType classifies an invoice for GST purposes.
type SupplyType string

const (
	SupplyTypeIntrastate SupplyType = "intrastate"
	SupplyTypeInterstate SupplyType = "interstate"
	SupplyTypeZeroRated  SupplyType = "zero_rated"
	SupplyTypeExempt     SupplyType = "exempt"
)

var validSupplyTypes = []SupplyType{
	SupplyTypeIntrastate,
	SupplyTypeInterstate,
	SupplyTypeZeroRated,
	SupplyTypeExempt,
}

func (s SupplyType) IsValid() bool {
	for _, candidate := range validSupplyTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// Taxed reports whether lines under this supply type carry GST at all.
func (s SupplyType) Taxed() bool {
	return s == SupplyTypeIntrastate || s == SupplyTypeInterstate
}

// ParseSupplyType converts raw input into SupplyType.
func ParseSupplyType(value string) (SupplyType, error) {
	for _, candidate := range validSupplyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supply type %q", value)
}
