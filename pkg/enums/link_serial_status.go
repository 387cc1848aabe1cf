package enums

import "fmt"

// LinkSerialStatus is the status of an invoice-item/serial link row.
type LinkSerialStatus string

const (
	LinkSerialStatusReserved LinkSerialStatus = "reserved"
	LinkSerialStatusUsed     LinkSerialStatus = "used"
)

var validLinkSerialStatuses = []LinkSerialStatus{
	LinkSerialStatusReserved,
	LinkSerialStatusUsed,
}

func (s LinkSerialStatus) IsValid() bool {
	for _, candidate := range validLinkSerialStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLinkSerialStatus converts raw input into LinkSerialStatus.
func ParseLinkSerialStatus(value string) (LinkSerialStatus, error) {
	for _, candidate := range validLinkSerialStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid link serial status %q", value)
}
