package enums

import "fmt"

// SerialStatus maps to the serial_status_enum enum in Postgres.
//
// The lifecycle only moves forward available -> reserved -> used, with the
// single backward edge reserved -> available when a finalized invoice is
// reopened. used is terminal.
type SerialStatus string

const (
	SerialStatusAvailable SerialStatus = "available"
	SerialStatusReserved  SerialStatus = "reserved"
	SerialStatusUsed      SerialStatus = "used"
)

var validSerialStatuses = []SerialStatus{
	SerialStatusAvailable,
	SerialStatusReserved,
	SerialStatusUsed,
}

func (s SerialStatus) IsValid() bool {
	for _, candidate := range validSerialStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the edge from s to next is a legal lifecycle move.
func (s SerialStatus) CanTransitionTo(next SerialStatus) bool {
	switch s {
	case SerialStatusAvailable:
		return next == SerialStatusReserved
	case SerialStatusReserved:
		return next == SerialStatusUsed || next == SerialStatusAvailable
	default:
		return false
	}
}

// ParseSerialStatus converts raw input into SerialStatus.
func ParseSerialStatus(value string) (SerialStatus, error) {
	for _, candidate := range validSerialStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid serial status %q", value)
}
