package enums

import "fmt"

// TransferLineStatus tracks the pick/receive progress of a single transfer line.
type TransferLineStatus string

const (
	TransferLineStatusPending           TransferLineStatus = "pending"
	TransferLineStatusAllocated         TransferLineStatus = "allocated"
	TransferLineStatusPartiallyPicked   TransferLineStatus = "partially_picked"
	TransferLineStatusPicked            TransferLineStatus = "picked"
	TransferLineStatusInTransit         TransferLineStatus = "in_transit"
	TransferLineStatusPartiallyReceived TransferLineStatus = "partially_received"
	TransferLineStatusReceived          TransferLineStatus = "received"
	TransferLineStatusCancelled         TransferLineStatus = "cancelled"
)

var validTransferLineStatuses = []TransferLineStatus{
	TransferLineStatusPending,
	TransferLineStatusAllocated,
	TransferLineStatusPartiallyPicked,
	TransferLineStatusPicked,
	TransferLineStatusInTransit,
	TransferLineStatusPartiallyReceived,
	TransferLineStatusReceived,
	TransferLineStatusCancelled,
}

// String implements fmt.Stringer.
func (t TransferLineStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferLineStatus.
func (t TransferLineStatus) IsValid() bool {
	for _, candidate := range validTransferLineStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransferLineStatus converts raw input into a TransferLineStatus.
func ParseTransferLineStatus(value string) (TransferLineStatus, error) {
	for _, candidate := range validTransferLineStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer line status %q", value)
}
