package enums

import "fmt"

// TransferStatus tracks the lifecycle of a stock transfer header.
type TransferStatus string

const (
	TransferStatusDraft      TransferStatus = "draft"
	TransferStatusRequested  TransferStatus = "requested"
	TransferStatusReleased   TransferStatus = "released"
	TransferStatusInProgress TransferStatus = "in_progress"
	TransferStatusPicked     TransferStatus = "picked"
	TransferStatusInTransit  TransferStatus = "in_transit"
	TransferStatusReceived   TransferStatus = "received"
	TransferStatusComplete   TransferStatus = "complete"
	TransferStatusCancelled  TransferStatus = "cancelled"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusDraft,
	TransferStatusRequested,
	TransferStatusReleased,
	TransferStatusInProgress,
	TransferStatusPicked,
	TransferStatusInTransit,
	TransferStatusReceived,
	TransferStatusComplete,
	TransferStatusCancelled,
}

// String implements fmt.Stringer.
func (t TransferStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferStatus.
func (t TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further workflow operation can move the transfer.
func (t TransferStatus) IsTerminal() bool {
	return t == TransferStatusComplete || t == TransferStatusCancelled
}

// AllowsLineEdits reports whether lines may still be added or updated.
func (t TransferStatus) AllowsLineEdits() bool {
	return t == TransferStatusDraft || t == TransferStatusRequested
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
