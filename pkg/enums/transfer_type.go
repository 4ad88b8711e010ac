package enums

import "fmt"

// TransferType classifies why stock is being moved.
type TransferType string

const (
	TransferTypeInternal       TransferType = "internal"
	TransferTypeReplenishment  TransferType = "replenishment"
	TransferTypeInterWarehouse TransferType = "inter_warehouse"
	TransferTypeReturn         TransferType = "return"
)

var validTransferTypes = []TransferType{
	TransferTypeInternal,
	TransferTypeReplenishment,
	TransferTypeInterWarehouse,
	TransferTypeReturn,
}

// String implements fmt.Stringer.
func (t TransferType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferType.
func (t TransferType) IsValid() bool {
	for _, candidate := range validTransferTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransferType converts raw input into a TransferType.
func ParseTransferType(value string) (TransferType, error) {
	for _, candidate := range validTransferTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer type %q", value)
}
