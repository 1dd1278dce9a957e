package enums

import "fmt"

// StockAction classifies why a stock counter moved.
type StockAction string

const (
	StockActionCreated StockAction = "CREATED"
	StockActionUpdated StockAction = "UPDATED"
	StockActionSale    StockAction = "SALE"
	StockActionReturn  StockAction = "RETURN"
)

var validStockActions = []StockAction{
	StockActionCreated,
	StockActionUpdated,
	StockActionSale,
	StockActionReturn,
}

// String implements fmt.Stringer.
func (a StockAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known StockAction.
func (a StockAction) IsValid() bool {
	for _, candidate := range validStockActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseStockAction converts raw input into a StockAction.
func ParseStockAction(value string) (StockAction, error) {
	for _, candidate := range validStockActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock action %q", value)
}
