package model

import "math"

// MulQuantity returns unit × quantity, or ErrAmountOverflow.
func MulQuantity(unit Amount, quantity int64) (Amount, error) {
	if unit < 0 || quantity < 0 {
		return 0, ErrAmountOverflow
	}
	if quantity != 0 && int64(unit) > math.MaxInt64/quantity {
		return 0, ErrAmountOverflow
	}
	return unit * Amount(quantity), nil
}

// Add returns a + b, or ErrAmountOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrAmountOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}
