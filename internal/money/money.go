// Package money converts between display currency strings such as "1.25"
// and the smallest-unit integer amounts the ledger stores.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// ErrInvalidAmount is returned for strings that are not a non-negative
// amount representable in the configured precision.
var ErrInvalidAmount = errors.New("invalid amount")

// Units converts amounts for a currency with a fixed number of decimals.
type Units struct {
	decimals int32
}

// NewUnits returns a converter for a currency whose smallest unit is
// 10^-decimals of the display unit (9 for ether counted in gwei, 2 for
// pounds). Amounts are int64, so every price, payment and balance is capped
// at Ceiling display units.
func NewUnits(decimals int32) Units {
	return Units{decimals: decimals}
}

// Ceiling returns the largest amount representable, in display units.
func (u Units) Ceiling() decimal.Decimal {
	return u.Decimal(model.Amount(math.MaxInt64))
}

// Decimals returns the configured precision.
func (u Units) Decimals() int32 { return u.decimals }

// Parse converts a display string into a smallest-unit amount.
func (u Units) Parse(s string) (model.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}

	scaled := d.Shift(u.decimals)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, u.decimals)
	}
	bi := scaled.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("%w: %q", model.ErrAmountOverflow, s)
	}
	return model.Amount(bi.Int64()), nil
}

// Decimal returns a in display units.
func (u Units) Decimal(a model.Amount) decimal.Decimal {
	return decimal.New(int64(a), -u.decimals)
}

// Format renders a in display units without trailing zeros.
func (u Units) Format(a model.Amount) string {
	return u.Decimal(a).String()
}
