package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrAmountRange     = errors.New("amount out of range")
)

// Amount is a currency value in fixed point, one unit = 0.0001 currency.
// All ledger arithmetic is plain integer addition and subtraction; decimals
// only appear at the text boundary.
type Amount int64

const scale = 4

// Parse converts a decimal string into a fixed-point Amount. Precision
// beyond four fractional digits is rounded half away from zero.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}

	shifted := d.Shift(scale).Round(0)
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q", ErrAmountRange, s)
	}

	return Amount(shifted.IntPart()), nil
}

// String formats the amount with exactly four fractional digits.
func (a Amount) String() string {
	return decimal.New(int64(a), -scale).StringFixed(scale)
}

func (a Amount) IsNegative() bool {
	return a < 0
}
