package lib

import (
	"math"

	"github.com/shopspring/decimal"
)

/*
	Amount is the fixed-point monetary type used for every balance, reserve,
	share, and price in the ledger. It counts base units of 1e-8 (one 'coin'
	equals CoinUnits base units) so all arithmetic is exact integer
	arithmetic: replicas can never diverge on a rounding decision the way
	floating point would allow. Divisions floor - value lost to rounding
	always accrues to the pool side, never to the individual caller.
*/

const (
	// AmountDecimals is the fixed fractional precision of every monetary value
	AmountDecimals = 8
	// CoinUnits is the number of base units in one whole coin (10^AmountDecimals)
	CoinUnits = 100_000_000
	// MaxAmount bounds the representable range
	MaxAmount = Amount(math.MaxUint64)
)

// Amount is a count of 1e-8 base units
type Amount uint64

// NewAmountFromCoins() converts a whole number of coins into an Amount
func NewAmountFromCoins(coins uint64) Amount { return Amount(coins * CoinUnits) }

// ParseAmount() converts a decimal string with at most 8 fractional digits into an Amount
func ParseAmount(s string) (Amount, ErrorI) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount(s)
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount(s)
	}
	// shift into base units; anything fractional left over exceeds the precision
	shifted := d.Shift(AmountDecimals)
	if !shifted.IsInteger() {
		return 0, ErrPrecisionLoss(s)
	}
	n := shifted.BigInt()
	if !n.IsUint64() {
		return 0, ErrAmountOverflow(s)
	}
	return Amount(n.Uint64()), nil
}

// String() formats the amount with exactly 8 fractional digits
func (a Amount) String() string {
	return decimal.New(int64(a), -AmountDecimals).StringFixed(AmountDecimals)
}

// IsZero() returns true if the amount holds no value
func (a Amount) IsZero() bool { return a == 0 }

// Add() returns a + b and whether the addition was possible without overflow
func (a Amount) Add(b Amount) (Amount, bool) {
	if math.MaxUint64-uint64(a) < uint64(b) {
		return 0, false
	}
	return a + b, true
}

// Sub() returns a - b and whether the subtraction was possible without underflow
func (a Amount) Sub(b Amount) (Amount, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// MulDiv() returns floor(a * b / c)
func (a Amount) MulDiv(b, c Amount) Amount {
	return Amount(SafeMulDiv(uint64(a), uint64(b), uint64(c)))
}

// MulPrice() applies a price (tokenTo base units per whole tokenFrom coin) to the amount, flooring
func (a Amount) MulPrice(price Amount) Amount {
	return Amount(SafeMulDiv(uint64(a), uint64(price), CoinUnits))
}

// Percent() returns floor(a * pct / 100)
func (a Amount) Percent(pct uint64) Amount {
	return Amount(SafeMulDiv(uint64(a), pct, 100))
}

// SqrtProduct() returns floor(sqrt(a * b)) - the geometric mean used for genesis liquidity shares
func SqrtProduct(a, b Amount) Amount {
	return Amount(SqrtProductUint64(uint64(a), uint64(b)))
}

// MarshalJSON() encodes the amount as a quoted decimal string with exactly 8 fractional digits
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte("\"" + a.String() + "\""), nil
}

// UnmarshalJSON() decodes a quoted decimal string into an amount
func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return ErrInvalidAmount(string(b))
	}
	parsed, err := ParseAmount(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
