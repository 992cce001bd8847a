package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrZeroToken       = errors.New("asset: amount has no token")
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrTokenMismatch   = errors.New("asset: cannot operate on different tokens")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for token")
)

// Amount is an immutable quantity of a token. The raw value is always in
// the smallest unit (wei).
type Amount struct {
	raw   *big.Int
	token Token
}

// NewAmount creates an Amount from a raw wei value. The raw value is
// defensively copied.
func NewAmount(token Token, raw *big.Int) (Amount, error) {
	if token.IsZero() {
		return Amount{}, ErrZeroToken
	}
	if raw == nil {
		return Amount{}, ErrNilRaw
	}
	if raw.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{raw: new(big.Int).Set(raw), token: token}, nil
}

// MustAmount is NewAmount that panics on error; for literals in tests and
// well-known tables.
func MustAmount(token Token, raw *big.Int) Amount {
	a, err := NewAmount(token, raw)
	if err != nil {
		panic(err)
	}
	return a
}

// Zero creates a zero Amount of the given token.
func Zero(token Token) Amount {
	return MustAmount(token, big.NewInt(0))
}

// Raw returns a copy of the wei value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Token returns the token this amount is denominated in.
func (a Amount) Token() Token {
	return a.token
}

// IsZero reports whether the amount is zero (or uninitialized).
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// Add adds two amounts of the same token.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameToken(b); err != nil {
		return Amount{}, err
	}
	return NewAmount(a.token, new(big.Int).Add(a.raw, b.raw))
}

// Cmp compares two amounts of the same token; -1, 0 or 1.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkSameToken(b); err != nil {
		return 0, err
	}
	return a.raw.Cmp(b.raw), nil
}

// Equals reports whether both amounts have the same token and value.
func (a Amount) Equals(b Amount) bool {
	if !a.token.Equals(b.token) {
		return false
	}
	return a.Raw().Cmp(b.Raw()) == 0
}

// ToDecimal converts to human units (wei / 10^decimals). Boundary function:
// display and rate math only.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.token.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.token.Decimals()))
}

// Float64 converts to human units as float64. Display and logging only.
func (a Amount) Float64() float64 {
	f, _ := a.ToDecimal().Float64()
	return f
}

// ParseDecimal creates an Amount from a human-unit decimal value.
func ParseDecimal(token Token, d decimal.Decimal) (Amount, error) {
	if token.IsZero() {
		return Amount{}, ErrZeroToken
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	scaled := d.Shift(int32(token.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}
	return NewAmount(token, scaled.BigInt())
}

// ParseString creates an Amount from a human-unit decimal string.
func ParseString(token Token, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid decimal string: %w", err)
	}
	return ParseDecimal(token, d)
}

// String returns a human-readable representation, e.g. "1.5 WETH".
func (a Amount) String() string {
	if a.token.IsZero() {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.token.Symbol())
}

func (a Amount) checkSameToken(b Amount) error {
	if a.token.IsZero() || b.token.IsZero() {
		return ErrZeroToken
	}
	if !a.token.Equals(b.token) {
		return fmt.Errorf("%w: %s vs %s", ErrTokenMismatch, a.token.Symbol(), b.token.Symbol())
	}
	return nil
}
