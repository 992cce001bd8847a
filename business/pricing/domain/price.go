// Package domain contains the core domain types for the pricing context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is one USD quote for a chain's native coin.
type Price struct {
	ChainID   uint64
	Symbol    string // exchange ticker, e.g. "ETHUSDT"
	USD       decimal.Decimal
	Source    string
	Timestamp time.Time
}

// StaleAfter reports whether the price is older than ttl.
func (p Price) StaleAfter(ttl time.Duration, now time.Time) bool {
	return now.Sub(p.Timestamp) > ttl
}
