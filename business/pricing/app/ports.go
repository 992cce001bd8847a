// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/pricing/domain"
)

// Source provides USD prices for chain native coins (gas cost conversion).
type Source interface {
	NativeUSD(ctx context.Context, chainID uint64) (decimal.Decimal, error)
}

// Streamer is the optional push capability a source may offer; watch mode
// uses it to keep the cache warm without polling.
type Streamer interface {
	Stream(ctx context.Context, chainIDs []uint64) (<-chan domain.Price, error)
}
