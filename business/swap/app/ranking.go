package app

import (
	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/swap/domain"
)

// RoutePerformance is the per-route view of an already-ranked list: output,
// effective rate, total USD cost, and the shortfall against the best route.
// Computed from the normalized estimates only, never re-fetched.
type RoutePerformance struct {
	AggregatorID string
	Output       decimal.Decimal
	OutputSymbol string
	ExchangeRate decimal.Decimal
	TotalCostUSD decimal.Decimal
	Steps        int
	DeltaToBest  decimal.Decimal // best output - this output, in output units
}

// Performance projects a ranked list into per-route relative metrics. The
// first entry is the best route and has a zero delta.
func Performance(ranked []*domain.TransactionRequestWithEstimate) []RoutePerformance {
	if len(ranked) == 0 {
		return nil
	}
	bestOutput := ranked[0].Estimate.Output.ToDecimal()

	views := make([]RoutePerformance, 0, len(ranked))
	for _, r := range ranked {
		output := r.Estimate.Output.ToDecimal()
		views = append(views, RoutePerformance{
			AggregatorID: r.AggregatorID,
			Output:       output,
			OutputSymbol: r.Estimate.Output.Token().Symbol(),
			ExchangeRate: r.Estimate.ExchangeRate,
			TotalCostUSD: r.Estimate.TotalCostUSD(),
			Steps:        len(r.Steps),
			DeltaToBest:  bestOutput.Sub(output),
		})
	}
	return views
}

// CompactRoute is the field subset needed for tabular display.
type CompactRoute struct {
	AggregatorID string
	ChainID      uint64
	To           string
	Output       string
	ExchangeRate string
	CostUSD      string
}

// Compact reduces every route to its display fields.
func Compact(ranked []*domain.TransactionRequestWithEstimate) []CompactRoute {
	views := make([]CompactRoute, 0, len(ranked))
	for _, r := range ranked {
		views = append(views, CompactRoute{
			AggregatorID: r.AggregatorID,
			ChainID:      r.ChainID,
			To:           r.To.Hex(),
			Output:       r.Estimate.Output.String(),
			ExchangeRate: r.Estimate.ExchangeRate.String(),
			CostUSD:      r.Estimate.TotalCostUSD().StringFixed(2),
		})
	}
	return views
}

// Best returns the compact view of the top-ranked route, or nil for an
// empty list.
func Best(ranked []*domain.TransactionRequestWithEstimate) *CompactRoute {
	if len(ranked) == 0 {
		return nil
	}
	v := Compact(ranked[:1])
	return &v[0]
}
