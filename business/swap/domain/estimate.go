package domain

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
)

// Cost is an on-chain cost in native wei plus its USD conversion.
type Cost struct {
	Wei *big.Int
	USD decimal.Decimal
}

// ZeroCost returns an empty cost. A nil Wei is treated as zero everywhere.
func ZeroCost() Cost {
	return Cost{Wei: new(big.Int)}
}

// Add returns the sum of two costs. Absent wei entries count as zero.
func (c Cost) Add(other Cost) Cost {
	sum := new(big.Int)
	if c.Wei != nil {
		sum.Add(sum, c.Wei)
	}
	if other.Wei != nil {
		sum.Add(sum, other.Wei)
	}
	return Cost{Wei: sum, USD: c.USD.Add(other.USD)}
}

// SumCosts folds a possibly empty cost list into one.
func SumCosts(costs []Cost) Cost {
	total := ZeroCost()
	for _, c := range costs {
		total = total.Add(c)
	}
	return total
}

// Estimate is the canonical, comparable view of one vendor quote (or one
// step of it): typed input/output amounts, the effective exchange rate in
// human units, and the gas/fee costs.
type Estimate struct {
	Input        asset.Amount
	Output       asset.Amount
	ExchangeRate decimal.Decimal // output / input, decimal-adjusted
	SlippageBps  uint16
	GasCost      Cost
	FeeCost      Cost
}

// NewEstimate builds an estimate, computing the exchange rate once. Zero
// input or output is an invalid quote: rejecting it here keeps Inf/NaN out
// of the ranking stage entirely.
func NewEstimate(input, output asset.Amount, slippageBps uint16, gasCost, feeCost Cost) (Estimate, error) {
	if input.IsZero() {
		return Estimate{}, apperror.Validation(apperror.CodeZeroAmountQuote, "zero input amount in quote")
	}
	if output.IsZero() {
		return Estimate{}, apperror.Validation(apperror.CodeZeroAmountQuote, "zero output amount in quote")
	}
	rate := output.ToDecimal().Div(input.ToDecimal())
	return Estimate{
		Input:        input,
		Output:       output,
		ExchangeRate: rate,
		SlippageBps:  slippageBps,
		GasCost:      gasCost,
		FeeCost:      feeCost,
	}, nil
}

// TotalCostUSD returns gas + fee cost in USD.
func (e Estimate) TotalCostUSD() decimal.Decimal {
	return e.GasCost.USD.Add(e.FeeCost.USD)
}

// AggregateEstimate folds the per-step estimates of a route into one: costs
// are summed across steps, input is the first step's input, output is the
// last step's output, and the exchange rate is recomputed from those two
// endpoints (not averaged across steps).
func AggregateEstimate(steps []SwapStep) (Estimate, error) {
	if len(steps) == 0 {
		return Estimate{}, apperror.Validation(apperror.CodeMalformedQuote, "route has no steps")
	}

	gas := ZeroCost()
	fee := ZeroCost()
	var slippage uint16
	for _, s := range steps {
		gas = gas.Add(s.Estimate.GasCost)
		fee = fee.Add(s.Estimate.FeeCost)
		if s.Estimate.SlippageBps > slippage {
			slippage = s.Estimate.SlippageBps
		}
	}

	return NewEstimate(steps[0].Input, steps[len(steps)-1].Output, slippage, gas, fee)
}
