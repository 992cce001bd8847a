package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
)

func usdc(units int64) asset.Amount {
	raw := new(big.Int).Mul(big.NewInt(units), big.NewInt(1_000_000))
	return asset.MustAmount(asset.USDCBSC, new(big.Int).Mul(raw, big.NewInt(1_000_000_000_000))) // 18 decimals on BSC
}

func wethBSC(wei string) asset.Amount {
	raw, ok := new(big.Int).SetString(wei, 10)
	if !ok {
		panic("bad wei literal: " + wei)
	}
	return asset.MustAmount(asset.WETHBSC, raw)
}

func TestNewEstimate(t *testing.T) {
	tests := []struct {
		name     string
		input    asset.Amount
		output   asset.Amount
		wantRate string
		wantErr  apperror.Code
	}{
		{
			name:     "usdc_to_weth",
			input:    usdc(1000),
			output:   wethBSC("310000000000000000"), // 0.31 WETH
			wantRate: "0.00031",
		},
		{
			name:    "zero_input_rejected",
			input:   asset.Zero(asset.USDCBSC),
			output:  wethBSC("310000000000000000"),
			wantErr: apperror.CodeZeroAmountQuote,
		},
		{
			name:    "zero_output_rejected",
			input:   usdc(1000),
			output:  asset.Zero(asset.WETHBSC),
			wantErr: apperror.CodeZeroAmountQuote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := NewEstimate(tt.input, tt.output, DefaultSlippageBps, ZeroCost(), ZeroCost())
			if tt.wantErr != "" {
				if !apperror.IsCode(err, tt.wantErr) {
					t.Fatalf("expected code %s, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want, _ := decimal.NewFromString(tt.wantRate)
			if !est.ExchangeRate.Equal(want) {
				t.Errorf("exchange rate = %s, want %s", est.ExchangeRate, want)
			}
		})
	}
}

func TestNewEstimate_Idempotent(t *testing.T) {
	in := usdc(1000)
	out := wethBSC("310000000000000000")
	gas := Cost{Wei: big.NewInt(5_000_000_000_000_000), USD: decimal.NewFromFloat(3.2)}

	a, err := NewEstimate(in, out, 300, gas, ZeroCost())
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	b, err := NewEstimate(in, out, 300, gas, ZeroCost())
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if !a.ExchangeRate.Equal(b.ExchangeRate) || !a.Input.Equals(b.Input) ||
		!a.Output.Equals(b.Output) || a.GasCost.Wei.Cmp(b.GasCost.Wei) != 0 ||
		!a.GasCost.USD.Equal(b.GasCost.USD) {
		t.Error("same inputs produced different estimates")
	}
}

func TestSumCosts(t *testing.T) {
	costs := []Cost{
		{Wei: big.NewInt(100), USD: decimal.NewFromFloat(1.5)},
		{Wei: nil, USD: decimal.NewFromFloat(0.5)}, // absent wei counts as zero
		{Wei: big.NewInt(50)},
	}
	total := SumCosts(costs)
	if total.Wei.Cmp(big.NewInt(150)) != 0 {
		t.Errorf("wei sum = %s, want 150", total.Wei)
	}
	if !total.USD.Equal(decimal.NewFromFloat(2.0)) {
		t.Errorf("usd sum = %s, want 2", total.USD)
	}

	empty := SumCosts(nil)
	if empty.Wei.Sign() != 0 || !empty.USD.IsZero() {
		t.Errorf("empty sum = %s/%s, want zero", empty.Wei, empty.USD)
	}
}

func TestAggregateEstimate(t *testing.T) {
	// Two-hop route: 1000 USDC -> WBNB -> 0.31 WETH. The aggregate must use
	// the first input, last output, and summed costs.
	bnbMid := asset.MustAmount(asset.WBNB, big.NewInt(2_000_000_000_000_000_000))

	hop1, err := NewEstimate(usdc(1000), bnbMid, 300,
		Cost{Wei: big.NewInt(1000), USD: decimal.NewFromFloat(1.0)},
		Cost{Wei: big.NewInt(10), USD: decimal.NewFromFloat(0.1)})
	if err != nil {
		t.Fatalf("hop1: %v", err)
	}
	hop2, err := NewEstimate(bnbMid, wethBSC("310000000000000000"), 500,
		Cost{Wei: big.NewInt(2000), USD: decimal.NewFromFloat(2.0)},
		Cost{})
	if err != nil {
		t.Fatalf("hop2: %v", err)
	}

	steps := []SwapStep{
		{Type: StepSwap, Input: hop1.Input, Output: hop1.Output, Estimate: hop1},
		{Type: StepSwap, Input: hop2.Input, Output: hop2.Output, Estimate: hop2},
	}

	agg, err := AggregateEstimate(steps)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !agg.Input.Equals(steps[0].Input) {
		t.Error("aggregate input is not the first step's input")
	}
	if !agg.Output.Equals(steps[1].Output) {
		t.Error("aggregate output is not the last step's output")
	}
	wantRate, _ := decimal.NewFromString("0.00031")
	if !agg.ExchangeRate.Equal(wantRate) {
		t.Errorf("aggregate rate = %s, want %s (endpoints, not per-step average)", agg.ExchangeRate, wantRate)
	}
	if agg.GasCost.Wei.Cmp(big.NewInt(3000)) != 0 {
		t.Errorf("gas wei = %s, want 3000", agg.GasCost.Wei)
	}
	if !agg.GasCost.USD.Equal(decimal.NewFromFloat(3.0)) {
		t.Errorf("gas usd = %s, want 3", agg.GasCost.USD)
	}
	if agg.FeeCost.Wei.Cmp(big.NewInt(10)) != 0 {
		t.Errorf("fee wei = %s, want 10", agg.FeeCost.Wei)
	}
	if agg.SlippageBps != 500 {
		t.Errorf("slippage = %d, want worst-step 500", agg.SlippageBps)
	}

	if _, err := AggregateEstimate(nil); !apperror.IsCode(err, apperror.CodeMalformedQuote) {
		t.Errorf("empty route: expected MALFORMED_QUOTE, got %v", err)
	}
}

func TestEstimateTotalCostUSD(t *testing.T) {
	est := Estimate{
		GasCost: Cost{USD: decimal.NewFromFloat(2.5)},
		FeeCost: Cost{USD: decimal.NewFromFloat(0.5)},
	}
	if !est.TotalCostUSD().Equal(decimal.NewFromFloat(3.0)) {
		t.Errorf("total cost = %s, want 3", est.TotalCostUSD())
	}
}
