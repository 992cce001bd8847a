package asset_test

import (
	"math/big"
	"testing"

	"github.com/metaswap/swapr/internal/asset"
	"github.com/shopspring/decimal"
)

func TestAmount_Basic(t *testing.T) {
	oneETH := asset.MustAmount(asset.ETH, big.NewInt(1e18))

	if oneETH.IsZero() {
		t.Error("expected non-zero amount")
	}
	if !oneETH.ToDecimal().Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", oneETH.ToDecimal())
	}
	if oneETH.String() != "1 ETH" {
		t.Errorf("expected '1 ETH', got '%s'", oneETH.String())
	}
}

func TestAmount_RejectsNegative(t *testing.T) {
	if _, err := asset.NewAmount(asset.ETH, big.NewInt(-1)); err == nil {
		t.Error("expected error for negative raw value")
	}
	if _, err := asset.NewAmount(asset.ETH, nil); err == nil {
		t.Error("expected error for nil raw value")
	}
	if _, err := asset.NewAmount(asset.Token{}, big.NewInt(1)); err == nil {
		t.Error("expected error for zero token")
	}
}

func TestAmount_Add(t *testing.T) {
	one := asset.MustAmount(asset.ETH, big.NewInt(1e18))
	two := asset.MustAmount(asset.ETH, big.NewInt(2e18))

	sum, err := one.Add(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.ToDecimal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3, got %s", sum.ToDecimal())
	}
}

func TestAmount_CannotAddDifferentTokens(t *testing.T) {
	eth := asset.MustAmount(asset.ETH, big.NewInt(1e18))
	usdc := asset.MustAmount(asset.USDC, big.NewInt(1e6))

	if _, err := eth.Add(usdc); err == nil {
		t.Error("expected error when adding different tokens")
	}
}

func TestAmount_DefensiveCopy(t *testing.T) {
	raw := big.NewInt(1e18)
	a := asset.MustAmount(asset.ETH, raw)
	raw.SetInt64(0)

	if a.IsZero() {
		t.Error("amount must not alias the caller's big.Int")
	}
	a.Raw().SetInt64(42)
	if a.Raw().Cmp(big.NewInt(1e18)) != 0 {
		t.Error("Raw must return a copy")
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		token   asset.Token
		in      string
		wantWei string
		wantErr bool
	}{
		{name: "whole_usdc", token: asset.USDC, in: "1000", wantWei: "1000000000"},
		{name: "fractional_eth", token: asset.ETH, in: "0.5", wantWei: "500000000000000000"},
		{name: "too_many_places", token: asset.USDC, in: "1.0000001", wantErr: true},
		{name: "negative", token: asset.USDC, in: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := asset.ParseString(tt.token, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Raw().String() != tt.wantWei {
				t.Errorf("expected %s wei, got %s", tt.wantWei, a.Raw())
			}
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := asset.DefaultRegistry()

	byAddr, ok := r.Resolve(asset.ChainIDEthereum, asset.AddrUSDCEthereum.Hex())
	if !ok || !byAddr.Equals(asset.USDC) {
		t.Fatal("expected USDC by address")
	}

	bySym, ok := r.Resolve(asset.ChainIDBSC, "usdc")
	if !ok || bySym.ChainID() != asset.ChainIDBSC {
		t.Fatal("expected BSC USDC by case-insensitive symbol")
	}

	if _, ok := r.Resolve(999, "USDC"); ok {
		t.Error("expected miss on unknown chain")
	}
}
