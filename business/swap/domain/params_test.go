package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
)

var testPayer = common.HexToAddress("0x00000000000000000000000000000000DeaDBeef")

func validParams() SwapParams {
	return SwapParams{
		Input:     asset.USDCBSC,
		Output:    asset.WETHBSC,
		AmountWei: new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18)),
		Payer:     testPayer,
	}
}

func TestSwapParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SwapParams)
		wantErr apperror.Code
	}{
		{
			name:   "valid",
			mutate: func(p *SwapParams) {},
		},
		{
			name:    "missing_tokens",
			mutate:  func(p *SwapParams) { p.Input = asset.Token{} },
			wantErr: apperror.CodeRequiredField,
		},
		{
			name:    "nil_amount",
			mutate:  func(p *SwapParams) { p.AmountWei = nil },
			wantErr: apperror.CodeZeroInputAmount,
		},
		{
			name:    "zero_amount",
			mutate:  func(p *SwapParams) { p.AmountWei = big.NewInt(0) },
			wantErr: apperror.CodeZeroInputAmount,
		},
		{
			name:    "negative_amount",
			mutate:  func(p *SwapParams) { p.AmountWei = big.NewInt(-1) },
			wantErr: apperror.CodeZeroInputAmount,
		},
		{
			name:    "missing_payer",
			mutate:  func(p *SwapParams) { p.Payer = common.Address{} },
			wantErr: apperror.CodeMissingPayer,
		},
		{
			name:    "slippage_over_bound",
			mutate:  func(p *SwapParams) { p.MaxSlippageBps = 10001 },
			wantErr: apperror.CodeInvalidSlippage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperror.IsCode(err, tt.wantErr) {
				t.Fatalf("expected code %s, got %v", tt.wantErr, err)
			}
			if !apperror.IsValidation(err) {
				t.Errorf("%v should classify as a validation error", err)
			}
		})
	}
}

func TestSwapParamsWithDefaults(t *testing.T) {
	p := validParams().WithDefaults()
	if p.Receiver != p.Payer {
		t.Errorf("receiver = %s, want payer %s", p.Receiver, p.Payer)
	}
	if p.MaxSlippageBps != DefaultSlippageBps {
		t.Errorf("slippage = %d, want default %d", p.MaxSlippageBps, DefaultSlippageBps)
	}

	// Caller-supplied values survive.
	custom := validParams()
	custom.Receiver = common.HexToAddress("0x1111111111111111111111111111111111111111")
	custom.MaxSlippageBps = 100
	custom = custom.WithDefaults()
	if custom.Receiver == custom.Payer {
		t.Error("explicit receiver was overwritten")
	}
	if custom.MaxSlippageBps != 100 {
		t.Errorf("explicit slippage was overwritten: %d", custom.MaxSlippageBps)
	}
}

func TestSwapParamsIsCrossChain(t *testing.T) {
	p := validParams()
	if p.IsCrossChain() {
		t.Error("same-chain params reported cross-chain")
	}
	p.Output = asset.WETH // mainnet
	if !p.IsCrossChain() {
		t.Error("BSC->mainnet params not reported cross-chain")
	}
}
