// Package domain contains the core domain types for the swap context.
package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
)

const (
	// DefaultSlippageBps is applied when the caller does not set a slippage
	// tolerance (500 = 5%).
	DefaultSlippageBps uint16 = 500

	// MaxSlippageBpsBound is the exclusive-inclusive upper bound: slippage
	// must fall in (0, 10000].
	MaxSlippageBpsBound uint16 = 10000
)

// ContractCall describes an arbitrary call appended to a route, for adapters
// that support executing custom calldata at the destination.
type ContractCall struct {
	To             common.Address
	Data           hexutil.Bytes
	Value          *big.Int
	GasLimit       uint64
	TokenAddress   common.Address
	TokenAmountWei *big.Int
}

// SwapParams is an immutable description of a requested swap. Build it once,
// validate it, and pass it by value; adapters never mutate the caller's copy.
type SwapParams struct {
	Input          asset.Token
	Output         asset.Token
	AmountWei      *big.Int
	Payer          common.Address
	Receiver       common.Address // defaults to Payer
	MaxSlippageBps uint16         // defaults to DefaultSlippageBps
	Referrer       string
	Integrator     string
	APIKey         string
	DenyExchanges  []string
	DenyBridges    []string
	ContractCalls  []ContractCall
	AggregatorIDs  []string // defaults to the engine's default set
}

// Validate checks the params before any network call is made. All failures
// are validation errors, never vendor errors.
func (p SwapParams) Validate() error {
	if p.Input.IsZero() || p.Output.IsZero() {
		return apperror.Validation(apperror.CodeRequiredField, "input and output tokens are required")
	}
	if p.Input.ChainID() == 0 || p.Output.ChainID() == 0 {
		return apperror.Validation(apperror.CodeRequiredField, "chain ids must be positive")
	}
	if p.AmountWei == nil || p.AmountWei.Sign() <= 0 {
		return apperror.Validation(apperror.CodeZeroInputAmount, "input amount must be greater than zero")
	}
	if p.Payer == (common.Address{}) {
		return apperror.Validation(apperror.CodeMissingPayer, "payer address is required")
	}
	if p.MaxSlippageBps > MaxSlippageBpsBound {
		return apperror.Validation(apperror.CodeInvalidSlippage, "slippage must be in (0, 10000] bps")
	}
	return nil
}

// WithDefaults returns a copy with engine defaults applied to fields the
// caller left unset. Caller-supplied values are never overwritten.
func (p SwapParams) WithDefaults() SwapParams {
	if p.Receiver == (common.Address{}) {
		p.Receiver = p.Payer
	}
	if p.MaxSlippageBps == 0 {
		p.MaxSlippageBps = DefaultSlippageBps
	}
	return p
}

// InputAmount returns the requested amount as a typed asset quantity.
func (p SwapParams) InputAmount() (asset.Amount, error) {
	return asset.NewAmount(p.Input, p.AmountWei)
}

// IsCrossChain reports whether input and output live on different chains.
func (p SwapParams) IsCrossChain() bool {
	return p.Input.ChainID() != p.Output.ChainID()
}

// HasContractCalls reports whether the caller attached custom calls; such
// requests are restricted to adapters that advertise contract-call support.
func (p SwapParams) HasContractCalls() bool {
	return len(p.ContractCalls) > 0
}
