// Package infra holds the adapter registry and the behavior shared by every
// vendor adapter in the swap context.
package infra

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/internal/apperror"
)

// BaseConfig is the static per-vendor configuration a Base is built from:
// API root, credentials, and the chain tables. It is populated before any
// request is issued and read-only afterwards.
type BaseConfig struct {
	ID         string
	BaseURL    string
	APIKey     string
	Referrer   string
	Integrator string
	FeeBps     uint16

	// Routers maps chain id to the vendor's router contract, which is also
	// the ERC-20 allowance target unless the vendor says otherwise.
	Routers map[uint64]common.Address

	// ChainAliases maps chain id to the vendor-specific chain identifier.
	// Chains without an alias use the decimal chain id.
	ChainAliases map[uint64]string
}

// Base carries the shared adapter behavior; every vendor adapter embeds one.
type Base struct {
	cfg BaseConfig
}

// NewBase creates the shared adapter core.
func NewBase(cfg BaseConfig) Base {
	if cfg.ID == "" {
		panic("infra: adapter id is required")
	}
	return Base{cfg: cfg}
}

// ID returns the adapter id used for dispatch and tagging.
func (b Base) ID() string { return b.cfg.ID }

// BaseURL returns the vendor API root.
func (b Base) BaseURL() string { return b.cfg.BaseURL }

// APIKey returns the configured vendor credential, possibly empty.
func (b Base) APIKey() string { return b.cfg.APIKey }

// FeeBps returns the vendor fee override in basis points.
func (b Base) FeeBps() uint16 { return b.cfg.FeeBps }

// IsChainSupported reports whether the vendor has a router on the chain.
func (b Base) IsChainSupported(chainID uint64) bool {
	_, ok := b.cfg.Routers[chainID]
	return ok
}

// ApprovalAddress returns the ERC-20 allowance target for the chain.
func (b Base) ApprovalAddress(chainID uint64) (common.Address, error) {
	addr, ok := b.cfg.Routers[chainID]
	if !ok {
		return common.Address{}, apperror.New(apperror.CodeChainNotSupported,
			apperror.WithVendor(b.cfg.ID),
			apperror.WithContext("no router for chain "+strconv.FormatUint(chainID, 10)),
		)
	}
	return addr, nil
}

// ChainAlias returns the vendor's identifier for the chain, defaulting to
// the decimal chain id.
func (b Base) ChainAlias(chainID uint64) string {
	if alias, ok := b.cfg.ChainAliases[chainID]; ok {
		return alias
	}
	return strconv.FormatUint(chainID, 10)
}

// OverloadParams applies engine and adapter defaults to fields the caller
// left unset. Caller-supplied values always win.
func (b Base) OverloadParams(params domain.SwapParams) domain.SwapParams {
	params = params.WithDefaults()
	if params.Referrer == "" {
		params.Referrer = b.cfg.Referrer
	}
	if params.Integrator == "" {
		params.Integrator = b.cfg.Integrator
	}
	if params.APIKey == "" {
		params.APIKey = b.cfg.APIKey
	}
	return params
}

// CheckParams runs request validation plus this vendor's chain support
// check. It never touches the network.
func (b Base) CheckParams(params domain.SwapParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	for _, chainID := range []uint64{params.Input.ChainID(), params.Output.ChainID()} {
		if !b.IsChainSupported(chainID) {
			return apperror.New(apperror.CodeChainNotSupported,
				apperror.WithVendor(b.cfg.ID),
				apperror.WithContext("chain "+strconv.FormatUint(chainID, 10)+" not supported"),
			)
		}
	}
	return nil
}

var weiPerCoin = decimal.New(1, 18)

// USDFromWei converts a native-coin wei amount to USD at the given price.
// Used when a vendor reports a cost without its USD conversion.
func USDFromWei(wei *big.Int, nativeUSD decimal.Decimal) decimal.Decimal {
	if wei == nil || wei.Sign() == 0 || nativeUSD.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, 0).Div(weiPerCoin).Mul(nativeUSD)
}
