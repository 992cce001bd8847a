package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDOptimism = 10
	ChainIDBSC      = 56
	ChainIDPolygon  = 137
	ChainIDBase     = 8453
	ChainIDArbitrum = 42161
)

// Well-known token addresses
var (
	AddrUSDCEthereum = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	AddrUSDTEthereum = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrWBTCEthereum = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")

	AddrUSDCBSC = common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d")
	AddrWETHBSC = common.HexToAddress("0x2170Ed0880ac9A755fd29B2688956BD959F933F8")
	AddrWBNB    = common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c")

	AddrUSDCPolygon  = common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359")
	AddrWETHPolygon  = common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	AddrUSDCArbitrum = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	AddrWETHArbitrum = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
	AddrUSDCOptimism = common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85")
	AddrUSDCBase     = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
)

// Well-known tokens (pre-built instances)
var (
	ETH  = NewNative(ChainIDEthereum, "ETH", "Ethereum", 18)
	BNB  = NewNative(ChainIDBSC, "BNB", "BNB", 18)
	POL  = NewNative(ChainIDPolygon, "POL", "Polygon Ecosystem Token", 18)
	ETHA = NewNative(ChainIDArbitrum, "ETH", "Ethereum (Arbitrum)", 18)
	ETHO = NewNative(ChainIDOptimism, "ETH", "Ethereum (Optimism)", 18)
	ETHB = NewNative(ChainIDBase, "ETH", "Ethereum (Base)", 18)

	USDC = NewERC20(ChainIDEthereum, AddrUSDCEthereum, "USDC", "USD Coin", 6)
	USDT = NewERC20(ChainIDEthereum, AddrUSDTEthereum, "USDT", "Tether USD", 6)
	WETH = NewERC20(ChainIDEthereum, AddrWETHEthereum, "WETH", "Wrapped Ether", 18)
	WBTC = NewERC20(ChainIDEthereum, AddrWBTCEthereum, "WBTC", "Wrapped Bitcoin", 8)

	USDCBSC = NewERC20(ChainIDBSC, AddrUSDCBSC, "USDC", "USD Coin (BSC)", 18)
	WETHBSC = NewERC20(ChainIDBSC, AddrWETHBSC, "WETH", "Wrapped Ether (BSC)", 18)
	WBNB    = NewERC20(ChainIDBSC, AddrWBNB, "WBNB", "Wrapped BNB", 18)

	USDCPolygon  = NewERC20(ChainIDPolygon, AddrUSDCPolygon, "USDC", "USD Coin (Polygon)", 6)
	WETHPolygon  = NewERC20(ChainIDPolygon, AddrWETHPolygon, "WETH", "Wrapped Ether (Polygon)", 18)
	USDCArbitrum = NewERC20(ChainIDArbitrum, AddrUSDCArbitrum, "USDC", "USD Coin (Arbitrum)", 6)
	WETHArbitrum = NewERC20(ChainIDArbitrum, AddrWETHArbitrum, "WETH", "Wrapped Ether (Arbitrum)", 18)
	USDCOptimism = NewERC20(ChainIDOptimism, AddrUSDCOptimism, "USDC", "USD Coin (Optimism)", 6)
	USDCBase     = NewERC20(ChainIDBase, AddrUSDCBase, "USDC", "USD Coin (Base)", 6)
)

// NativeCoin returns the native coin for a chain, if known.
func NativeCoin(chainID uint64) (Token, bool) {
	switch chainID {
	case ChainIDEthereum:
		return ETH, true
	case ChainIDBSC:
		return BNB, true
	case ChainIDPolygon:
		return POL, true
	case ChainIDArbitrum:
		return ETHA, true
	case ChainIDOptimism:
		return ETHO, true
	case ChainIDBase:
		return ETHB, true
	}
	return Token{}, false
}

// SupportedChainIDs returns every chain with a known native coin.
func SupportedChainIDs() []uint64 {
	return []uint64{
		ChainIDEthereum, ChainIDOptimism, ChainIDBSC,
		ChainIDPolygon, ChainIDBase, ChainIDArbitrum,
	}
}

// DefaultRegistry returns a registry pre-populated with well-known tokens.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range []Token{
		ETH, BNB, POL, ETHA, ETHO, ETHB,
		USDC, USDT, WETH, WBTC,
		USDCBSC, WETHBSC, WBNB,
		USDCPolygon, WETHPolygon,
		USDCArbitrum, WETHArbitrum,
		USDCOptimism, USDCBase,
	} {
		r.Register(t)
	}
	return r
}
