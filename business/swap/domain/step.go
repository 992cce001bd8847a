package domain

import "github.com/metaswap/swapr/internal/asset"

// StepType classifies one atomic hop in a route.
type StepType string

const (
	StepSwap           StepType = "SWAP"
	StepBridge         StepType = "BRIDGE"
	StepCrossChainSwap StepType = "CROSS_CHAIN_SWAP"
	StepTransfer       StepType = "TRANSFER"
)

// ProtocolType classifies the venue a step executes on.
type ProtocolType string

const (
	ProtocolDEX        ProtocolType = "DEX"
	ProtocolBridge     ProtocolType = "BRIDGE"
	ProtocolAggregator ProtocolType = "AGGREGATOR"
)

// Protocol describes the venue behind a step.
type Protocol struct {
	Name    string
	ID      string
	LogoURI string
	Type    ProtocolType
}

// SwapStep is one hop in a route. Input and output amounts carry their chain
// through the token identity, so cross-chain hops need no extra fields.
type SwapStep struct {
	Type     StepType
	Input    asset.Amount
	Output   asset.Amount
	Protocol Protocol
	Estimate Estimate
}

// IsCrossChain reports whether this step crosses a chain boundary.
func (s SwapStep) IsCrossChain() bool {
	return s.Input.Token().ChainID() != s.Output.Token().ChainID()
}
