// Package socket implements the swap Aggregator port against the Socket
// (Bungee) API.
package socket

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
)

// nativeSentinel is the address Socket uses for chain native coins.
var nativeSentinel = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

type assetPayload struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

type gasFees struct {
	GasAmount string          `json:"gasAmount"` // wei
	GasLimit  uint64          `json:"gasLimit"`
	FeesInUSD decimal.Decimal `json:"feesInUsd"`
}

type protocolFees struct {
	Amount    string          `json:"amount"` // wei
	FeesInUSD decimal.Decimal `json:"feesInUsd"`
}

type protocolPayload struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Icon        string `json:"icon"`
}

type stepPayload struct {
	Type         string          `json:"type"` // "swap", "bridge", "middleware"
	Protocol     protocolPayload `json:"protocol"`
	FromChainID  uint64          `json:"fromChainId"`
	ToChainID    uint64          `json:"toChainId"`
	FromAsset    assetPayload    `json:"fromAsset"`
	ToAsset      assetPayload    `json:"toAsset"`
	FromAmount   string          `json:"fromAmount"`
	ToAmount     string          `json:"toAmount"`
	GasFees      gasFees         `json:"gasFees"`
	ProtocolFees protocolFees    `json:"protocolFees"`
}

type userTx struct {
	UserTxType string        `json:"userTxType"`
	ChainID    uint64        `json:"chainId"`
	Steps      []stepPayload `json:"steps"`
}

type routePayload struct {
	RouteID           string          `json:"routeId"`
	FromAmount        string          `json:"fromAmount"`
	ToAmount          string          `json:"toAmount"`
	TotalGasFeesInUSD decimal.Decimal `json:"totalGasFeesInUsd"`
	UserTxs           []userTx        `json:"userTxs"`

	// raw is kept verbatim for the build-tx request body.
	raw json.RawMessage
}

func (r *routePayload) UnmarshalJSON(data []byte) error {
	type alias routePayload
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = routePayload(a)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

type quoteResult struct {
	Routes []routePayload `json:"routes"`
}

type quoteResponse struct {
	Success bool        `json:"success"`
	Result  quoteResult `json:"result"`
}

type approvalData struct {
	MinimumApprovalAmount string `json:"minimumApprovalAmount"`
	ApprovalTokenAddress  string `json:"approvalTokenAddress"`
	AllowanceTarget       string `json:"allowanceTarget"`
	Owner                 string `json:"owner"`
}

type buildTxResult struct {
	UserTxType   string        `json:"userTxType"`
	TxTarget     string        `json:"txTarget"`
	ChainID      uint64        `json:"chainId"`
	TxData       string        `json:"txData"`
	Value        string        `json:"value"` // hex
	ApprovalData *approvalData `json:"approvalData"`
}

type buildTxResponse struct {
	Success bool          `json:"success"`
	Result  buildTxResult `json:"result"`
}

type bridgeStatusResult struct {
	SourceTxStatus         string `json:"sourceTxStatus"` // PENDING | COMPLETED | FAILED
	DestinationTxStatus    string `json:"destinationTxStatus"`
	DestinationTransactionHash string `json:"destinationTransactionHash"`
}

type bridgeStatusResponse struct {
	Success bool               `json:"success"`
	Result  bridgeStatusResult `json:"result"`
}

func tokenFromPayload(p assetPayload) (asset.Token, error) {
	if p.ChainID == 0 || p.Symbol == "" {
		return asset.Token{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, "", nil)
	}
	addr := common.HexToAddress(p.Address)
	if addr == nativeSentinel || addr == (common.Address{}) {
		return asset.NewNative(p.ChainID, p.Symbol, p.Name, p.Decimals), nil
	}
	return asset.NewERC20(p.ChainID, addr, p.Symbol, p.Name, p.Decimals), nil
}

func parseWei(s string) (*big.Int, bool) {
	if s == "" {
		return new(big.Int), true
	}
	return new(big.Int).SetString(s, 10)
}

func stepType(p stepPayload) domain.StepType {
	switch p.Type {
	case "bridge":
		return domain.StepBridge
	case "middleware", "swap":
		if p.FromChainID != 0 && p.ToChainID != 0 && p.FromChainID != p.ToChainID {
			return domain.StepCrossChainSwap
		}
		return domain.StepSwap
	default:
		return domain.StepTransfer
	}
}

func protocolFor(p stepPayload) domain.Protocol {
	protoType := domain.ProtocolDEX
	if stepType(p) != domain.StepSwap {
		protoType = domain.ProtocolBridge
	}
	name := p.Protocol.DisplayName
	if name == "" {
		name = p.Protocol.Name
	}
	return domain.Protocol{
		Name:    name,
		ID:      p.Protocol.Name,
		LogoURI: p.Protocol.Icon,
		Type:    protoType,
	}
}

func normalizeStep(p stepPayload, slippageBps uint16) (domain.SwapStep, error) {
	inToken, err := tokenFromPayload(p.FromAsset)
	if err != nil {
		return domain.SwapStep{}, err
	}
	outToken, err := tokenFromPayload(p.ToAsset)
	if err != nil {
		return domain.SwapStep{}, err
	}

	inWei, ok := parseWei(p.FromAmount)
	if !ok {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.FromAmount, nil)
	}
	outWei, ok := parseWei(p.ToAmount)
	if !ok {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.ToAmount, nil)
	}

	input, err := asset.NewAmount(inToken, inWei)
	if err != nil {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.FromAmount, err)
	}
	output, err := asset.NewAmount(outToken, outWei)
	if err != nil {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.ToAmount, err)
	}

	gasWei, ok := parseWei(p.GasFees.GasAmount)
	if !ok {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.GasFees.GasAmount, nil)
	}
	feeWei, ok := parseWei(p.ProtocolFees.Amount)
	if !ok {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.ProtocolFees.Amount, nil)
	}

	est, err := domain.NewEstimate(input, output, slippageBps,
		domain.Cost{Wei: gasWei, USD: p.GasFees.FeesInUSD},
		domain.Cost{Wei: feeWei, USD: p.ProtocolFees.FeesInUSD})
	if err != nil {
		return domain.SwapStep{}, err
	}

	return domain.SwapStep{
		Type:     stepType(p),
		Input:    input,
		Output:   output,
		Protocol: protocolFor(p),
		Estimate: est,
	}, nil
}

// normalize flattens the route's user transactions into canonical steps and
// the aggregate estimate.
func (r *routePayload) normalize(slippageBps uint16) ([]domain.SwapStep, domain.Estimate, error) {
	var steps []domain.SwapStep
	for _, tx := range r.UserTxs {
		for _, p := range tx.Steps {
			step, err := normalizeStep(p, slippageBps)
			if err != nil {
				return nil, domain.Estimate{}, err
			}
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		return nil, domain.Estimate{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, "route has no steps", nil)
	}

	aggregate, err := domain.AggregateEstimate(steps)
	if err != nil {
		return nil, domain.Estimate{}, err
	}
	return steps, aggregate, nil
}
