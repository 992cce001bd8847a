// Package lifi implements the swap Aggregator port against the LI.FI API.
package lifi

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/business/swap/infra"
	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
)

// nativeSentinel is the address LI.FI uses for chain native coins.
var nativeSentinel = common.HexToAddress("0x0000000000000000000000000000000000000000")

type tokenPayload struct {
	Address  string `json:"address"`
	ChainID  uint64 `json:"chainId"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

type toolDetails struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	LogoURI string `json:"logoURI"`
}

type costPayload struct {
	Amount    string       `json:"amount"` // wei
	AmountUSD string       `json:"amountUSD"`
	Token     tokenPayload `json:"token"`
}

type actionPayload struct {
	FromChainID uint64       `json:"fromChainId"`
	ToChainID   uint64       `json:"toChainId"`
	FromToken   tokenPayload `json:"fromToken"`
	ToToken     tokenPayload `json:"toToken"`
	FromAmount  string       `json:"fromAmount"`
}

type estimatePayload struct {
	FromAmount      string        `json:"fromAmount"`
	ToAmount        string        `json:"toAmount"`
	ApprovalAddress string        `json:"approvalAddress"`
	GasCosts        []costPayload `json:"gasCosts"`
	FeeCosts        []costPayload `json:"feeCosts"`
}

type stepPayload struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"` // "swap", "cross", "lifi"
	Tool        string          `json:"tool"`
	ToolDetails toolDetails     `json:"toolDetails"`
	Action      actionPayload   `json:"action"`
	Estimate    estimatePayload `json:"estimate"`
}

type txPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Data    string `json:"data"`
	Value   string `json:"value"` // hex
	ChainID uint64 `json:"chainId"`
}

// quoteResponse is the /quote payload: one top-level step with the nested
// route breakdown and, when requested, the signable transaction.
type quoteResponse struct {
	stepPayload
	IncludedSteps      []stepPayload `json:"includedSteps"`
	TransactionRequest *txPayload    `json:"transactionRequest"`
}

type statusTx struct {
	TxHash string `json:"txHash"`
}

type statusResponse struct {
	Status    string   `json:"status"` // NOT_FOUND | INVALID | PENDING | DONE | FAILED
	Substatus string   `json:"substatus"`
	Sending   statusTx `json:"sending"`
	Receiving statusTx `json:"receiving"`
}

func tokenFromPayload(p tokenPayload) (asset.Token, error) {
	if p.ChainID == 0 || p.Symbol == "" {
		return asset.Token{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, "", nil)
	}
	addr := common.HexToAddress(p.Address)
	if addr == nativeSentinel {
		return asset.NewNative(p.ChainID, p.Symbol, p.Name, p.Decimals), nil
	}
	return asset.NewERC20(p.ChainID, addr, p.Symbol, p.Name, p.Decimals), nil
}

// parseWei accepts decimal and 0x-prefixed amount strings.
func parseWei(s string) (*big.Int, bool) {
	if s == "" {
		return new(big.Int), true
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := hexutil.DecodeBig(s)
		if err != nil {
			return nil, false
		}
		return v, true
	}
	v, ok := new(big.Int).SetString(s, 10)
	return v, ok
}

// sumCosts folds a vendor cost list; entries missing their USD conversion
// are priced at nativeUSD.
func sumCosts(costs []costPayload, nativeUSD decimal.Decimal) (domain.Cost, error) {
	total := domain.ZeroCost()
	for _, c := range costs {
		wei, ok := parseWei(c.Amount)
		if !ok {
			return domain.Cost{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, c.Amount, nil)
		}
		usd := decimal.Zero
		if c.AmountUSD != "" {
			var err error
			usd, err = decimal.NewFromString(c.AmountUSD)
			if err != nil {
				return domain.Cost{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, c.AmountUSD, err)
			}
		} else {
			usd = infra.USDFromWei(wei, nativeUSD)
		}
		total = total.Add(domain.Cost{Wei: wei, USD: usd})
	}
	return total, nil
}

func stepType(p stepPayload) domain.StepType {
	switch p.Type {
	case "swap":
		return domain.StepSwap
	case "cross":
		return domain.StepBridge
	default:
		if p.Action.FromChainID != p.Action.ToChainID {
			return domain.StepCrossChainSwap
		}
		return domain.StepSwap
	}
}

func protocolFor(p stepPayload) domain.Protocol {
	protoType := domain.ProtocolDEX
	switch stepType(p) {
	case domain.StepBridge:
		protoType = domain.ProtocolBridge
	case domain.StepCrossChainSwap:
		protoType = domain.ProtocolAggregator
	}
	return domain.Protocol{
		Name:    p.ToolDetails.Name,
		ID:      p.ToolDetails.Key,
		LogoURI: p.ToolDetails.LogoURI,
		Type:    protoType,
	}
}

// normalizeStep converts one vendor step into the canonical shape.
func normalizeStep(p stepPayload, slippageBps uint16, nativeUSD decimal.Decimal) (domain.SwapStep, error) {
	inToken, err := tokenFromPayload(p.Action.FromToken)
	if err != nil {
		return domain.SwapStep{}, err
	}
	outToken, err := tokenFromPayload(p.Action.ToToken)
	if err != nil {
		return domain.SwapStep{}, err
	}

	inWei, ok := parseWei(p.Estimate.FromAmount)
	if !ok {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.Estimate.FromAmount, nil)
	}
	outWei, ok := parseWei(p.Estimate.ToAmount)
	if !ok {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.Estimate.ToAmount, nil)
	}

	input, err := asset.NewAmount(inToken, inWei)
	if err != nil {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.Estimate.FromAmount, err)
	}
	output, err := asset.NewAmount(outToken, outWei)
	if err != nil {
		return domain.SwapStep{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, p.Estimate.ToAmount, err)
	}

	gas, err := sumCosts(p.Estimate.GasCosts, nativeUSD)
	if err != nil {
		return domain.SwapStep{}, err
	}
	fee, err := sumCosts(p.Estimate.FeeCosts, nativeUSD)
	if err != nil {
		return domain.SwapStep{}, err
	}

	est, err := domain.NewEstimate(input, output, slippageBps, gas, fee)
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

// normalize turns the quote into canonical steps plus the aggregate
// estimate. Pure: same payload and price always produce the same records.
func (r *quoteResponse) normalize(slippageBps uint16, nativeUSD decimal.Decimal) ([]domain.SwapStep, domain.Estimate, error) {
	payloads := r.IncludedSteps
	if len(payloads) == 0 {
		payloads = []stepPayload{r.stepPayload}
	}

	steps := make([]domain.SwapStep, 0, len(payloads))
	for _, p := range payloads {
		step, err := normalizeStep(p, slippageBps, nativeUSD)
		if err != nil {
			return nil, domain.Estimate{}, err
		}
		steps = append(steps, step)
	}

	aggregate, err := domain.AggregateEstimate(steps)
	if err != nil {
		return nil, domain.Estimate{}, err
	}
	return steps, aggregate, nil
}
