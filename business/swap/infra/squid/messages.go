// Package squid implements the swap Aggregator port against the Squid
// router API.
package squid

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/business/swap/infra"
	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
)

// nativeSentinel is the address Squid uses for chain native coins.
var nativeSentinel = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

type tokenPayload struct {
	Address  string `json:"address"`
	ChainID  uint64 `json:"chainId,string"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

type costPayload struct {
	Amount    string       `json:"amount"` // wei
	AmountUSD string       `json:"amountUSD"`
	Token     tokenPayload `json:"token"`
}

type actionPayload struct {
	Type       string       `json:"type"` // "swap" | "bridge"
	Provider   string       `json:"provider"`
	LogoURI    string       `json:"logoURI"`
	FromChain  uint64       `json:"fromChain,string"`
	ToChain    uint64       `json:"toChain,string"`
	FromToken  tokenPayload `json:"fromToken"`
	ToToken    tokenPayload `json:"toToken"`
	FromAmount string       `json:"fromAmount"`
	ToAmount   string       `json:"toAmount"`
}

type estimatePayload struct {
	FromAmount   string          `json:"fromAmount"`
	ToAmount     string          `json:"toAmount"`
	FromToken    tokenPayload    `json:"fromToken"`
	ToToken      tokenPayload    `json:"toToken"`
	ExchangeRate string          `json:"exchangeRate"`
	GasCosts     []costPayload   `json:"gasCosts"`
	FeeCosts     []costPayload   `json:"feeCosts"`
	Actions      []actionPayload `json:"actions"`
}

type txPayload struct {
	RouteType     string `json:"routeType"`
	TargetAddress string `json:"targetAddress"`
	Data          string `json:"data"`
	Value         string `json:"value"` // decimal wei
	GasLimit      string `json:"gasLimit"`
}

type routePayload struct {
	Estimate           estimatePayload `json:"estimate"`
	TransactionRequest *txPayload      `json:"transactionRequest"`
}

type routeResponse struct {
	Route routePayload `json:"route"`
}

func tokenFromPayload(p tokenPayload) (asset.Token, error) {
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

func amountFrom(p tokenPayload, wei string) (asset.Amount, error) {
	token, err := tokenFromPayload(p)
	if err != nil {
		return asset.Amount{}, err
	}
	raw, ok := parseWei(wei)
	if !ok {
		return asset.Amount{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, wei, nil)
	}
	amount, err := asset.NewAmount(token, raw)
	if err != nil {
		return asset.Amount{}, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, wei, err)
	}
	return amount, nil
}

func normalizeAction(a actionPayload, slippageBps uint16) (domain.SwapStep, error) {
	input, err := amountFrom(a.FromToken, a.FromAmount)
	if err != nil {
		return domain.SwapStep{}, err
	}
	output, err := amountFrom(a.ToToken, a.ToAmount)
	if err != nil {
		return domain.SwapStep{}, err
	}

	// Per-action cost breakdowns are not exposed; costs live on the
	// aggregate only.
	est, err := domain.NewEstimate(input, output, slippageBps, domain.ZeroCost(), domain.ZeroCost())
	if err != nil {
		return domain.SwapStep{}, err
	}

	sType := domain.StepSwap
	pType := domain.ProtocolDEX
	if a.Type == "bridge" || a.FromChain != a.ToChain {
		sType = domain.StepBridge
		pType = domain.ProtocolBridge
	}
	return domain.SwapStep{
		Type:   sType,
		Input:  input,
		Output: output,
		Protocol: domain.Protocol{
			Name:    a.Provider,
			ID:      a.Provider,
			LogoURI: a.LogoURI,
			Type:    pType,
		},
		Estimate: est,
	}, nil
}

// normalize converts the route into canonical steps and the aggregate
// estimate. Cost totals are attached to the aggregate; routes without an
// action breakdown become a single step.
func (r *routePayload) normalize(slippageBps uint16, nativeUSD decimal.Decimal) ([]domain.SwapStep, domain.Estimate, error) {
	input, err := amountFrom(r.Estimate.FromToken, r.Estimate.FromAmount)
	if err != nil {
		return nil, domain.Estimate{}, err
	}
	output, err := amountFrom(r.Estimate.ToToken, r.Estimate.ToAmount)
	if err != nil {
		return nil, domain.Estimate{}, err
	}

	gas, err := sumCosts(r.Estimate.GasCosts, nativeUSD)
	if err != nil {
		return nil, domain.Estimate{}, err
	}
	fee, err := sumCosts(r.Estimate.FeeCosts, nativeUSD)
	if err != nil {
		return nil, domain.Estimate{}, err
	}

	aggregate, err := domain.NewEstimate(input, output, slippageBps, gas, fee)
	if err != nil {
		return nil, domain.Estimate{}, err
	}

	var steps []domain.SwapStep
	for _, action := range r.Estimate.Actions {
		step, err := normalizeAction(action, slippageBps)
		if err != nil {
			return nil, domain.Estimate{}, err
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		sType := domain.StepSwap
		if input.Token().ChainID() != output.Token().ChainID() {
			sType = domain.StepCrossChainSwap
		}
		steps = []domain.SwapStep{{
			Type:     sType,
			Input:    input,
			Output:   output,
			Protocol: domain.Protocol{Name: "Squid", ID: ID, Type: domain.ProtocolAggregator},
			Estimate: aggregate,
		}}
	}
	return steps, aggregate, nil
}
