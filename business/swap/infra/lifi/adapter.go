package lifi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	pricingApp "github.com/metaswap/swapr/business/pricing/app"
	"github.com/metaswap/swapr/business/swap/app"
	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/business/swap/infra"
	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
	"github.com/metaswap/swapr/internal/circuitbreaker"
	"github.com/metaswap/swapr/internal/config"
	"github.com/metaswap/swapr/internal/httpclient"
	"github.com/metaswap/swapr/internal/logger"
	"github.com/metaswap/swapr/internal/ratelimit"
)

// ID is the adapter id used for dispatch and tagging.
const ID = "lifi"

const (
	defaultBaseURL = "https://li.quest/v1"
	defaultTimeout = 15 * time.Second
	defaultRPM     = 60
)

// diamond is the LI.FI Diamond router, deployed at the same address on every
// supported chain.
var diamond = common.HexToAddress("0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE")

func routers() map[uint64]common.Address {
	return map[uint64]common.Address{
		asset.ChainIDEthereum: diamond,
		asset.ChainIDOptimism: diamond,
		asset.ChainIDBSC:      diamond,
		asset.ChainIDPolygon:  diamond,
		asset.ChainIDBase:     diamond,
		asset.ChainIDArbitrum: diamond,
	}
}

// Adapter implements the Aggregator port against LI.FI.
type Adapter struct {
	infra.Base
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*quoteResponse]
	prices  pricingApp.Source
	log     logger.LoggerInterface
}

var _ app.Aggregator = (*Adapter)(nil)

// New creates a LI.FI adapter from its vendor config.
func New(cfg config.AggregatorConfig, deps infra.Deps) (*Adapter, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RateLimitRPM
	if rpm <= 0 {
		rpm = defaultRPM
	}

	opts := []httpclient.ClientOption{
		httpclient.WithVendor(ID),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithTimeout(timeout),
		httpclient.WithRetry(2),
	}
	if cfg.APIKey != "" {
		opts = append(opts, httpclient.WithHeader("x-lifi-api-key", cfg.APIKey))
	}
	client, err := httpclient.New(opts...)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		Base: infra.NewBase(infra.BaseConfig{
			ID:         ID,
			BaseURL:    baseURL,
			APIKey:     cfg.APIKey,
			Referrer:   cfg.Referrer,
			Integrator: cfg.Integrator,
			FeeBps:     cfg.FeeBps,
			Routers:    routers(),
		}),
		client:  client,
		limiter: ratelimit.PerMinute(rpm),
		breaker: circuitbreaker.New[*quoteResponse](circuitbreaker.DefaultConfig(ID)),
		prices:  deps.Prices,
		log:     deps.Logger,
	}, nil
}

// SupportsContractCalls reports LI.FI's contract-call capability.
func (a *Adapter) SupportsContractCalls() bool { return true }

// GetQuote validates the params and performs one vendor round-trip.
func (a *Adapter) GetQuote(ctx context.Context, params domain.SwapParams) (*domain.VendorQuote, error) {
	params = a.OverloadParams(params)
	if err := a.CheckParams(params); err != nil {
		return nil, err
	}

	quote, err := a.fetchQuote(ctx, params)
	if err != nil {
		return nil, err
	}

	steps, aggregate, err := quote.normalize(params.MaxSlippageBps, a.nativeUSD(ctx, params.Input.ChainID()))
	if err != nil {
		return nil, err
	}
	return &domain.VendorQuote{
		AggregatorID: ID,
		RouteID:      quote.stepPayload.ID,
		Steps:        steps,
		Estimate:     aggregate,
	}, nil
}

// GetTransactionRequest composes the quote call into one complete record.
func (a *Adapter) GetTransactionRequest(ctx context.Context, params domain.SwapParams) (*domain.TransactionRequestWithEstimate, error) {
	params = a.OverloadParams(params)
	if err := a.CheckParams(params); err != nil {
		return nil, err
	}

	quote, err := a.fetchQuote(ctx, params)
	if err != nil {
		return nil, err
	}
	if quote.TransactionRequest == nil {
		return nil, apperror.Quote(apperror.CodeIncompleteTx, ID, 0, "quote carried no transaction request", nil)
	}

	steps, aggregate, err := quote.normalize(params.MaxSlippageBps, a.nativeUSD(ctx, params.Input.ChainID()))
	if err != nil {
		return nil, err
	}

	value, ok := parseWei(quote.TransactionRequest.Value)
	if !ok {
		return nil, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, quote.TransactionRequest.Value, nil)
	}
	data, err := hexutil.Decode(quote.TransactionRequest.Data)
	if err != nil {
		return nil, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, quote.TransactionRequest.Data, err)
	}

	approval := common.HexToAddress(quote.stepPayload.Estimate.ApprovalAddress)
	if approval == (common.Address{}) {
		approval, err = a.ApprovalAddress(params.Input.ChainID())
		if err != nil {
			return nil, err
		}
	}

	record := &domain.TransactionRequestWithEstimate{
		TransactionRequest: domain.TransactionRequest{
			From:            common.HexToAddress(quote.TransactionRequest.From),
			To:              common.HexToAddress(quote.TransactionRequest.To),
			Data:            data,
			Value:           value,
			ChainID:         quote.TransactionRequest.ChainID,
			ApprovalAddress: approval,
		},
		Params:       params,
		Steps:        steps,
		Estimate:     aggregate,
		AggregatorID: ID,
	}
	if err := record.EnsureComplete(); err != nil {
		return nil, err
	}
	return record, nil
}

// GetStatus looks up a cross-chain transfer on the status endpoint.
func (a *Adapter) GetStatus(ctx context.Context, ref domain.StatusRef) (*domain.StatusResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var status statusResponse
	req := a.client.NewRequest().
		SetQueryParam("txHash", ref.TxHash).
		SetResult(&status)
	if ref.FromChainID != 0 {
		req.SetQueryParam("fromChain", a.ChainAlias(ref.FromChainID))
	}
	if ref.ToChainID != 0 {
		req.SetQueryParam("toChain", a.ChainAlias(ref.ToChainID))
	}
	if ref.Bridge != "" {
		req.SetQueryParam("bridge", ref.Bridge)
	}

	resp, err := req.Get(ctx, "/status")
	if err != nil {
		return nil, apperror.Quote(apperror.CodeStatusFailed, ID, 0, "", err)
	}
	if resp.IsError() {
		return nil, apperror.Quote(apperror.CodeStatusFailed, ID, resp.StatusCode, truncate(resp.String()), nil)
	}

	normalized := domain.StatusResponse{
		AggregatorID:      ID,
		SourceTxHash:      status.Sending.TxHash,
		DestinationTxHash: status.Receiving.TxHash,
		Message:           status.Substatus,
	}
	switch status.Status {
	case "DONE":
		normalized.Status = domain.StatusDone
	case "FAILED", "INVALID":
		normalized.Status = domain.StatusFailed
	case "NOT_FOUND":
		normalized.Status = domain.StatusNotFound
	default:
		normalized.Status = domain.StatusPending
	}
	return &normalized, nil
}

// fetchQuote performs the rate-limited, breaker-guarded /quote round-trip.
func (a *Adapter) fetchQuote(ctx context.Context, params domain.SwapParams) (*quoteResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return a.breaker.Execute(func() (*quoteResponse, error) {
		var quote quoteResponse
		req := a.client.NewRequest().
			SetQueryParams(map[string]string{
				"fromChain":   a.ChainAlias(params.Input.ChainID()),
				"toChain":     a.ChainAlias(params.Output.ChainID()),
				"fromToken":   params.Input.Address().Hex(),
				"toToken":     params.Output.Address().Hex(),
				"fromAmount":  params.AmountWei.String(),
				"fromAddress": params.Payer.Hex(),
				"toAddress":   params.Receiver.Hex(),
				"slippage":    slippageFraction(params.MaxSlippageBps),
			}).
			SetResult(&quote)
		if params.Integrator != "" {
			req.SetQueryParam("integrator", params.Integrator)
		}
		if params.Referrer != "" {
			req.SetQueryParam("referrer", params.Referrer)
		}
		if len(params.DenyExchanges) > 0 {
			req.SetQueryParam("denyExchanges", strings.Join(params.DenyExchanges, ","))
		}
		if len(params.DenyBridges) > 0 {
			req.SetQueryParam("denyBridges", strings.Join(params.DenyBridges, ","))
		}

		resp, err := req.Get(ctx, "/quote")
		if err != nil {
			return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, 0, "", err)
		}
		if resp.IsError() {
			return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, resp.StatusCode, truncate(resp.String()), nil)
		}
		if resp.Result() == nil {
			return nil, apperror.Quote(apperror.CodeMalformedQuote, ID, resp.StatusCode, truncate(resp.String()), nil)
		}
		return &quote, nil
	})
}

// nativeUSD resolves the chain's native coin price; a missing price keeps
// the quote usable, it only blanks the USD cost columns.
func (a *Adapter) nativeUSD(ctx context.Context, chainID uint64) decimal.Decimal {
	usd, err := a.prices.NativeUSD(ctx, chainID)
	if err != nil {
		a.log.Warn(ctx, "native price unavailable, usd costs omitted",
			"aggregator", ID, "chainId", chainID, "error", err.Error())
		return decimal.Zero
	}
	return usd
}

// slippageFraction formats bps as the fractional representation the API
// expects (500 bps -> "0.05").
func slippageFraction(bps uint16) string {
	return strconv.FormatFloat(float64(bps)/10000, 'f', -1, 64)
}

func truncate(s string) string {
	const max = 512
	if len(s) > max {
		return fmt.Sprintf("%s... (%d bytes)", s[:max], len(s))
	}
	return s
}
