package squid

import (
	"context"
	"fmt"
	"strconv"
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
const ID = "squid"

const (
	defaultBaseURL = "https://api.squidrouter.com/v1"
	defaultTimeout = 15 * time.Second
	defaultRPM     = 60
)

// router is the Squid router contract, deployed at the same address on every
// supported chain.
var router = common.HexToAddress("0xce16F69375520ab01377ce7B88f5BA8C48F8D666")

func routers() map[uint64]common.Address {
	return map[uint64]common.Address{
		asset.ChainIDEthereum: router,
		asset.ChainIDOptimism: router,
		asset.ChainIDBSC:      router,
		asset.ChainIDPolygon:  router,
		asset.ChainIDBase:     router,
		asset.ChainIDArbitrum: router,
	}
}

// Adapter implements the Aggregator port against Squid. One /route call
// yields both the estimate and the signable transaction.
type Adapter struct {
	infra.Base
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*routeResponse]
	prices  pricingApp.Source
	log     logger.LoggerInterface
}

var _ app.Aggregator = (*Adapter)(nil)

// New creates a Squid adapter from its vendor config.
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
	if cfg.Integrator != "" {
		opts = append(opts, httpclient.WithHeader("x-integrator-id", cfg.Integrator))
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
		breaker: circuitbreaker.New[*routeResponse](circuitbreaker.DefaultConfig(ID)),
		prices:  deps.Prices,
		log:     deps.Logger,
	}, nil
}

// SupportsContractCalls reports Squid's post-hook capability.
func (a *Adapter) SupportsContractCalls() bool { return true }

// GetQuote fetches a route without requesting calldata.
func (a *Adapter) GetQuote(ctx context.Context, params domain.SwapParams) (*domain.VendorQuote, error) {
	params = a.OverloadParams(params)
	if err := a.CheckParams(params); err != nil {
		return nil, err
	}

	route, err := a.fetchRoute(ctx, params, true)
	if err != nil {
		return nil, err
	}
	steps, aggregate, err := route.normalize(params.MaxSlippageBps, a.nativeUSD(ctx, params.Input.ChainID()))
	if err != nil {
		return nil, err
	}
	return &domain.VendorQuote{
		AggregatorID: ID,
		Steps:        steps,
		Estimate:     aggregate,
	}, nil
}

// GetTransactionRequest fetches a route with its transaction payload.
func (a *Adapter) GetTransactionRequest(ctx context.Context, params domain.SwapParams) (*domain.TransactionRequestWithEstimate, error) {
	params = a.OverloadParams(params)
	if err := a.CheckParams(params); err != nil {
		return nil, err
	}

	route, err := a.fetchRoute(ctx, params, false)
	if err != nil {
		return nil, err
	}
	if route.TransactionRequest == nil {
		return nil, apperror.Quote(apperror.CodeIncompleteTx, ID, 0, "route carried no transaction request", nil)
	}

	steps, aggregate, err := route.normalize(params.MaxSlippageBps, a.nativeUSD(ctx, params.Input.ChainID()))
	if err != nil {
		return nil, err
	}

	value, ok := parseWei(route.TransactionRequest.Value)
	if !ok {
		return nil, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, route.TransactionRequest.Value, nil)
	}
	data, err := hexutil.Decode(route.TransactionRequest.Data)
	if err != nil {
		return nil, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, route.TransactionRequest.Data, err)
	}

	// The router is the spender; targetAddress equals it on current
	// deployments but the config table is authoritative.
	approval, err := a.ApprovalAddress(params.Input.ChainID())
	if err != nil {
		return nil, err
	}

	record := &domain.TransactionRequestWithEstimate{
		TransactionRequest: domain.TransactionRequest{
			From:            params.Payer,
			To:              common.HexToAddress(route.TransactionRequest.TargetAddress),
			Data:            data,
			Value:           value,
			ChainID:         params.Input.ChainID(),
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

// GetStatus reports that Squid transfers are not tracked here.
func (a *Adapter) GetStatus(ctx context.Context, ref domain.StatusRef) (*domain.StatusResponse, error) {
	return nil, apperror.New(apperror.CodeStatusUnsupported, apperror.WithVendor(ID))
}

func (a *Adapter) fetchRoute(ctx context.Context, params domain.SwapParams, quoteOnly bool) (*routePayload, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := a.breaker.Execute(func() (*routeResponse, error) {
		var route routeResponse
		req := a.client.NewRequest().
			SetQueryParams(map[string]string{
				"fromChain":   a.ChainAlias(params.Input.ChainID()),
				"toChain":     a.ChainAlias(params.Output.ChainID()),
				"fromToken":   vendorAddress(params.Input),
				"toToken":     vendorAddress(params.Output),
				"fromAmount":  params.AmountWei.String(),
				"fromAddress": params.Payer.Hex(),
				"toAddress":   params.Receiver.Hex(),
				"slippage":    slippagePercent(params.MaxSlippageBps),
				"quoteOnly":   strconv.FormatBool(quoteOnly),
			}).
			SetResult(&route)

		httpResp, err := req.Get(ctx, "/route")
		if err != nil {
			return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, 0, "", err)
		}
		if httpResp.IsError() {
			return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, httpResp.StatusCode, truncate(httpResp.String()), nil)
		}
		if httpResp.Result() == nil {
			return nil, apperror.Quote(apperror.CodeMalformedQuote, ID, httpResp.StatusCode, truncate(httpResp.String()), nil)
		}
		return &route, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp.Route, nil
}

func (a *Adapter) nativeUSD(ctx context.Context, chainID uint64) decimal.Decimal {
	usd, err := a.prices.NativeUSD(ctx, chainID)
	if err != nil {
		a.log.Warn(ctx, "native price unavailable, usd costs omitted",
			"aggregator", ID, "chainId", chainID, "error", err.Error())
		return decimal.Zero
	}
	return usd
}

func vendorAddress(t asset.Token) string {
	if t.IsNative() {
		return nativeSentinel.Hex()
	}
	return t.Address().Hex()
}

// slippagePercent formats bps as a percentage (500 bps -> "5").
func slippagePercent(bps uint16) string {
	return strconv.FormatFloat(float64(bps)/100, 'f', -1, 64)
}

func truncate(s string) string {
	const max = 512
	if len(s) > max {
		return fmt.Sprintf("%s... (%d bytes)", s[:max], len(s))
	}
	return s
}
