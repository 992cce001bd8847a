package socket

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

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
const ID = "socket"

const (
	defaultBaseURL = "https://api.socket.tech/v2"
	defaultTimeout = 15 * time.Second
	defaultRPM     = 60
)

// routers returns the Socket gateway contract per chain.
func routers() map[uint64]common.Address {
	registry := common.HexToAddress("0x3a23F943181408EAC424116Af7b7790c94Cb97a5")
	return map[uint64]common.Address{
		asset.ChainIDEthereum: registry,
		asset.ChainIDOptimism: registry,
		asset.ChainIDBSC:      registry,
		asset.ChainIDPolygon:  registry,
		asset.ChainIDBase:     registry,
		asset.ChainIDArbitrum: registry,
	}
}

// Adapter implements the Aggregator port against Socket. A transaction is
// produced in two vendor calls: quote, then build-tx on the best route.
type Adapter struct {
	infra.Base
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	log     logger.LoggerInterface
}

var _ app.Aggregator = (*Adapter)(nil)

// New creates a Socket adapter from its vendor config.
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
		opts = append(opts, httpclient.WithHeader("API-KEY", cfg.APIKey))
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
		breaker: circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig(ID)),
		log:     deps.Logger,
	}, nil
}

// SupportsContractCalls reports that Socket routes carry no custom calldata.
func (a *Adapter) SupportsContractCalls() bool { return false }

// GetQuote fetches the route list and normalizes the best route.
func (a *Adapter) GetQuote(ctx context.Context, params domain.SwapParams) (*domain.VendorQuote, error) {
	params = a.OverloadParams(params)
	if err := a.CheckParams(params); err != nil {
		return nil, err
	}

	route, err := a.fetchBestRoute(ctx, params)
	if err != nil {
		return nil, err
	}
	steps, aggregate, err := route.normalize(params.MaxSlippageBps)
	if err != nil {
		return nil, err
	}
	return &domain.VendorQuote{
		AggregatorID: ID,
		RouteID:      route.RouteID,
		Steps:        steps,
		Estimate:     aggregate,
	}, nil
}

// GetTransactionRequest quotes, then builds calldata for the best route.
func (a *Adapter) GetTransactionRequest(ctx context.Context, params domain.SwapParams) (*domain.TransactionRequestWithEstimate, error) {
	params = a.OverloadParams(params)
	if err := a.CheckParams(params); err != nil {
		return nil, err
	}

	route, err := a.fetchBestRoute(ctx, params)
	if err != nil {
		return nil, err
	}
	steps, aggregate, err := route.normalize(params.MaxSlippageBps)
	if err != nil {
		return nil, err
	}

	built, err := a.buildTx(ctx, route)
	if err != nil {
		return nil, err
	}

	value, ok := parseTxValue(built.Value)
	if !ok {
		return nil, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, built.Value, nil)
	}
	data, err := hexutil.Decode(built.TxData)
	if err != nil {
		return nil, apperror.Quote(apperror.CodeMalformedQuote, ID, 0, built.TxData, err)
	}

	approval := common.Address{}
	if built.ApprovalData != nil {
		approval = common.HexToAddress(built.ApprovalData.AllowanceTarget)
	}
	if approval == (common.Address{}) {
		approval, err = a.ApprovalAddress(params.Input.ChainID())
		if err != nil {
			return nil, err
		}
	}

	record := &domain.TransactionRequestWithEstimate{
		TransactionRequest: domain.TransactionRequest{
			From:            params.Payer,
			To:              common.HexToAddress(built.TxTarget),
			Data:            data,
			Value:           value,
			ChainID:         built.ChainID,
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

// GetStatus checks the bridge-status endpoint for a cross-chain transfer.
func (a *Adapter) GetStatus(ctx context.Context, ref domain.StatusRef) (*domain.StatusResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var status bridgeStatusResponse
	resp, err := a.client.NewRequest().
		SetQueryParams(map[string]string{
			"transactionHash": ref.TxHash,
			"fromChainId":     strconv.FormatUint(ref.FromChainID, 10),
			"toChainId":       strconv.FormatUint(ref.ToChainID, 10),
		}).
		SetResult(&status).
		Get(ctx, "/bridge-status")
	if err != nil {
		return nil, apperror.Quote(apperror.CodeStatusFailed, ID, 0, "", err)
	}
	if resp.IsError() || !status.Success {
		return nil, apperror.Quote(apperror.CodeStatusFailed, ID, resp.StatusCode, truncate(resp.String()), nil)
	}

	normalized := domain.StatusResponse{
		AggregatorID:      ID,
		SourceTxHash:      ref.TxHash,
		DestinationTxHash: status.Result.DestinationTransactionHash,
	}
	switch {
	case status.Result.SourceTxStatus == "FAILED" || status.Result.DestinationTxStatus == "FAILED":
		normalized.Status = domain.StatusFailed
	case status.Result.SourceTxStatus == "COMPLETED" && status.Result.DestinationTxStatus == "COMPLETED":
		normalized.Status = domain.StatusDone
	default:
		normalized.Status = domain.StatusPending
	}
	return &normalized, nil
}

// fetchBestRoute performs the /quote round-trip and picks the first route;
// the API sorts by output when asked to.
func (a *Adapter) fetchBestRoute(ctx context.Context, params domain.SwapParams) (*routePayload, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var quote quoteResponse
	resp, err := a.breaker.Execute(func() (*httpclient.Response, error) {
		return a.client.NewRequest().
			SetQueryParams(map[string]string{
				"fromChainId":          a.ChainAlias(params.Input.ChainID()),
				"toChainId":            a.ChainAlias(params.Output.ChainID()),
				"fromTokenAddress":     vendorAddress(params.Input),
				"toTokenAddress":       vendorAddress(params.Output),
				"fromAmount":           params.AmountWei.String(),
				"userAddress":          params.Payer.Hex(),
				"recipient":            params.Receiver.Hex(),
				"defaultSwapSlippage":  slippagePercent(params.MaxSlippageBps),
				"uniqueRoutesPerBridge": "true",
				"sort":                 "output",
				"singleTxOnly":         "true",
			}).
			SetResult(&quote).
			Get(ctx, "/quote")
	})
	if err != nil {
		return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, 0, "", err)
	}
	if resp.IsError() {
		return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, resp.StatusCode, truncate(resp.String()), nil)
	}
	if !quote.Success || len(quote.Result.Routes) == 0 {
		return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, resp.StatusCode, "no routes returned", nil)
	}
	return &quote.Result.Routes[0], nil
}

// buildTx exchanges a quoted route for signable calldata.
func (a *Adapter) buildTx(ctx context.Context, route *routePayload) (*buildTxResult, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var built buildTxResponse
	resp, err := a.breaker.Execute(func() (*httpclient.Response, error) {
		return a.client.NewRequest().
			SetBody(map[string]interface{}{"route": route.raw}).
			SetResult(&built).
			Post(ctx, "/build-tx")
	})
	if err != nil {
		return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, 0, "", err)
	}
	if resp.IsError() || !built.Success {
		return nil, apperror.Quote(apperror.CodeQuoteFailed, ID, resp.StatusCode, truncate(resp.String()), nil)
	}
	return &built.Result, nil
}

// vendorAddress renders a token the way Socket expects: the sentinel for
// natives, the ERC-20 address otherwise.
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

// parseTxValue accepts the hex value build-tx returns, or a decimal string.
func parseTxValue(s string) (*big.Int, bool) {
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
	return parseWei(s)
}

func truncate(s string) string {
	const max = 512
	if len(s) > max {
		return fmt.Sprintf("%s... (%d bytes)", s[:max], len(s))
	}
	return s
}
