package binance

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/pricing/app"
	"github.com/metaswap/swapr/business/pricing/domain"
	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/circuitbreaker"
	"github.com/metaswap/swapr/internal/httpclient"
	"github.com/metaswap/swapr/internal/logger"
	"github.com/metaswap/swapr/internal/ratelimit"
	"github.com/metaswap/swapr/internal/wsconn"
)

const (
	// BaseHTTPURL is the Binance REST market-data root.
	BaseHTTPURL = "https://api.binance.com"
	// BaseWSURL is the Binance raw-stream WebSocket root.
	BaseWSURL = "wss://stream.binance.com:9443/ws"

	defaultTimeout = 5 * time.Second
	defaultRPM     = 1200
)

// Config holds Binance source settings. Empty URLs select the public
// endpoints.
type Config struct {
	HTTPURL      string
	WSURL        string
	Timeout      time.Duration
	RateLimitRPM int
}

// Source implements the pricing Source port (and its optional stream
// capability) against Binance.
type Source struct {
	cfg     Config
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[decimal.Decimal]
	log     logger.LoggerInterface
}

var (
	_ app.Source   = (*Source)(nil)
	_ app.Streamer = (*Source)(nil)
)

// NewSource creates a Binance-backed price source.
func NewSource(cfg Config, log logger.LoggerInterface) (*Source, error) {
	if cfg.HTTPURL == "" {
		cfg.HTTPURL = BaseHTTPURL
	}
	if cfg.WSURL == "" {
		cfg.WSURL = BaseWSURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimitRPM <= 0 {
		cfg.RateLimitRPM = defaultRPM
	}

	client, err := httpclient.New(
		httpclient.WithVendor("binance"),
		httpclient.WithBaseURL(cfg.HTTPURL),
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithRetry(2),
	)
	if err != nil {
		return nil, err
	}

	return &Source{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.PerMinute(cfg.RateLimitRPM),
		breaker: circuitbreaker.New[decimal.Decimal](circuitbreaker.DefaultConfig("binance")),
		log:     log,
	}, nil
}

// NativeUSD fetches the USD price of the chain's native coin from the spot
// ticker endpoint.
func (s *Source) NativeUSD(ctx context.Context, chainID uint64) (decimal.Decimal, error) {
	symbol, err := symbolForChain(chainID)
	if err != nil {
		return decimal.Zero, apperror.Wrap(err, apperror.CodePriceUnavailable, "unsupported chain")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}

	return s.breaker.Execute(func() (decimal.Decimal, error) {
		var ticker tickerPriceResponse
		resp, err := s.client.NewRequest().
			SetQueryParam("symbol", symbol).
			SetResult(&ticker).
			Get(ctx, "/api/v3/ticker/price")
		if err != nil {
			return decimal.Zero, apperror.Quote(apperror.CodePriceUnavailable, "binance", 0, "", err)
		}
		if resp.IsError() {
			return decimal.Zero, apperror.Quote(apperror.CodePriceUnavailable, "binance", resp.StatusCode, resp.String(), nil)
		}
		if ticker.Price == "" {
			return decimal.Zero, apperror.Quote(apperror.CodeMalformedQuote, "binance", resp.StatusCode, resp.String(), nil)
		}
		usd, err := decimal.NewFromString(ticker.Price)
		if err != nil {
			return decimal.Zero, apperror.Quote(apperror.CodeMalformedQuote, "binance", resp.StatusCode, ticker.Price, err)
		}
		return usd, nil
	})
}

// Stream subscribes to the miniTicker stream for every requested chain and
// pushes price updates until ctx ends. The connection reconnects and
// resubscribes on its own.
func (s *Source) Stream(ctx context.Context, chainIDs []uint64) (<-chan domain.Price, error) {
	chainBySymbol := make(map[string]uint64, len(chainIDs))
	params := make([]string, 0, len(chainIDs))
	for _, id := range chainIDs {
		symbol, err := symbolForChain(id)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodePriceUnavailable, "unsupported chain")
		}
		if _, seen := chainBySymbol[symbol]; seen {
			continue // multiple chains share a native coin
		}
		chainBySymbol[symbol] = id
		params = append(params, strings.ToLower(symbol)+"@miniTicker")
	}

	conn := wsconn.New(wsconn.DefaultConfig(s.cfg.WSURL))
	conn.OnConnect = func(ctx context.Context) error {
		sub, err := json.Marshal(wsRequest{Method: "SUBSCRIBE", Params: params, ID: time.Now().UnixMilli()})
		if err != nil {
			return err
		}
		return conn.Send(ctx, sub)
	}
	if err := conn.Connect(ctx); err != nil {
		return nil, apperror.Wrap(err, apperror.CodePriceUnavailable, "binance stream connect")
	}

	out := make(chan domain.Price, 16)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-conn.Messages():
				if !ok {
					return
				}
				var event miniTickerEvent
				if err := json.Unmarshal(msg, &event); err != nil || event.EventType != "24hrMiniTicker" {
					continue // subscription acks and unknown frames
				}
				chainID, known := chainBySymbol[event.Symbol]
				if !known {
					continue
				}
				usd, err := decimal.NewFromString(event.ClosePrice)
				if err != nil {
					s.log.Warn(ctx, "dropping malformed ticker", "symbol", event.Symbol, "price", event.ClosePrice)
					continue
				}
				price := domain.Price{
					ChainID:   chainID,
					Symbol:    event.Symbol,
					USD:       usd,
					Source:    "binance",
					Timestamp: time.UnixMilli(event.EventTime),
				}
				select {
				case out <- price:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
