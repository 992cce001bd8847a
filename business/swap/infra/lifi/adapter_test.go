package lifi

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/business/swap/infra"
	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
	"github.com/metaswap/swapr/internal/config"
	"github.com/metaswap/swapr/internal/logger"
)

type stubPrices struct {
	usd decimal.Decimal
	err error
}

func (s stubPrices) NativeUSD(ctx context.Context, chainID uint64) (decimal.Decimal, error) {
	return s.usd, s.err
}

const quoteFixture = `{
  "id": "route-1",
  "type": "lifi",
  "tool": "1inch",
  "toolDetails": {"key": "1inch", "name": "1inch", "logoURI": "https://example.com/1inch.png"},
  "action": {
    "fromChainId": 56,
    "toChainId": 56,
    "fromToken": {"address": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", "chainId": 56, "symbol": "USDC", "name": "USD Coin", "decimals": 18},
    "toToken": {"address": "0x2170Ed0880ac9A755fd29B2688956BD959F933F8", "chainId": 56, "symbol": "WETH", "name": "Wrapped Ether", "decimals": 18},
    "fromAmount": "1000000000000000000000"
  },
  "estimate": {
    "fromAmount": "1000000000000000000000",
    "toAmount": "310000000000000000",
    "approvalAddress": "0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE",
    "gasCosts": [{"amount": "5000000000000000", "amountUSD": "3.10"}],
    "feeCosts": [{"amount": "1000000000000000", "amountUSD": ""}]
  },
  "transactionRequest": {
    "from": "0x00000000000000000000000000000000DeaDBeef",
    "to": "0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE",
    "data": "0xdeadbeef",
    "value": "0x0",
    "chainId": 56
  }
}`

func testParams() domain.SwapParams {
	return domain.SwapParams{
		Input:     asset.USDCBSC,
		Output:    asset.WETHBSC,
		AmountWei: new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18)),
		Payer:     common.HexToAddress("0x00000000000000000000000000000000DeaDBeef"),
	}
}

func newTestAdapter(t *testing.T, serverURL string) *Adapter {
	t.Helper()
	adapter, err := New(config.AggregatorConfig{
		Enabled: true,
		BaseURL: serverURL,
	}, infra.Deps{
		Prices: stubPrices{usd: decimal.NewFromInt(600)},
		Logger: logger.NewNop(),
	})
	if err != nil {
		t.Fatalf("adapter construction failed: %v", err)
	}
	return adapter
}

func TestGetTransactionRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fromAmount"); got != "1000000000000000000000" {
			t.Errorf("fromAmount = %q", got)
		}
		if got := r.URL.Query().Get("slippage"); got != "0.05" {
			t.Errorf("slippage = %q, want 0.05", got)
		}
		fmt.Fprint(w, quoteFixture)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	record, err := adapter.GetTransactionRequest(context.Background(), testParams())
	if err != nil {
		t.Fatalf("transaction request failed: %v", err)
	}

	if err := record.EnsureComplete(); err != nil {
		t.Errorf("record incomplete: %v", err)
	}
	if record.AggregatorID != ID {
		t.Errorf("aggregator tag = %q, want %q", record.AggregatorID, ID)
	}
	wantRate := decimal.RequireFromString("0.00031")
	if !record.Estimate.ExchangeRate.Equal(wantRate) {
		t.Errorf("rate = %s, want %s", record.Estimate.ExchangeRate, wantRate)
	}
	if record.ApprovalAddress != diamond {
		t.Errorf("approval = %s, want diamond", record.ApprovalAddress)
	}
	if len(record.Steps) != 1 || record.Steps[0].Type != domain.StepSwap {
		t.Errorf("unexpected steps: %+v", record.Steps)
	}
	// Gas USD straight from the vendor; fee USD priced via the feed
	// (0.001 native * 600).
	if !record.Estimate.GasCost.USD.Equal(decimal.RequireFromString("3.10")) {
		t.Errorf("gas usd = %s, want 3.10", record.Estimate.GasCost.USD)
	}
	if !record.Estimate.FeeCost.USD.Equal(decimal.RequireFromString("0.6")) {
		t.Errorf("fee usd = %s, want 0.6", record.Estimate.FeeCost.USD)
	}
}

func TestGetQuote_ZeroOutputRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture := `{
  "id": "route-2", "type": "lifi", "tool": "1inch",
  "toolDetails": {"key": "1inch", "name": "1inch"},
  "action": {
    "fromChainId": 56, "toChainId": 56,
    "fromToken": {"address": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", "chainId": 56, "symbol": "USDC", "decimals": 18},
    "toToken": {"address": "0x2170Ed0880ac9A755fd29B2688956BD959F933F8", "chainId": 56, "symbol": "WETH", "decimals": 18},
    "fromAmount": "1000000000000000000000"
  },
  "estimate": {"fromAmount": "1000000000000000000000", "toAmount": "0"}
}`
		fmt.Fprint(w, fixture)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	_, err := adapter.GetQuote(context.Background(), testParams())
	if !apperror.IsCode(err, apperror.CodeZeroAmountQuote) {
		t.Fatalf("expected ZERO_AMOUNT_QUOTE, got %v", err)
	}
}

func TestGetQuote_VendorErrorCarriesContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"rate limited"}`)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	_, err := adapter.GetQuote(context.Background(), testParams())
	if !apperror.IsCode(err, apperror.CodeQuoteFailed) {
		t.Fatalf("expected QUOTE_FAILED, got %v", err)
	}
	appErr := err.(*apperror.AppError)
	if appErr.Vendor != ID {
		t.Errorf("vendor = %q, want %q", appErr.Vendor, ID)
	}
	if appErr.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("httpStatus = %d, want 429", appErr.HTTPStatus)
	}
	if appErr.Raw == "" {
		t.Error("raw body not preserved")
	}
}

func TestCheckParams_UnsupportedChainBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	params := testParams()
	params.Input = asset.NewERC20(999999, common.HexToAddress("0x0000000000000000000000000000000000000001"), "FOO", "Foo", 18)

	_, err := adapter.GetQuote(context.Background(), params)
	if !apperror.IsCode(err, apperror.CodeChainNotSupported) {
		t.Fatalf("expected CHAIN_NOT_SUPPORTED, got %v", err)
	}
	if called {
		t.Error("vendor was called despite unsupported chain")
	}
}

func TestGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"DONE","substatus":"COMPLETED","sending":{"txHash":"0xaaa"},"receiving":{"txHash":"0xbbb"}}`)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	resp, err := adapter.GetStatus(context.Background(), domain.StatusRef{
		AggregatorID: ID, TxHash: "0xaaa", FromChainID: 56, ToChainID: 1,
	})
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if resp.Status != domain.StatusDone || resp.DestinationTxHash != "0xbbb" {
		t.Errorf("unexpected status: %+v", resp)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteFixture)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	first, err := adapter.GetQuote(context.Background(), testParams())
	if err != nil {
		t.Fatalf("first quote failed: %v", err)
	}
	second, err := adapter.GetQuote(context.Background(), testParams())
	if err != nil {
		t.Fatalf("second quote failed: %v", err)
	}
	if !first.Estimate.ExchangeRate.Equal(second.Estimate.ExchangeRate) ||
		!first.Estimate.Input.Equals(second.Estimate.Input) ||
		!first.Estimate.Output.Equals(second.Estimate.Output) ||
		!first.Estimate.GasCost.USD.Equal(second.Estimate.GasCost.USD) {
		t.Error("same vendor payload normalized differently across calls")
	}
}
