package squid

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

const routeFixture = `{
  "route": {
    "estimate": {
      "fromAmount": "1000000000000000000000",
      "toAmount": "305000000000000000",
      "fromToken": {"address": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", "chainId": "56", "symbol": "USDC", "name": "USD Coin", "decimals": 18},
      "toToken": {"address": "0x4200000000000000000000000000000000000006", "chainId": "8453", "symbol": "WETH", "name": "Wrapped Ether", "decimals": 18},
      "exchangeRate": "0.000305",
      "gasCosts": [{"amount": "3000000000000000", "amountUSD": "1.80"}],
      "feeCosts": [{"amount": "2000000000000000", "amountUSD": ""}],
      "actions": [
        {
          "type": "swap",
          "provider": "pancakeswap",
          "fromChain": "56", "toChain": "56",
          "fromToken": {"address": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", "chainId": "56", "symbol": "USDC", "decimals": 18},
          "toToken": {"address": "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", "chainId": "56", "symbol": "BNB", "decimals": 18},
          "fromAmount": "1000000000000000000000",
          "toAmount": "2000000000000000000"
        },
        {
          "type": "bridge",
          "provider": "axelar",
          "fromChain": "56", "toChain": "8453",
          "fromToken": {"address": "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", "chainId": "56", "symbol": "BNB", "decimals": 18},
          "toToken": {"address": "0x4200000000000000000000000000000000000006", "chainId": "8453", "symbol": "WETH", "decimals": 18},
          "fromAmount": "2000000000000000000",
          "toAmount": "305000000000000000"
        }
      ]
    },
    "transactionRequest": {
      "routeType": "CALL_BRIDGE_CALL",
      "targetAddress": "0xce16F69375520ab01377ce7B88f5BA8C48F8D666",
      "data": "0xfeedface",
      "value": "0",
      "gasLimit": "450000"
    }
  }
}`

func testParams() domain.SwapParams {
	return domain.SwapParams{
		Input:     asset.USDCBSC,
		Output:    asset.NewERC20(asset.ChainIDBase, common.HexToAddress("0x4200000000000000000000000000000000000006"), "WETH", "Wrapped Ether", 18),
		AmountWei: new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18)),
		Payer:     common.HexToAddress("0x00000000000000000000000000000000DeaDBeef"),
	}
}

func newTestAdapter(t *testing.T, serverURL string) *Adapter {
	t.Helper()
	adapter, err := New(config.AggregatorConfig{
		Enabled:    true,
		BaseURL:    serverURL,
		Integrator: "swapr",
	}, infra.Deps{
		Prices: stubPrices{usd: decimal.NewFromInt(600)},
		Logger: logger.NewNop(),
	})
	if err != nil {
		t.Fatalf("adapter construction failed: %v", err)
	}
	return adapter
}

func TestGetTransactionRequest_CrossChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/route" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-integrator-id"); got != "swapr" {
			t.Errorf("integrator header = %q", got)
		}
		if got := r.URL.Query().Get("quoteOnly"); got != "false" {
			t.Errorf("quoteOnly = %q, want false", got)
		}
		fmt.Fprint(w, routeFixture)
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
	if record.To != router {
		t.Errorf("to = %s, want router", record.To)
	}
	if record.ApprovalAddress != router {
		t.Errorf("approval = %s, want router", record.ApprovalAddress)
	}
	if len(record.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(record.Steps))
	}
	if record.Steps[0].Type != domain.StepSwap || record.Steps[1].Type != domain.StepBridge {
		t.Errorf("step types = %s/%s", record.Steps[0].Type, record.Steps[1].Type)
	}
	if !record.Steps[1].IsCrossChain() {
		t.Error("bridge step not recognized as cross-chain")
	}
	wantRate := decimal.RequireFromString("0.000305")
	if !record.Estimate.ExchangeRate.Equal(wantRate) {
		t.Errorf("rate = %s, want %s", record.Estimate.ExchangeRate, wantRate)
	}
	// Fee USD priced via the feed: 0.002 native * 600.
	if !record.Estimate.FeeCost.USD.Equal(decimal.RequireFromString("1.2")) {
		t.Errorf("fee usd = %s, want 1.2", record.Estimate.FeeCost.USD)
	}
}

func TestGetQuote_QuoteOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("quoteOnly"); got != "true" {
			t.Errorf("quoteOnly = %q, want true", got)
		}
		fmt.Fprint(w, routeFixture)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	quote, err := adapter.GetQuote(context.Background(), testParams())
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.AggregatorID != ID || len(quote.Steps) != 2 {
		t.Errorf("unexpected quote: %+v", quote)
	}
}

func TestGetStatus_Unsupported(t *testing.T) {
	adapter := newTestAdapter(t, "http://127.0.0.1:0")
	_, err := adapter.GetStatus(context.Background(), domain.StatusRef{AggregatorID: ID, TxHash: "0xabc"})
	if !apperror.IsCode(err, apperror.CodeStatusUnsupported) {
		t.Fatalf("expected STATUS_UNSUPPORTED, got %v", err)
	}
}
