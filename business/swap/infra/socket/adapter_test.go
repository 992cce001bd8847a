package socket

import (
	"context"
	"encoding/json"
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

const quoteFixture = `{
  "success": true,
  "result": {
    "routes": [{
      "routeId": "route-9",
      "fromAmount": "1000000000000000000000",
      "toAmount": "290000000000000000",
      "totalGasFeesInUsd": 2.4,
      "userTxs": [{
        "userTxType": "dex-swap",
        "chainId": 56,
        "steps": [{
          "type": "swap",
          "protocol": {"name": "oneinch", "displayName": "1inch", "icon": "https://example.com/1inch.png"},
          "fromChainId": 56,
          "toChainId": 56,
          "fromAsset": {"chainId": 56, "address": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", "symbol": "USDC", "name": "USD Coin", "decimals": 18},
          "toAsset": {"chainId": 56, "address": "0x2170Ed0880ac9A755fd29B2688956BD959F933F8", "symbol": "WETH", "name": "Wrapped Ether", "decimals": 18},
          "fromAmount": "1000000000000000000000",
          "toAmount": "290000000000000000",
          "gasFees": {"gasAmount": "4000000000000000", "gasLimit": 200000, "feesInUsd": 2.4},
          "protocolFees": {"amount": "0", "feesInUsd": 0}
        }]
      }]
    }]
  }
}`

const buildTxFixture = `{
  "success": true,
  "result": {
    "userTxType": "dex-swap",
    "txTarget": "0x3a23F943181408EAC424116Af7b7790c94Cb97a5",
    "chainId": 56,
    "txData": "0xcafebabe",
    "value": "0x0",
    "approvalData": {
      "minimumApprovalAmount": "1000000000000000000000",
      "approvalTokenAddress": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
      "allowanceTarget": "0x3a23F943181408EAC424116Af7b7790c94Cb97a5",
      "owner": "0x00000000000000000000000000000000DeaDBeef"
    }
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
		APIKey:  "test-key",
	}, infra.Deps{Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("adapter construction failed: %v", err)
	}
	return adapter
}

func TestGetTransactionRequest_TwoCallComposition(t *testing.T) {
	var quoteCalls, buildCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("API-KEY") != "test-key" {
			t.Errorf("missing API-KEY header")
		}
		switch r.URL.Path {
		case "/quote":
			quoteCalls++
			fmt.Fprint(w, quoteFixture)
		case "/build-tx":
			buildCalls++
			// The quoted route must round-trip verbatim into build-tx.
			var body struct {
				Route json.RawMessage `json:"route"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("bad build-tx body: %v", err)
			}
			var route struct {
				RouteID string `json:"routeId"`
			}
			if err := json.Unmarshal(body.Route, &route); err != nil || route.RouteID != "route-9" {
				t.Errorf("route did not round-trip: %v %q", err, route.RouteID)
			}
			fmt.Fprint(w, buildTxFixture)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	record, err := adapter.GetTransactionRequest(context.Background(), testParams())
	if err != nil {
		t.Fatalf("transaction request failed: %v", err)
	}
	if quoteCalls != 1 || buildCalls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", quoteCalls, buildCalls)
	}
	if err := record.EnsureComplete(); err != nil {
		t.Errorf("record incomplete: %v", err)
	}
	if record.To != common.HexToAddress("0x3a23F943181408EAC424116Af7b7790c94Cb97a5") {
		t.Errorf("to = %s", record.To)
	}
	wantRate := decimal.RequireFromString("0.00029")
	if !record.Estimate.ExchangeRate.Equal(wantRate) {
		t.Errorf("rate = %s, want %s", record.Estimate.ExchangeRate, wantRate)
	}
	if !record.Estimate.GasCost.USD.Equal(decimal.RequireFromString("2.4")) {
		t.Errorf("gas usd = %s, want 2.4", record.Estimate.GasCost.USD)
	}
}

func TestGetQuote_NoRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": true, "result": {"routes": []}}`)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	_, err := adapter.GetQuote(context.Background(), testParams())
	if !apperror.IsCode(err, apperror.CodeQuoteFailed) {
		t.Fatalf("expected QUOTE_FAILED, got %v", err)
	}
}

func TestGetStatus_BridgeStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bridge-status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"success": true, "result": {"sourceTxStatus": "COMPLETED", "destinationTxStatus": "PENDING", "destinationTransactionHash": ""}}`)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	resp, err := adapter.GetStatus(context.Background(), domain.StatusRef{
		AggregatorID: ID, TxHash: "0xaaa", FromChainID: 56, ToChainID: 1,
	})
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if resp.Status != domain.StatusPending {
		t.Errorf("status = %s, want PENDING while destination settles", resp.Status)
	}
}

func TestZeroOutputRouteRejected(t *testing.T) {
	fixture := `{
  "success": true,
  "result": {"routes": [{
    "routeId": "route-0",
    "fromAmount": "1000000000000000000000",
    "toAmount": "0",
    "userTxs": [{"chainId": 56, "steps": [{
      "type": "swap",
      "protocol": {"name": "oneinch"},
      "fromChainId": 56, "toChainId": 56,
      "fromAsset": {"chainId": 56, "address": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", "symbol": "USDC", "decimals": 18},
      "toAsset": {"chainId": 56, "address": "0x2170Ed0880ac9A755fd29B2688956BD959F933F8", "symbol": "WETH", "decimals": 18},
      "fromAmount": "1000000000000000000000",
      "toAmount": "0",
      "gasFees": {"gasAmount": "0", "feesInUsd": 0},
      "protocolFees": {"amount": "0", "feesInUsd": 0}
    }]}]
  }]}
}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fixture)
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	_, err := adapter.GetQuote(context.Background(), testParams())
	if !apperror.IsCode(err, apperror.CodeZeroAmountQuote) {
		t.Fatalf("expected ZERO_AMOUNT_QUOTE, got %v", err)
	}
}
