package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/asset"
	"github.com/metaswap/swapr/internal/logger"
)

func newTestSource(t *testing.T, httpURL, wsURL string) *Source {
	t.Helper()
	src, err := NewSource(Config{HTTPURL: httpURL, WSURL: wsURL}, logger.NewNop())
	if err != nil {
		t.Fatalf("source construction failed: %v", err)
	}
	return src
}

func TestNativeUSD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BNBUSDT" {
			t.Errorf("symbol = %q, want BNBUSDT", got)
		}
		fmt.Fprint(w, `{"symbol": "BNBUSDT", "price": "612.34000000"}`)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL, "")
	usd, err := src.NativeUSD(context.Background(), asset.ChainIDBSC)
	if err != nil {
		t.Fatalf("NativeUSD failed: %v", err)
	}
	if !usd.Equal(decimal.RequireFromString("612.34")) {
		t.Errorf("usd = %s, want 612.34", usd)
	}
}

func TestNativeUSD_UnsupportedChain(t *testing.T) {
	src := newTestSource(t, "http://127.0.0.1:0", "")
	_, err := src.NativeUSD(context.Background(), 424242)
	if !apperror.IsCode(err, apperror.CodePriceUnavailable) {
		t.Fatalf("expected PRICE_UNAVAILABLE, got %v", err)
	}
}

func TestNativeUSD_MalformedPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol": "BNBUSDT", "price": "not-a-number"}`)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL, "")
	_, err := src.NativeUSD(context.Background(), asset.ChainIDBSC)
	if !apperror.IsCode(err, apperror.CodeMalformedQuote) {
		t.Fatalf("expected MALFORMED_QUOTE, got %v", err)
	}
}

// tickerServer accepts one connection, waits for a SUBSCRIBE request, acks
// it, then pushes one miniTicker event.
func tickerServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Method != "SUBSCRIBE" {
			t.Errorf("expected SUBSCRIBE request, got %s", data)
			return
		}
		if len(req.Params) != 1 || req.Params[0] != "bnbusdt@miniTicker" {
			t.Errorf("params = %v", req.Params)
		}

		ack := fmt.Sprintf(`{"result": null, "id": %d}`, req.ID)
		if err := conn.Write(r.Context(), websocket.MessageText, []byte(ack)); err != nil {
			return
		}
		event := `{"e": "24hrMiniTicker", "E": 1756209600000, "s": "BNBUSDT", "c": "613.50000000"}`
		if err := conn.Write(r.Context(), websocket.MessageText, []byte(event)); err != nil {
			return
		}
		<-r.Context().Done()
	}))
}

func TestStream(t *testing.T) {
	srv := tickerServer(t)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := newTestSource(t, "http://127.0.0.1:0", wsURL)
	prices, err := src.Stream(ctx, []uint64{asset.ChainIDBSC})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	select {
	case price := <-prices:
		if price.ChainID != asset.ChainIDBSC || price.Symbol != "BNBUSDT" {
			t.Errorf("unexpected price %+v", price)
		}
		if !price.USD.Equal(decimal.RequireFromString("613.5")) {
			t.Errorf("usd = %s, want 613.5", price.USD)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for streamed price")
	}
}
