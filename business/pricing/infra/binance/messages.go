// Package binance implements the pricing Source port against the Binance
// public market-data API.
package binance

import (
	"fmt"

	"github.com/metaswap/swapr/internal/asset"
)

// tickerPriceResponse is the REST /api/v3/ticker/price payload.
type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// wsRequest is a WebSocket subscription request.
type wsRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// miniTickerEvent is the <symbol>@miniTicker stream payload.
type miniTickerEvent struct {
	EventType  string `json:"e"` // "24hrMiniTicker"
	EventTime  int64  `json:"E"` // event time (ms)
	Symbol     string `json:"s"`
	ClosePrice string `json:"c"` // latest price
}

// symbolForChain maps a chain id to the Binance ticker of its native coin.
func symbolForChain(chainID uint64) (string, error) {
	coin, ok := asset.NativeCoin(chainID)
	if !ok {
		return "", fmt.Errorf("binance: no native coin mapping for chain %d", chainID)
	}
	return coin.Symbol() + "USDT", nil
}
