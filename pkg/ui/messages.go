package ui

import (
	swapApp "github.com/metaswap/swapr/business/swap/app"
	"github.com/metaswap/swapr/business/swap/domain"
)

// Message types for TUI updates

// RoutesMsg carries one completed fan-out: the ranked records plus the
// per-route performance view computed from them.
type RoutesMsg struct {
	Ranked      []*domain.TransactionRequestWithEstimate
	Performance []swapApp.RoutePerformance
}

// QuoteErrMsg is sent when a fan-out fails outright.
type QuoteErrMsg struct {
	Error error
}

// StatusMsg carries a bridge/swap status lookup result.
type StatusMsg struct {
	Status *domain.StatusResponse
}
