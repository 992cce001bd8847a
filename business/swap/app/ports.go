// Package app contains application services and port definitions for the swap context.
package app

import (
	"context"

	"github.com/metaswap/swapr/business/swap/domain"
)

// Aggregator is the capability every vendor integration implements. The
// orchestrator never speaks vendor HTTP directly; it only sees this port.
type Aggregator interface {
	// ID returns the stable adapter id used for dispatch and tagging.
	ID() string

	// GetQuote validates the params and performs a single vendor round-trip.
	// Failures carry the vendor id, HTTP status and raw body.
	GetQuote(ctx context.Context, params domain.SwapParams) (*domain.VendorQuote, error)

	// GetTransactionRequest composes the vendor calls needed to produce one
	// complete, normalized record. The record always has To, Data and
	// ApprovalAddress set.
	GetTransactionRequest(ctx context.Context, params domain.SwapParams) (*domain.TransactionRequestWithEstimate, error)

	// GetStatus looks up a submitted transaction. Adapters without tracking
	// return STATUS_UNSUPPORTED.
	GetStatus(ctx context.Context, ref domain.StatusRef) (*domain.StatusResponse, error)

	// SupportsContractCalls reports whether the adapter can append custom
	// calldata to a route.
	SupportsContractCalls() bool
}
