// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/metaswap/swapr/business/swap/app"
	"github.com/metaswap/swapr/business/swap/infra"
	"github.com/metaswap/swapr/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SwapService = di.NewToken[*app.SwapService]("swap.SwapService")
)

// Private dependency tokens - internal to swap module
var (
	AdapterRegistry = di.NewToken[*infra.Registry]("swap:adapterRegistry")
	Adapters        = di.NewToken[[]app.Aggregator]("swap:adapters")
)

// Helper functions for type-safe access
func GetSwapService(c di.ServiceRegistry) *app.SwapService {
	return di.GetToken(c, SwapService)
}

func GetAdapterRegistry(c di.ServiceRegistry) *infra.Registry {
	return di.GetToken(c, AdapterRegistry)
}

func GetAdapters(c di.ServiceRegistry) []app.Aggregator {
	return di.GetToken(c, Adapters)
}
