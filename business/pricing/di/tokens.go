// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/metaswap/swapr/business/pricing/app"
	"github.com/metaswap/swapr/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PricingService = di.NewToken[*app.PricingService]("pricing.PricingService")
)

// Private dependency tokens - internal to pricing module
var (
	PriceSource = di.NewToken[app.Source]("pricing:priceSource")
)

// Helper functions for type-safe access
func GetPricingService(c di.ServiceRegistry) *app.PricingService {
	return di.GetToken(c, PricingService)
}

func GetPriceSource(c di.ServiceRegistry) app.Source {
	return di.GetToken(c, PriceSource)
}
