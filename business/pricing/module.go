// Package pricing implements the pricing bounded context: native-coin USD
// prices for cost normalization.
package pricing

import (
	"context"

	"github.com/metaswap/swapr/business/pricing/app"
	pricingDI "github.com/metaswap/swapr/business/pricing/di"
	"github.com/metaswap/swapr/business/pricing/infra/binance"
	"github.com/metaswap/swapr/internal/asset"
	"github.com/metaswap/swapr/internal/config"
	"github.com/metaswap/swapr/internal/di"
	"github.com/metaswap/swapr/internal/logger"
	"github.com/metaswap/swapr/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Binance-backed price source - private dependency
	di.RegisterToken(c, pricingDI.PriceSource, func(sr di.ServiceRegistry) app.Source {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		source, err := binance.NewSource(binance.Config{
			HTTPURL: cfg.Pricing.HTTPURL,
			WSURL:   cfg.Pricing.WebSocketURL,
		}, log)
		if err != nil {
			panic("failed to create binance source: " + err.Error())
		}
		return source
	})

	// PricingService (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.PricingService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		source := pricingDI.GetPriceSource(sr)
		return app.NewPricingService(source, cfg.Pricing.StaleTimeout, log)
	})

	return nil
}

// Startup initializes the pricing module. The push stream keeps the cache
// warm; a failed subscription is not fatal since the service falls back to
// pull on demand.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	svc := pricingDI.GetPricingService(mono.Services())

	if err := svc.Watch(ctx, asset.SupportedChainIDs()); err != nil {
		log.Warn(ctx, "price stream unavailable, falling back to polling", "error", err.Error())
	}

	log.Info(ctx, "pricing module started")
	return nil
}
