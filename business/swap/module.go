// Package swap implements the swap bounded context: the aggregator adapters
// and the fan-out orchestrator over them.
package swap

import (
	"context"

	"github.com/metaswap/swapr/business/pricing/di"
	"github.com/metaswap/swapr/business/swap/app"
	swapDI "github.com/metaswap/swapr/business/swap/di"
	"github.com/metaswap/swapr/business/swap/infra"
	"github.com/metaswap/swapr/business/swap/infra/lifi"
	"github.com/metaswap/swapr/business/swap/infra/socket"
	"github.com/metaswap/swapr/business/swap/infra/squid"
	"github.com/metaswap/swapr/internal/config"
	internalDI "github.com/metaswap/swapr/internal/di"
	"github.com/metaswap/swapr/internal/logger"
	"github.com/metaswap/swapr/internal/monolith"
)

// Module implements the swap bounded context.
type Module struct{}

// RegisterServices registers all swap services with the DI container.
func (m *Module) RegisterServices(c internalDI.Container) error {
	// Adapter registry - private dependency. Adding a vendor means one
	// Register line here.
	internalDI.RegisterToken(c, swapDI.AdapterRegistry, func(sr internalDI.ServiceRegistry) *infra.Registry {
		reg := infra.NewRegistry()
		reg.Register(lifi.ID, func(cfg config.AggregatorConfig, deps infra.Deps) (app.Aggregator, error) {
			return lifi.New(cfg, deps)
		})
		reg.Register(socket.ID, func(cfg config.AggregatorConfig, deps infra.Deps) (app.Aggregator, error) {
			return socket.New(cfg, deps)
		})
		reg.Register(squid.ID, func(cfg config.AggregatorConfig, deps infra.Deps) (app.Aggregator, error) {
			return squid.New(cfg, deps)
		})
		return reg
	})

	// Built adapter set - private dependency
	internalDI.RegisterToken(c, swapDI.Adapters, func(sr internalDI.ServiceRegistry) []app.Aggregator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		reg := swapDI.GetAdapterRegistry(sr)

		adapters, err := reg.Build(cfg, infra.Deps{
			Prices: di.GetPricingService(sr),
			Logger: log,
		})
		if err != nil {
			panic("failed to build aggregator adapters: " + err.Error())
		}
		return adapters
	})

	// SwapService (public - exposed to other modules)
	internalDI.RegisterToken(c, swapDI.SwapService, func(sr internalDI.ServiceRegistry) *app.SwapService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewSwapService(swapDI.GetAdapters(sr), app.ServiceConfig{
			DefaultAggregators: cfg.Swap.DefaultAggregators,
			IntegratorID:       cfg.Swap.IntegratorID,
			AdapterTimeout:     cfg.Swap.AdapterTimeout,
		}, log)
	})

	return nil
}

// Startup initializes the swap module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	svc := swapDI.GetSwapService(mono.Services())
	log.Info(ctx, "swap module started", "aggregators", svc.AggregatorIDs())
	return nil
}
