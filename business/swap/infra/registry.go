package infra

import (
	"context"
	"fmt"

	pricingApp "github.com/metaswap/swapr/business/pricing/app"
	"github.com/metaswap/swapr/business/swap/app"
	"github.com/metaswap/swapr/internal/config"
	"github.com/metaswap/swapr/internal/logger"
)

// Deps are the shared collaborators every adapter factory receives.
type Deps struct {
	Prices pricingApp.Source
	Logger logger.LoggerInterface
}

// Factory builds one vendor adapter from its per-vendor configuration.
type Factory func(cfg config.AggregatorConfig, deps Deps) (app.Aggregator, error)

// Registry is the closed adapter table, keyed by adapter id and resolved
// once at process start. Adding a vendor means registering one factory here;
// the orchestrator is never touched.
type Registry struct {
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a vendor factory. Duplicate ids are wiring bugs and panic.
func (r *Registry) Register(id string, f Factory) {
	if _, dup := r.factories[id]; dup {
		panic("infra: adapter " + id + " already registered")
	}
	r.factories[id] = f
	r.order = append(r.order, id)
}

// IDs returns the registered adapter ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Build constructs every registered, enabled adapter in registration order.
func (r *Registry) Build(cfg *config.Config, deps Deps) ([]app.Aggregator, error) {
	adapters := make([]app.Aggregator, 0, len(r.order))
	for _, id := range r.order {
		vendorCfg := cfg.Aggregator(id)
		if !vendorCfg.Enabled {
			deps.Logger.Info(context.Background(), "aggregator disabled by config", "aggregator", id)
			continue
		}
		adapter, err := r.factories[id](vendorCfg, deps)
		if err != nil {
			return nil, fmt.Errorf("building adapter %s: %w", id, err)
		}
		if adapter.ID() != id {
			return nil, fmt.Errorf("adapter registered as %s reports id %s", id, adapter.ID())
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}
