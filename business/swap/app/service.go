package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/internal/apm"
	"github.com/metaswap/swapr/internal/apperror"
	"github.com/metaswap/swapr/internal/logger"
)

// DefaultAdapterTimeout bounds a single vendor call when config does not.
const DefaultAdapterTimeout = 20 * time.Second

// ServiceConfig holds orchestrator-level settings. It is built once before
// any dispatch and never mutated afterwards.
type ServiceConfig struct {
	// DefaultAggregators is the adapter id set used when the caller does not
	// name adapters explicitly.
	DefaultAggregators []string

	// IntegratorID is applied to params that carry no integrator.
	IntegratorID string

	// AdapterTimeout bounds each vendor call; a slow vendor becomes a
	// discarded failure, never a stalled batch.
	AdapterTimeout time.Duration
}

// SwapService fans one swap request out to the selected adapters, tolerates
// partial failure, and ranks the survivors.
type SwapService struct {
	adapters map[string]Aggregator
	cfg      ServiceConfig
	log      logger.LoggerInterface

	tracer        *apm.Tracer
	fanoutCounter metric.Int64Counter
}

// NewSwapService creates the orchestrator over a fixed adapter set. The
// adapter table is closed at construction; adding a vendor means registering
// one more Aggregator here, never touching the dispatch logic.
func NewSwapService(adapters []Aggregator, cfg ServiceConfig, log logger.LoggerInterface) *SwapService {
	table := make(map[string]Aggregator, len(adapters))
	for _, a := range adapters {
		if _, dup := table[a.ID()]; dup {
			panic("swap: duplicate aggregator id " + a.ID())
		}
		table[a.ID()] = a
	}
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = DefaultAdapterTimeout
	}

	meter := otel.Meter("swapr/swap")
	fanout, _ := meter.Int64Counter("swap_fanout_total",
		metric.WithDescription("Adapter invocations by outcome"))

	return &SwapService{
		adapters:      table,
		cfg:           cfg,
		log:           log,
		tracer:        apm.NewTracer("swapr/swap"),
		fanoutCounter: fanout,
	}
}

// AggregatorIDs returns the registered adapter ids, sorted.
func (s *SwapService) AggregatorIDs() []string {
	ids := make([]string, 0, len(s.adapters))
	for id := range s.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetAllTransactionRequests queries the selected adapters concurrently and
// returns the surviving records ranked by descending exchange rate. At least
// one adapter must succeed; otherwise the error names every attempted id.
func (s *SwapService) GetAllTransactionRequests(ctx context.Context, params domain.SwapParams) ([]*domain.TransactionRequestWithEstimate, error) {
	params = s.applyDefaults(params)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	selected, ids, err := s.resolveAdapters(params)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "swap.fanout",
		attribute.Int("aggregators.attempted", len(ids)))
	defer span.End()

	// Indexed by dispatch position so ties in the ranking keep the resolved
	// dispatch order.
	results := make([]*domain.TransactionRequestWithEstimate, len(selected))

	var g errgroup.Group
	for i, adapter := range selected {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
			defer cancel()

			record, err := adapter.GetTransactionRequest(callCtx, params)
			if err != nil {
				// Partial failure is first-class: log, count, drop.
				s.log.Warn(ctx, "adapter failed, dropping from result set",
					append([]interface{}{"aggregator", adapter.ID()}, errKV(err)...)...)
				s.fanoutCounter.Add(ctx, 1, metric.WithAttributes(
					attribute.String("aggregator", adapter.ID()),
					attribute.String("outcome", "error"),
				))
				return nil
			}
			s.fanoutCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("aggregator", adapter.ID()),
				attribute.String("outcome", "ok"),
			))
			results[i] = record
			return nil
		})
	}
	// Adapter errors never reach the group; Wait only joins.
	_ = g.Wait()

	survivors := make([]*domain.TransactionRequestWithEstimate, 0, len(results))
	for i, r := range results {
		if r == nil {
			continue
		}
		r.TagAggregator(ids[i])
		// Adapters may quote with a stand-in payer; the final record always
		// reflects the real signer.
		r.From = params.Payer
		survivors = append(survivors, r)
	}
	if len(survivors) == 0 {
		err := apperror.NoRoute(ids)
		span.NoticeError(err)
		return nil, err
	}

	sort.SliceStable(survivors, func(a, b int) bool {
		return survivors[a].Estimate.ExchangeRate.GreaterThan(survivors[b].Estimate.ExchangeRate)
	})

	span.SetAttributes(
		attribute.Int("aggregators.survived", len(survivors)),
		attribute.String("aggregators.best", survivors[0].AggregatorID),
	)
	s.log.Info(ctx, "ranked swap routes",
		"attempted", len(ids),
		"survivors", len(survivors),
		"best", survivors[0].AggregatorID,
	)
	return survivors, nil
}

// GetTransactionRequest returns only the best-ranked record.
func (s *SwapService) GetTransactionRequest(ctx context.Context, params domain.SwapParams) (*domain.TransactionRequestWithEstimate, error) {
	ranked, err := s.GetAllTransactionRequests(ctx, params)
	if err != nil {
		return nil, err
	}
	return ranked[0], nil
}

// GetStatus routes a status lookup to the adapter that built the transaction.
func (s *SwapService) GetStatus(ctx context.Context, ref domain.StatusRef) (*domain.StatusResponse, error) {
	adapter, ok := s.adapters[ref.AggregatorID]
	if !ok {
		return nil, apperror.Validation(apperror.CodeUnknownAggregator, "unknown aggregator id "+ref.AggregatorID)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()
	return adapter.GetStatus(ctx, ref)
}

// applyDefaults fills params fields the caller left unset. Caller values
// always win.
func (s *SwapService) applyDefaults(params domain.SwapParams) domain.SwapParams {
	params = params.WithDefaults()
	if params.Integrator == "" {
		params.Integrator = s.cfg.IntegratorID
	}
	return params
}

// resolveAdapters turns the request into a concrete dispatch list: explicit
// ids from params, else the default set; requests carrying contract calls
// are restricted to adapters that support them. The returned id slice is in
// dispatch order.
func (s *SwapService) resolveAdapters(params domain.SwapParams) ([]Aggregator, []string, error) {
	requested := params.AggregatorIDs
	if len(requested) == 0 {
		requested = s.cfg.DefaultAggregators
	}

	selected := make([]Aggregator, 0, len(requested))
	ids := make([]string, 0, len(requested))
	for _, id := range requested {
		adapter, ok := s.adapters[id]
		if !ok {
			return nil, nil, apperror.Validation(apperror.CodeUnknownAggregator, "unknown aggregator id "+id)
		}
		if params.HasContractCalls() && !adapter.SupportsContractCalls() {
			continue
		}
		selected = append(selected, adapter)
		ids = append(ids, id)
	}
	if len(selected) == 0 {
		if params.HasContractCalls() {
			return nil, nil, apperror.Validation(apperror.CodeValidationError, "no selected aggregator supports contract calls")
		}
		return nil, nil, apperror.Validation(apperror.CodeValidationError, "no aggregators selected")
	}
	return selected, ids, nil
}

// errKV extracts structured fields from an error for logging.
func errKV(err error) []interface{} {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.ToLog()
	}
	return []interface{}{"error", err.Error()}
}
