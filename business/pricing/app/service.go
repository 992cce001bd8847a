package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/pricing/domain"
	"github.com/metaswap/swapr/internal/logger"
)

// DefaultCacheTTL bounds how long a cached native-coin price is served
// without consulting the source again.
const DefaultCacheTTL = 30 * time.Second

// PricingService caches native-coin USD prices in front of a Source. It is
// itself a Source, so adapters depend on the port only.
type PricingService struct {
	source Source
	ttl    time.Duration
	log    logger.LoggerInterface

	mu    sync.RWMutex
	cache map[uint64]domain.Price

	now func() time.Time // test seam
}

var _ Source = (*PricingService)(nil)

// NewPricingService creates the caching service. A ttl <= 0 selects the
// default.
func NewPricingService(source Source, ttl time.Duration, log logger.LoggerInterface) *PricingService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PricingService{
		source: source,
		ttl:    ttl,
		log:    log,
		cache:  make(map[uint64]domain.Price),
		now:    time.Now,
	}
}

// NativeUSD returns the cached price when fresh, otherwise asks the source
// and refreshes the cache.
func (s *PricingService) NativeUSD(ctx context.Context, chainID uint64) (decimal.Decimal, error) {
	s.mu.RLock()
	cached, ok := s.cache[chainID]
	s.mu.RUnlock()
	if ok && !cached.StaleAfter(s.ttl, s.now()) {
		return cached.USD, nil
	}

	usd, err := s.source.NativeUSD(ctx, chainID)
	if err != nil {
		// A stale price beats no price while the source is down.
		if ok {
			s.log.Warn(ctx, "price source failed, serving stale price",
				"chainId", chainID, "age", s.now().Sub(cached.Timestamp).String(), "error", err.Error())
			return cached.USD, nil
		}
		return decimal.Zero, err
	}

	s.mu.Lock()
	s.cache[chainID] = domain.Price{ChainID: chainID, USD: usd, Timestamp: s.now()}
	s.mu.Unlock()
	return usd, nil
}

// Watch keeps the cache warm from the source's push stream until ctx ends.
// Sources without streaming support make Watch a no-op.
func (s *PricingService) Watch(ctx context.Context, chainIDs []uint64) error {
	streamer, ok := s.source.(Streamer)
	if !ok {
		return nil
	}
	prices, err := streamer.Stream(ctx, chainIDs)
	if err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-prices:
				if !ok {
					return
				}
				s.mu.Lock()
				s.cache[p.ChainID] = p
				s.mu.Unlock()
			}
		}
	}()
	return nil
}
