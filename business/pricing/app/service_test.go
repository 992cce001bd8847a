package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/pricing/domain"
	"github.com/metaswap/swapr/internal/logger"
)

type fakeSource struct {
	usd   decimal.Decimal
	err   error
	calls int
}

func (f *fakeSource) NativeUSD(ctx context.Context, chainID uint64) (decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.usd, nil
}

type fakeStreamer struct {
	fakeSource
	prices chan domain.Price
}

func (f *fakeStreamer) Stream(ctx context.Context, chainIDs []uint64) (<-chan domain.Price, error) {
	return f.prices, nil
}

func TestNativeUSD_CachesWithinTTL(t *testing.T) {
	src := &fakeSource{usd: decimal.NewFromInt(600)}
	svc := NewPricingService(src, 30*time.Second, logger.NewNop())

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		usd, err := svc.NativeUSD(context.Background(), 56)
		if err != nil || !usd.Equal(decimal.NewFromInt(600)) {
			t.Fatalf("call %d: got %s, %v", i, usd, err)
		}
	}
	if src.calls != 1 {
		t.Errorf("source called %d times within ttl, want 1", src.calls)
	}

	// Past the TTL the source is consulted again.
	svc.now = func() time.Time { return base.Add(31 * time.Second) }
	if _, err := svc.NativeUSD(context.Background(), 56); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source called %d times after expiry, want 2", src.calls)
	}
}

func TestNativeUSD_ServesStaleOnSourceFailure(t *testing.T) {
	src := &fakeSource{usd: decimal.NewFromInt(600)}
	svc := NewPricingService(src, 30*time.Second, logger.NewNop())

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.NativeUSD(context.Background(), 56); err != nil {
		t.Fatal(err)
	}

	src.err = errors.New("binance down")
	svc.now = func() time.Time { return base.Add(time.Minute) }

	usd, err := svc.NativeUSD(context.Background(), 56)
	if err != nil {
		t.Fatalf("expected stale price, got error %v", err)
	}
	if !usd.Equal(decimal.NewFromInt(600)) {
		t.Errorf("stale price = %s, want 600", usd)
	}
}

func TestNativeUSD_ColdCacheFailurePropagates(t *testing.T) {
	src := &fakeSource{err: errors.New("binance down")}
	svc := NewPricingService(src, time.Second, logger.NewNop())

	if _, err := svc.NativeUSD(context.Background(), 56); err == nil {
		t.Fatal("expected error with no cached price")
	}
}

func TestWatch_UpdatesCacheFromStream(t *testing.T) {
	src := &fakeStreamer{prices: make(chan domain.Price, 1)}
	src.err = errors.New("pull disabled")
	svc := NewPricingService(src, time.Hour, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Watch(ctx, []uint64{56}); err != nil {
		t.Fatal(err)
	}

	src.prices <- domain.Price{ChainID: 56, Symbol: "BNBUSDT", USD: decimal.NewFromInt(601), Timestamp: time.Now()}

	deadline := time.After(time.Second)
	for {
		usd, err := svc.NativeUSD(ctx, 56)
		if err == nil && usd.Equal(decimal.NewFromInt(601)) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("cache never saw streamed price, last: %s, %v", usd, err)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatch_NoopWithoutStreamSupport(t *testing.T) {
	svc := NewPricingService(&fakeSource{}, time.Second, logger.NewNop())
	if err := svc.Watch(context.Background(), []uint64{56}); err != nil {
		t.Fatal(err)
	}
}
