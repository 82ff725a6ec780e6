package screener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/signal"
	"github.com/Tracer88/Momentum/models"
)

type fakeProvider struct {
	failSymbols map[string]bool
}

func (f *fakeProvider) GetCandles(ctx context.Context, symbol, interval string, count int) ([]models.Candle, error) {
	if f.failSymbols[symbol] {
		return nil, errors.New("fetch failed")
	}
	candles := make([]models.Candle, 60)
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for i := range candles {
		price := 5 + float64(i)*0.01
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
			Open:      price, High: price + 0.05, Low: price - 0.05, Close: price,
			Volume: 10000,
		}
	}
	return candles, nil
}

func (f *fakeProvider) GetSnapshot(ctx context.Context, symbol string) (models.MarketSnapshot, error) {
	if f.failSymbols[symbol] {
		return models.MarketSnapshot{}, errors.New("fetch failed")
	}
	return models.MarketSnapshot{
		Symbol:             symbol,
		CurrentPrice:       5.59,
		RelativeVolume:     6,
		PriceChangePercent: 12,
	}, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []string
}

func (s *fakeStore) SaveSignal(sig signal.TradingSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, sig.Symbol)
	return nil
}

func TestScreenSkipsFailedSymbols(t *testing.T) {
	cfg := config.Load()
	provider := &fakeProvider{failSymbols: map[string]bool{"BAD": true}}
	store := &fakeStore{}

	s := New(cfg, provider, signal.NewGenerator(cfg), Options{Store: store, NotifyScore: 200})
	signals := s.Screen(context.Background(), []string{"AAA", "BAD", "BBB"})

	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2 (failed symbol skipped)", len(signals))
	}
	for _, sig := range signals {
		if sig.Symbol == "BAD" {
			t.Error("failed symbol produced a signal")
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.saved) != 2 {
		t.Errorf("persisted %d signals, want 2", len(store.saved))
	}
}

func TestScreenSortsByScore(t *testing.T) {
	cfg := config.Load()
	s := New(cfg, &fakeProvider{}, signal.NewGenerator(cfg), Options{})

	signals := s.Screen(context.Background(), []string{"AAA", "BBB", "CCC", "DDD"})
	if len(signals) != 4 {
		t.Fatalf("got %d signals, want 4", len(signals))
	}
	for i := 1; i < len(signals); i++ {
		if signals[i].Composite.Overall > signals[i-1].Composite.Overall {
			t.Errorf("signals not sorted by score: %v after %v",
				signals[i].Composite.Overall, signals[i-1].Composite.Overall)
		}
	}
}

func TestScreenEmptySymbolList(t *testing.T) {
	cfg := config.Load()
	s := New(cfg, &fakeProvider{}, signal.NewGenerator(cfg), Options{})
	if got := s.Screen(context.Background(), nil); len(got) != 0 {
		t.Errorf("empty symbol list produced %d signals", len(got))
	}
}
