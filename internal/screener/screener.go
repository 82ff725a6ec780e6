package screener

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/signal"
	"github.com/Tracer88/Momentum/models"
)

// DataProvider supplies candles and market snapshots for a symbol.
type DataProvider interface {
	GetCandles(ctx context.Context, symbol, interval string, count int) ([]models.Candle, error)
	GetSnapshot(ctx context.Context, symbol string) (models.MarketSnapshot, error)
}

// SignalStore persists generated signals.
type SignalStore interface {
	SaveSignal(sig signal.TradingSignal) error
}

// Notifier delivers noteworthy signals.
type Notifier interface {
	NotifySignal(sig signal.TradingSignal) error
}

// Screener runs the full pipeline across a symbol list with a bounded
// worker pool. Store and notifier are optional; without them the screener
// only analyzes.
type Screener struct {
	provider  DataProvider
	generator *signal.Generator
	store     SignalStore
	notifier  Notifier

	workers     int
	interval    string
	candleCount int
	notifyScore float64
	logger      zerolog.Logger
}

// Options configures a Screener beyond its required collaborators.
type Options struct {
	Store       SignalStore
	Notifier    Notifier
	Interval    string
	CandleCount int
	NotifyScore float64
}

// New builds a screener from config.
func New(cfg *config.Config, provider DataProvider, generator *signal.Generator, opts Options) *Screener {
	if opts.Interval == "" {
		opts.Interval = "5min"
	}
	if opts.CandleCount == 0 {
		opts.CandleCount = 300
	}
	if opts.NotifyScore == 0 {
		opts.NotifyScore = 80
	}

	workers := cfg.ScreenerWorkers
	if workers <= 0 {
		workers = 1
	}

	return &Screener{
		provider:    provider,
		generator:   generator,
		store:       opts.Store,
		notifier:    opts.Notifier,
		workers:     workers,
		interval:    opts.Interval,
		candleCount: opts.CandleCount,
		notifyScore: opts.NotifyScore,
		logger:      log.With().Str("component", "screener").Logger(),
	}
}

// Screen analyzes every symbol concurrently and returns the signals sorted
// by overall score. Symbols whose data fetch fails are skipped with a
// warning; the pass continues.
func (s *Screener) Screen(ctx context.Context, symbols []string) []signal.TradingSignal {
	s.logger.Info().Int("symbols", len(symbols)).Int("workers", s.workers).Msg("screening pass started")

	jobs := make(chan string)
	results := make(chan signal.TradingSignal)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				sig, ok := s.screenOne(ctx, symbol)
				if ok {
					results <- sig
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, symbol := range symbols {
			select {
			case jobs <- symbol:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	signals := make([]signal.TradingSignal, 0, len(symbols))
	for sig := range results {
		signals = append(signals, sig)
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Composite.Overall > signals[j].Composite.Overall
	})

	s.logger.Info().Int("signals", len(signals)).Msg("screening pass complete")
	return signals
}

// screenOne fetches data for one symbol, generates its signal and runs the
// persistence and notification side effects.
func (s *Screener) screenOne(ctx context.Context, symbol string) (signal.TradingSignal, bool) {
	candles, err := s.provider.GetCandles(ctx, symbol, s.interval, s.candleCount)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("candle fetch failed, skipping symbol")
		return signal.TradingSignal{}, false
	}

	snapshot, err := s.provider.GetSnapshot(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("quote fetch failed, skipping symbol")
		return signal.TradingSignal{}, false
	}

	sig := s.generator.Generate(models.AnalysisInput{
		Symbol:  symbol,
		Candles: candles,
		Market:  snapshot,
	})

	if s.store != nil {
		if err := s.store.SaveSignal(sig); err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to persist signal")
		}
	}

	if s.notifier != nil && sig.Composite.Overall >= s.notifyScore {
		if err := s.notifier.NotifySignal(sig); err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to deliver notification")
		}
	}

	return sig, true
}
