package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/api/marketdata"
	"github.com/Tracer88/Momentum/internal/database"
	"github.com/Tracer88/Momentum/internal/notifier"
	"github.com/Tracer88/Momentum/internal/screener"
	"github.com/Tracer88/Momentum/internal/signal"
)

func main() {
	symbolsFlag := flag.String("symbols", "", "comma-separated symbol list (overrides SCREENER_SYMBOLS)")
	interval := flag.String("interval", "5min", "candle interval")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	symbols := cfg.ScreenerSymbols
	if *symbolsFlag != "" {
		symbols = nil
		for _, s := range strings.Split(*symbolsFlag, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				symbols = append(symbols, trimmed)
			}
		}
	}
	if len(symbols) == 0 {
		log.Fatal().Msg("no symbols configured, set SCREENER_SYMBOLS or pass -symbols")
	}

	opts := screener.Options{Interval: *interval}

	if cfg.DBPassword != "" {
		db, err := database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		opts.Store = db
		log.Info().Msg("signal persistence enabled")
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize telegram notifier")
		}
		opts.Notifier = tg
		log.Info().Msg("telegram notifications enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	generator := signal.NewGenerator(cfg)
	s := screener.New(cfg, marketdata.NewClient(cfg), generator, opts)

	signals := s.Screen(ctx, symbols)

	summary := generator.Summarize(signals)
	fmt.Printf("screened %d symbols: %d strong buy, %d buy, %d hold, %d sell (avg confidence %.0f%%)\n",
		summary.TotalSignals, summary.StrongBuySignals, summary.BuySignals,
		summary.HoldSignals, summary.SellSignals, summary.AvgConfidence*100)

	for _, sig := range generator.RossCameronSignals(signals) {
		fmt.Printf("%-6s  %.1f  grade %-2s  %s\n", sig.Symbol, sig.Ross.Overall, sig.Ross.Grade, sig.SignalType)
	}
}
