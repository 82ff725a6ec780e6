package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/api/marketdata"
	"github.com/Tracer88/Momentum/internal/signal"
	"github.com/Tracer88/Momentum/models"
)

func main() {
	symbol := flag.String("symbol", "AAPL", "symbol to analyze")
	interval := flag.String("interval", "5min", "candle interval")
	count := flag.Int("count", 300, "number of candles to fetch")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := marketdata.NewClient(cfg)

	candles, err := client.GetCandles(ctx, *symbol, *interval, *count)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", *symbol).Msg("failed to fetch candles")
	}

	snapshot, err := client.GetSnapshot(ctx, *symbol)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", *symbol).Msg("failed to fetch quote")
	}

	generator := signal.NewGenerator(cfg)
	sig := generator.Generate(models.AnalysisInput{
		Symbol:  *symbol,
		Candles: candles,
		Market:  snapshot,
	})

	fmt.Printf("%s: %s (%s, grade %s)\n", sig.Symbol, sig.SignalType, sig.SignalStrength, sig.Ross.Grade)
	fmt.Println(sig.Notes)
	for _, alert := range sig.Alerts {
		fmt.Println("!", alert)
	}
	for _, warning := range sig.RiskWarnings {
		fmt.Println("*", warning)
	}
}
