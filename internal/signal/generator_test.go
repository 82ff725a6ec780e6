package signal

import (
	"math"
	"testing"
	"time"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/analysis/scoring"
	"github.com/Tracer88/Momentum/internal/analysis/technical"
	"github.com/Tracer88/Momentum/models"
)

func newTestGenerator() *Generator {
	return NewGenerator(config.Load())
}

func generateTestCandles(n int, builder func(i int) models.Candle) []models.Candle {
	candles := make([]models.Candle, n)
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := builder(i)
		if c.Timestamp.IsZero() {
			c.Timestamp = base.Add(time.Duration(i) * 5 * time.Minute)
		}
		candles[i] = c
	}
	return candles
}

func TestGenerateWithNoDataReturnsHold(t *testing.T) {
	g := newTestGenerator()
	got := g.Generate(models.AnalysisInput{Symbol: "EMPTY"})

	if got.SignalType != technical.RecHold {
		t.Errorf("signal type = %q, want hold", got.SignalType)
	}
	if got.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", got.Confidence)
	}
	if got.Notes == "" {
		t.Error("default signal should carry an explanatory note")
	}
	if len(got.RiskWarnings) == 0 {
		t.Error("default signal should warn about reliability")
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	g := newTestGenerator()
	candles := generateTestCandles(250, func(i int) models.Candle {
		price := 3 + float64(i)*0.004
		return models.Candle{Open: price, High: price + 0.02, Low: price - 0.02, Close: price, Volume: 50000}
	})

	input := models.AnalysisInput{
		Symbol:  "RUNR",
		Candles: candles,
		Market: models.MarketSnapshot{
			CurrentPrice:       3.84,
			RelativeVolume:     47.56,
			PriceChangePercent: 135.58,
		},
		Fundamental: models.FundamentalSummary{
			FloatShares: 1_300_000,
			Sector:      "Biotechnology",
		},
		News: models.NewsSummary{
			CatalystDetected: true,
			CatalystScore:    90,
			CatalystTypes:    []string{"fda_approval"},
			AvgSentiment:     0.675,
		},
	}

	got := g.Generate(input)
	if got.Symbol != "RUNR" {
		t.Errorf("symbol = %q", got.Symbol)
	}
	if got.SignalID == "" || got.ExpiryTime == nil {
		t.Error("signal missing id or expiry")
	}
	if got.Ross.Grade != "A" && got.Ross.Grade != "A+" {
		t.Errorf("grade = %q, want A or A+", got.Ross.Grade)
	}
	if got.EntryPrice <= 0 || got.StopLoss <= 0 || got.TakeProfit <= 0 {
		t.Errorf("trade levels missing: entry %v stop %v target %v", got.EntryPrice, got.StopLoss, got.TakeProfit)
	}
	if len(got.Alerts) == 0 {
		t.Error("exceptional setup generated no alerts")
	}
}

func TestSignalTypeLadder(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{85, technical.RecStrongBuy},
		{80, technical.RecStrongBuy},
		{70, technical.RecBuy},
		{50, technical.RecHold},
		{45, technical.RecHold},
		{35, technical.RecSell},
		{10, technical.RecStrongSell},
	}
	for _, tt := range tests {
		if got := signalType(tt.overall); got != tt.want {
			t.Errorf("signalType(%v) = %q, want %q", tt.overall, got, tt.want)
		}
	}
}

func TestRiskRewardRatio(t *testing.T) {
	got := riskRewardRatio(10, 9, 12)
	if got == nil || math.Abs(*got-2.0) > 1e-9 {
		t.Errorf("ratio = %v, want 2.0", got)
	}

	if got := riskRewardRatio(10, 10, 12); got != nil {
		t.Errorf("zero risk ratio = %v, want nil", *got)
	}
	if got := riskRewardRatio(10, 11, 12); got != nil {
		t.Errorf("inverted stop ratio = %v, want nil", *got)
	}
	if got := riskRewardRatio(0, 9, 12); got != nil {
		t.Errorf("missing entry ratio = %v, want nil", *got)
	}
}

func TestPositionSizeRiskRule(t *testing.T) {
	g := newTestGenerator()
	portfolio := &models.PortfolioSnapshot{AccountValue: 100_000}

	composite := scoring.CompositeScore{
		Overall:         70,
		ConfidenceLevel: 0.7,
		RiskLevel:       RiskMedium,
		EntryPrice:      10,
		StopLoss:        9.5,
	}

	got := g.positionSize(composite, portfolio)
	if got == nil {
		t.Fatal("position size = nil, want value")
	}
	// 2% of 100k is 2000 risk; 0.50 per share risks 4000 shares, but the
	// 10% of account cap allows only 1000 shares at $10.
	if math.Abs(*got-1000) > 1e-9 {
		t.Errorf("position size = %v, want capped at 1000", *got)
	}
}

func TestPositionSizeScaling(t *testing.T) {
	g := newTestGenerator()
	portfolio := &models.PortfolioSnapshot{AccountValue: 100_000}

	base := scoring.CompositeScore{
		Overall:         70,
		ConfidenceLevel: 0.7,
		RiskLevel:       RiskMedium,
		EntryPrice:      20,
		StopLoss:        10,
	}
	// 2% of 100k risks 2000; $10 per share of risk sizes 200 shares,
	// well under the 500-share account cap.
	baseSize := g.positionSize(base, portfolio)
	if baseSize == nil || math.Abs(*baseSize-200) > 1e-9 {
		t.Fatalf("base size = %v, want 200", baseSize)
	}

	lowConfidence := base
	lowConfidence.ConfidenceLevel = 0.5
	halved := g.positionSize(lowConfidence, portfolio)
	if halved == nil || math.Abs(*halved-100) > 1e-9 {
		t.Errorf("low-confidence size = %v, want 100", halved)
	}

	highRisk := base
	highRisk.RiskLevel = RiskHigh
	reduced := g.positionSize(highRisk, portfolio)
	if reduced == nil || math.Abs(*reduced-100) > 1e-9 {
		t.Errorf("high-risk size = %v, want 100", reduced)
	}
}

func TestPositionSizeWithoutPortfolio(t *testing.T) {
	g := newTestGenerator()
	composite := scoring.CompositeScore{EntryPrice: 10, StopLoss: 9}
	if got := g.positionSize(composite, nil); got != nil {
		t.Errorf("size without portfolio = %v, want nil", *got)
	}
}

func TestExpiryByHorizon(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		horizon string
		want    time.Duration
	}{
		{scoring.HorizonScalp, 30 * time.Minute},
		{scoring.HorizonDayTrade, 6 * time.Hour},
		{scoring.HorizonSwing, 5 * 24 * time.Hour},
		{scoring.HorizonPosition, 30 * 24 * time.Hour},
		{"unknown", 24 * time.Hour},
	}
	for _, tt := range tests {
		got := expiryTime(now, tt.horizon)
		if got == nil || !got.Equal(now.Add(tt.want)) {
			t.Errorf("expiry for %q = %v, want %v", tt.horizon, got, now.Add(tt.want))
		}
	}
}

func rossSignal(symbol string, overall, volume, change, flt, catalyst, priceRange float64) TradingSignal {
	return TradingSignal{
		Symbol: symbol,
		Ross: scoring.RossScore{
			Symbol:            symbol,
			Overall:           overall,
			VolumePillar:      volume,
			PriceChangePillar: change,
			FloatPillar:       flt,
			CatalystPillar:    catalyst,
			PriceRangePillar:  priceRange,
		},
	}
}

func TestRossCameronSignalsFourOfFive(t *testing.T) {
	g := newTestGenerator()

	signals := []TradingSignal{
		rossSignal("ALL5", 92, 100, 90, 100, 80, 100),
		rossSignal("FOUR", 85, 100, 90, 100, 10, 100),   // catalyst pillar fails
		rossSignal("THREE", 85, 100, 90, 100, 10, 60),   // two pillars fail
		rossSignal("LOWALL", 70, 100, 90, 100, 80, 100), // overall below bar
	}

	got := g.RossCameronSignals(signals)
	if len(got) != 2 {
		t.Fatalf("passed %d signals, want 2", len(got))
	}
	if got[0].Symbol != "ALL5" || got[1].Symbol != "FOUR" {
		t.Errorf("order = %q, %q; want ALL5 then FOUR", got[0].Symbol, got[1].Symbol)
	}
}

func TestFilterCriteria(t *testing.T) {
	g := newTestGenerator()
	signals := []TradingSignal{
		{Symbol: "GOOD", Confidence: 0.9, Composite: scoring.CompositeScore{Overall: 85, RiskLevel: RiskLow}},
		{Symbol: "RISKY", Confidence: 0.9, Composite: scoring.CompositeScore{Overall: 85, RiskLevel: RiskHigh}},
		{Symbol: "WEAK", Confidence: 0.4, Composite: scoring.CompositeScore{Overall: 85, RiskLevel: RiskLow}},
		{Symbol: "LOW", Confidence: 0.9, Composite: scoring.CompositeScore{Overall: 40, RiskLevel: RiskLow}},
	}

	got := g.Filter(signals, FilterCriteria{MinScore: 70, MaxRisk: RiskMedium, MinConfidence: 0.7}, nil)
	if len(got) != 1 || got[0].Symbol != "GOOD" {
		t.Errorf("filtered = %v, want only GOOD", symbols(got))
	}

	withCatalyst := g.Filter(signals, FilterCriteria{
		MinScore:          70,
		MaxRisk:           RiskMedium,
		MinConfidence:     0.7,
		RequiredCatalysts: []string{"fda_approval"},
	}, map[string][]string{"GOOD": {"earnings_beat"}})
	if len(withCatalyst) != 0 {
		t.Errorf("catalyst filter kept %v, want none", symbols(withCatalyst))
	}
}

func symbols(signals []TradingSignal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.Symbol
	}
	return out
}

func TestSummarize(t *testing.T) {
	g := newTestGenerator()
	signals := []TradingSignal{
		{Confidence: 0.8, Composite: scoring.CompositeScore{Recommendation: technical.RecStrongBuy, RiskLevel: RiskLow}},
		{Confidence: 0.6, Composite: scoring.CompositeScore{Recommendation: technical.RecBuy, RiskLevel: RiskMedium}},
		{Confidence: 0.4, Composite: scoring.CompositeScore{Recommendation: technical.RecHold, RiskLevel: RiskMedium}},
		{Confidence: 0.2, Composite: scoring.CompositeScore{Recommendation: technical.RecSell, RiskLevel: RiskHigh}},
	}

	got := g.Summarize(signals)
	if got.TotalSignals != 4 {
		t.Errorf("total = %d, want 4", got.TotalSignals)
	}
	if got.StrongBuySignals != 1 || got.BuySignals != 1 || got.HoldSignals != 1 || got.SellSignals != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 1 each",
			got.StrongBuySignals, got.BuySignals, got.HoldSignals, got.SellSignals)
	}
	if math.Abs(got.AvgConfidence-0.5) > 1e-9 {
		t.Errorf("avg confidence = %v, want 0.5", got.AvgConfidence)
	}
	if got.RiskDistribution[RiskMedium] != 2 {
		t.Errorf("medium risk count = %d, want 2", got.RiskDistribution[RiskMedium])
	}

	empty := g.Summarize(nil)
	if empty.TotalSignals != 0 || len(empty.TopSignals) != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestGenerateBatchSortedByScore(t *testing.T) {
	g := newTestGenerator()
	inputs := []models.AnalysisInput{
		{Symbol: "A", Market: models.MarketSnapshot{CurrentPrice: 5, RelativeVolume: 1}},
		{Symbol: "B", Market: models.MarketSnapshot{CurrentPrice: 5, RelativeVolume: 12, PriceChangePercent: 30}},
	}

	got := g.GenerateBatch(inputs)
	if len(got) != 2 {
		t.Fatalf("batch produced %d signals, want 2", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Composite.Overall > got[i-1].Composite.Overall {
			t.Errorf("batch not sorted by score: %v after %v",
				got[i].Composite.Overall, got[i-1].Composite.Overall)
		}
	}
}
