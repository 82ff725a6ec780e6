package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/analysis/technical"
	"github.com/Tracer88/Momentum/models"
)

func newTestEngine() *CompositeScoringEngine {
	return NewCompositeScoringEngine(config.Load())
}

func TestScoreNoMarketDataDefault(t *testing.T) {
	e := newTestEngine()
	got := e.Score("NODATA", models.MarketSnapshot{}, models.FundamentalSummary{}, models.NewsSummary{}, TechnicalInput{})

	if got.Overall != 50 || got.ConfidenceLevel != 0.5 {
		t.Errorf("default score = %v/%v, want 50/0.5", got.Overall, got.ConfidenceLevel)
	}
	if got.Recommendation != technical.RecHold || got.RiskLevel != RiskMedium {
		t.Errorf("default recommendation = %q/%q, want hold/medium", got.Recommendation, got.RiskLevel)
	}
	if got.TimeHorizon != HorizonDayTrade || got.Urgency != UrgencyLow {
		t.Errorf("default horizon/urgency = %q/%q", got.TimeHorizon, got.Urgency)
	}
}

func TestScoreFundamentalIdealSmallCap(t *testing.T) {
	e := newTestEngine()
	f := models.FundamentalSummary{
		FloatShares:          8_000_000,
		SharesOutstanding:    30_000_000,
		MarketCap:            150_000_000,
		Sector:               "Biotechnology",
		ShortInterestPercent: 25,
	}
	market := models.MarketSnapshot{CurrentPrice: 5}

	score, conf := e.scoreFundamental(f, market)
	// 30 float + 20 price + 15 sector + 10 mcap + 10 shares + 15 short
	if score != 100 {
		t.Errorf("score = %v, want 100", score)
	}
	if math.Abs(conf-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", conf)
	}
}

func TestScoreFundamentalMissingDataLowersConfidence(t *testing.T) {
	e := newTestEngine()
	f := models.FundamentalSummary{Sector: "Utilities"}
	market := models.MarketSnapshot{CurrentPrice: 5}

	_, conf := e.scoreFundamental(f, market)
	// Only price (0.2), sector (0.15) and short interest (0.15) contribute.
	if math.Abs(conf-0.5) > 1e-9 {
		t.Errorf("confidence = %v, want 0.5", conf)
	}
}

func TestScoreNewsComponents(t *testing.T) {
	e := newTestEngine()
	recent := time.Now().Add(-30 * time.Minute)
	news := models.NewsSummary{
		AvgSentiment:        1.0,
		SentimentConfidence: 1.0,
		CatalystScore:       100,
		CatalystConfidence:  1.0,
		NewsMomentumScore:   100,
		LatestCatalystTime:  &recent,
	}

	score, conf := e.scoreNews(news)
	// 40 sentiment + 35 catalyst + 15 momentum + 10 recency
	if score != 100 {
		t.Errorf("score = %v, want 100", score)
	}
	if math.Abs(conf-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", conf)
	}

	empty, _ := e.scoreNews(models.NewsSummary{})
	// Neutral sentiment alone contributes 20 points.
	if empty != 20 {
		t.Errorf("empty news score = %v, want 20", empty)
	}
}

func TestScoreMomentumTopTier(t *testing.T) {
	e := newTestEngine()
	market := models.MarketSnapshot{
		RelativeVolume:     12,
		PriceChangePercent: 35,
		GapPercent:         12,
	}
	levels := technical.Levels{Volatility: 0.2}

	score, conf := e.scoreMomentum(market, levels)
	// 40 volume + 30 change (capped) + 20 gap (capped) + 10 volatility
	if score != 100 {
		t.Errorf("score = %v, want 100", score)
	}
	if math.Abs(conf-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", conf)
	}
}

func TestRiskLevelCounting(t *testing.T) {
	e := newTestEngine()

	calm := TechnicalInput{
		Indicators: technical.Indicators{RSI: technical.RSIAnalysis{Value: 55}},
		Levels:     technical.Levels{Volatility: 0.15},
	}
	market := models.MarketSnapshot{CurrentPrice: 5, RelativeVolume: 3}
	if got := e.riskLevel(calm, market, models.NewsSummary{}); got != RiskLow {
		t.Errorf("calm profile risk = %q, want low", got)
	}

	hot := TechnicalInput{
		Indicators: technical.Indicators{RSI: technical.RSIAnalysis{Value: 85}}, // +2
		Levels:     technical.Levels{Volatility: 0.45},                          // +2
	}
	expensive := models.MarketSnapshot{CurrentPrice: 80, RelativeVolume: 3} // +1
	if got := e.riskLevel(hot, expensive, models.NewsSummary{}); got != RiskHigh {
		t.Errorf("hot profile risk = %q, want high", got)
	}

	mixed := TechnicalInput{
		Indicators: technical.Indicators{RSI: technical.RSIAnalysis{Value: 72}}, // +1
		Levels:     technical.Levels{Volatility: 0.3},                           // +1
	}
	if got := e.riskLevel(mixed, market, models.NewsSummary{}); got != RiskMedium {
		t.Errorf("mixed profile risk = %q, want medium", got)
	}
}

func TestRecommendationThresholdsShiftWithRisk(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		name       string
		overall    float64
		risk       string
		confidence float64
		want       string
	}{
		{"low risk strong buy", 80, RiskLow, 1.0, technical.RecStrongBuy},
		{"same score at high risk only buys", 80, RiskHigh, 1.0, technical.RecBuy},
		{"medium risk buy", 72, RiskMedium, 1.0, technical.RecBuy},
		{"hold zone", 50, RiskMedium, 1.0, technical.RecHold},
		{"sell zone", 30, RiskMedium, 1.0, technical.RecSell},
		{"weak but confident score sells", 20, RiskMedium, 1.0, technical.RecSell},
		{"uncertain weak score still sells", 24, RiskMedium, 0.75, technical.RecSell},
		{"strong sell floor", 10, RiskMedium, 1.0, technical.RecStrongSell},
		{"confidence drags score down", 90, RiskLow, 0.5, technical.RecHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.recommendation(tt.overall, tt.risk, tt.confidence); got != tt.want {
				t.Errorf("recommendation = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignalStrengthLabels(t *testing.T) {
	tests := []struct {
		overall    float64
		confidence float64
		want       string
	}{
		{90, 1.0, StrengthVeryStrong},
		{75, 1.0, StrengthStrong},
		{65, 1.0, StrengthModerate},
		{90, 0.5, StrengthWeak},
	}
	for _, tt := range tests {
		if got := signalStrength(tt.overall, tt.confidence); got != tt.want {
			t.Errorf("signalStrength(%v, %v) = %q, want %q", tt.overall, tt.confidence, got, tt.want)
		}
	}
}

func TestEntryExitPointsWithLevels(t *testing.T) {
	e := newTestEngine()
	market := models.MarketSnapshot{CurrentPrice: 10}
	levels := technical.Levels{
		NearestSupport:    &technical.Level{Price: 9.5},
		NearestResistance: &technical.Level{Price: 12},
	}

	entry, stop, target := e.entryExitPoints(market, levels, RiskMedium)
	if math.Abs(entry-10.1) > 1e-9 {
		t.Errorf("entry = %v, want 10.10", entry)
	}
	if math.Abs(stop-9.5*0.98) > 1e-9 {
		t.Errorf("stop = %v, want 2%% below support", stop)
	}
	if math.Abs(target-12*0.98) > 1e-9 {
		t.Errorf("target = %v, want 2%% below resistance", target)
	}
}

func TestEntryExitPointsWithoutLevels(t *testing.T) {
	e := newTestEngine()
	market := models.MarketSnapshot{CurrentPrice: 10}

	entry, stop, target := e.entryExitPoints(market, technical.Levels{}, RiskMedium)
	if math.Abs(stop-9.2) > 1e-9 {
		t.Errorf("stop = %v, want 8%% below price at medium risk", stop)
	}
	wantTarget := entry + (entry-stop)*2
	if math.Abs(target-wantTarget) > 1e-9 {
		t.Errorf("target = %v, want 2R at %v", target, wantTarget)
	}

	_, stopHigh, _ := e.entryExitPoints(market, technical.Levels{}, RiskHigh)
	if math.Abs(stopHigh-9.0) > 1e-9 {
		t.Errorf("high-risk stop = %v, want 10%% below price", stopHigh)
	}
}

func TestTimeHorizonLadder(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		name    string
		levels  technical.Levels
		market  models.MarketSnapshot
		news    models.NewsSummary
		overall float64
		want    string
	}{
		{"volatile and liquid scalps", technical.Levels{Volatility: 0.4}, models.MarketSnapshot{RelativeVolume: 6}, models.NewsSummary{}, 60, HorizonScalp},
		{"urgent catalyst day trades", technical.Levels{}, models.MarketSnapshot{}, models.NewsSummary{UrgencyLevel: "urgent"}, 80, HorizonDayTrade},
		{"good score swings", technical.Levels{}, models.MarketSnapshot{}, models.NewsSummary{}, 72, HorizonSwing},
		{"otherwise position", technical.Levels{}, models.MarketSnapshot{}, models.NewsSummary{}, 50, HorizonPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.timeHorizon(tt.levels, tt.market, tt.news, tt.overall); got != tt.want {
				t.Errorf("timeHorizon = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUrgencyLadder(t *testing.T) {
	e := newTestEngine()

	quiet := e.urgency(models.NewsSummary{}, TechnicalInput{Indicators: technical.Indicators{RSI: technical.RSIAnalysis{Value: 50}}}, models.MarketSnapshot{RelativeVolume: 1}, 50)
	if quiet != UrgencyLow {
		t.Errorf("quiet urgency = %q, want low", quiet)
	}

	// urgent news (+3), high volume (+2), high score (+2)
	loud := e.urgency(
		models.NewsSummary{UrgencyLevel: "urgent"},
		TechnicalInput{Indicators: technical.Indicators{RSI: technical.RSIAnalysis{Value: 80}}},
		models.MarketSnapshot{RelativeVolume: 8},
		90,
	)
	if loud != UrgencyImmediate {
		t.Errorf("loud urgency = %q, want immediate", loud)
	}
}

func TestScoreEndToEndRunner(t *testing.T) {
	e := newTestEngine()
	market := models.MarketSnapshot{
		CurrentPrice:       3.84,
		RelativeVolume:     47.56,
		PriceChangePercent: 135.58,
		GapPercent:         18,
	}
	fundamental := models.FundamentalSummary{
		FloatShares:          1_300_000,
		SharesOutstanding:    4_000_000,
		MarketCap:            15_000_000,
		Sector:               "Biotechnology",
		ShortInterestPercent: 22,
	}
	recent := time.Now().Add(-20 * time.Minute)
	news := models.NewsSummary{
		AvgSentiment:        0.675,
		SentimentConfidence: 0.9,
		CatalystDetected:    true,
		CatalystScore:       90,
		CatalystConfidence:  0.9,
		CatalystTypes:       []string{"fda_approval"},
		NewsMomentumScore:   85,
		LatestCatalystTime:  &recent,
		UrgencyLevel:        "urgent",
		TotalArticles:       12,
	}
	tech := TechnicalInput{
		Indicators: technical.Indicators{
			MACD: technical.MACDAnalysis{Line: 0.5, Signal: 0.3, Histogram: 0.2},
			EMA:  technical.EMAAnalysis{EMA9: 3.5, EMA20: 3.2},
			RSI:  technical.RSIAnalysis{Value: 55},
		},
		Levels: technical.Levels{Volatility: 0.2},
	}

	got := e.Score("RUNR", market, fundamental, news, tech)
	if got.Recommendation != technical.RecStrongBuy && got.Recommendation != technical.RecBuy {
		t.Errorf("recommendation = %q, want buy or strong_buy (overall %v, confidence %v)",
			got.Recommendation, got.Overall, got.ConfidenceLevel)
	}
	if got.Overall < 75 {
		t.Errorf("overall = %v, want at least 75", got.Overall)
	}
	if got.EntryPrice <= market.CurrentPrice {
		t.Errorf("entry %v not above current price", got.EntryPrice)
	}
}

func TestScoreLargeCapDrifter(t *testing.T) {
	e := newTestEngine()
	market := models.MarketSnapshot{
		CurrentPrice:       185.50,
		RelativeVolume:     0.8,
		PriceChangePercent: 1.2,
	}
	fundamental := models.FundamentalSummary{FloatShares: 15_000_000_000}
	news := models.NewsSummary{CatalystDetected: false}

	got := e.Score("MEGA", market, fundamental, news, TechnicalInput{})

	if got.Recommendation != technical.RecHold && got.Recommendation != technical.RecSell {
		t.Errorf("recommendation = %q, want hold or sell (overall %v, confidence %v, risk %q)",
			got.Recommendation, got.Overall, got.ConfidenceLevel, got.RiskLevel)
	}
	if got.Overall >= 50 {
		t.Errorf("overall = %v, want below 50 for a driftless large cap", got.Overall)
	}
}
