package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/analysis/pattern"
	"github.com/Tracer88/Momentum/internal/analysis/technical"
	"github.com/Tracer88/Momentum/models"
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Signal strength labels.
const (
	StrengthVeryStrong = "very_strong"
	StrengthStrong     = "strong"
	StrengthModerate   = "moderate"
	StrengthWeak       = "weak"
)

// Time horizons.
const (
	HorizonScalp    = "scalp"
	HorizonDayTrade = "day_trade"
	HorizonSwing    = "swing"
	HorizonPosition = "position"
)

// Urgency levels.
const (
	UrgencyImmediate = "immediate"
	UrgencyHigh      = "high"
	UrgencyMedium    = "medium"
	UrgencyLow       = "low"
)

// Sectors favored by the fundamental rubric.
var targetSectors = []string{"healthcare", "biotechnology", "technology", "crypto", "ai"}

// ComponentScore is one weighted component of the composite.
type ComponentScore struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`      // 0-100
	Weight     float64 `json:"weight"`     // 0-1
	Confidence float64 `json:"confidence"` // 0-1
}

// CompositeScore is the full multi-factor assessment of a symbol.
type CompositeScore struct {
	Symbol          string           `json:"symbol"`
	Overall         float64          `json:"overall"` // 0-100
	Components      []ComponentScore `json:"components"`
	ConfidenceLevel float64          `json:"confidence_level"` // 0-1
	RiskLevel       string           `json:"risk_level"`
	SignalStrength  string           `json:"signal_strength"`
	Recommendation  string           `json:"recommendation"`
	EntryPrice      float64          `json:"entry_price,omitempty"`
	StopLoss        float64          `json:"stop_loss,omitempty"`
	TakeProfit      float64          `json:"take_profit,omitempty"`
	TimeHorizon     string           `json:"time_horizon"`
	Urgency         string           `json:"urgency"`
}

// TechnicalInput bundles the indicator, level and pattern outputs the
// composite consumes.
type TechnicalInput struct {
	Indicators technical.Indicators
	Levels     technical.Levels
	Patterns   pattern.Analysis
}

// CompositeScoringEngine folds fundamental, technical, news and momentum
// components into a single weighted score with trade levels attached.
type CompositeScoringEngine struct {
	weightFundamental float64
	weightTechnical   float64
	weightNews        float64
	weightMomentum    float64
	logger            zerolog.Logger
}

// NewCompositeScoringEngine builds an engine from config.
func NewCompositeScoringEngine(cfg *config.Config) *CompositeScoringEngine {
	return &CompositeScoringEngine{
		weightFundamental: cfg.WeightFundamental,
		weightTechnical:   cfg.WeightTechnical,
		weightNews:        cfg.WeightNews,
		weightMomentum:    cfg.WeightMomentum,
		logger:            log.With().Str("component", "composite_scorer").Logger(),
	}
}

// Score computes the composite for a symbol. A snapshot without a price
// yields the neutral default (hold, 50) rather than an error.
func (e *CompositeScoringEngine) Score(symbol string, market models.MarketSnapshot, fundamental models.FundamentalSummary, news models.NewsSummary, tech TechnicalInput) CompositeScore {
	if market.CurrentPrice <= 0 {
		e.logger.Warn().Str("symbol", symbol).Msg("no market data, returning default composite score")
		return defaultCompositeScore(symbol)
	}

	fundScore, fundConf := e.scoreFundamental(fundamental, market)
	techScore, techConf := e.scoreTechnical(tech, market)
	newsScore, newsConf := e.scoreNews(news)
	momScore, momConf := e.scoreMomentum(market, tech.Levels)

	components := []ComponentScore{
		{Name: "fundamental", Score: fundScore, Weight: e.weightFundamental, Confidence: fundConf},
		{Name: "technical", Score: techScore, Weight: e.weightTechnical, Confidence: techConf},
		{Name: "news", Score: newsScore, Weight: e.weightNews, Confidence: newsConf},
		{Name: "momentum", Score: momScore, Weight: e.weightMomentum, Confidence: momConf},
	}

	overall := 0.0
	confidence := 0.0
	for _, c := range components {
		overall += c.Score * c.Weight
		confidence += c.Confidence
	}
	confidence /= float64(len(components))

	risk := e.riskLevel(tech, market, news)
	entry, stop, target := e.entryExitPoints(market, tech.Levels, risk)

	result := CompositeScore{
		Symbol:          symbol,
		Overall:         overall,
		Components:      components,
		ConfidenceLevel: confidence,
		RiskLevel:       risk,
		SignalStrength:  signalStrength(overall, confidence),
		Recommendation:  e.recommendation(overall, risk, confidence),
		EntryPrice:      entry,
		StopLoss:        stop,
		TakeProfit:      target,
		TimeHorizon:     e.timeHorizon(tech.Levels, market, news, overall),
		Urgency:         e.urgency(news, tech, market, overall),
	}

	e.logger.Debug().
		Str("symbol", symbol).
		Float64("overall", overall).
		Str("recommendation", result.Recommendation).
		Msg("composite score computed")

	return result
}

func defaultCompositeScore(symbol string) CompositeScore {
	return CompositeScore{
		Symbol:          symbol,
		Overall:         50,
		Components:      []ComponentScore{},
		ConfidenceLevel: 0.5,
		RiskLevel:       RiskMedium,
		SignalStrength:  StrengthWeak,
		Recommendation:  technical.RecHold,
		TimeHorizon:     HorizonDayTrade,
		Urgency:         UrgencyLow,
	}
}

// scoreFundamental awards up to 100 points across float, price range,
// sector, market cap, share count and short interest. Confidence grows
// with the fields that were actually present.
func (e *CompositeScoringEngine) scoreFundamental(f models.FundamentalSummary, market models.MarketSnapshot) (float64, float64) {
	score, confidence := 0.0, 0.0

	if f.FloatShares > 0 {
		switch {
		case f.FloatShares <= 10_000_000:
			score += 30
		case f.FloatShares <= 20_000_000:
			score += 25
		case f.FloatShares <= 50_000_000:
			score += 15
		default:
			score += 5
		}
		confidence += 0.3
	}

	if market.CurrentPrice > 0 {
		switch {
		case market.CurrentPrice >= 2 && market.CurrentPrice <= 10:
			score += 20
		case market.CurrentPrice >= 1 && market.CurrentPrice <= 20:
			score += 15
		case market.CurrentPrice <= 50:
			score += 10
		}
		confidence += 0.2
	}

	sector := strings.ToLower(f.Sector)
	sectorScore := 8.0
	for _, target := range targetSectors {
		if strings.Contains(sector, target) {
			sectorScore = 15
			break
		}
	}
	score += sectorScore
	confidence += 0.15

	if f.MarketCap > 0 {
		switch {
		case f.MarketCap <= 300_000_000:
			score += 10
		case f.MarketCap <= 2_000_000_000:
			score += 7
		default:
			score += 3
		}
		confidence += 0.1
	}

	if f.SharesOutstanding > 0 {
		switch {
		case f.SharesOutstanding <= 50_000_000:
			score += 10
		case f.SharesOutstanding <= 100_000_000:
			score += 7
		default:
			score += 3
		}
		confidence += 0.1
	}

	switch {
	case f.ShortInterestPercent >= 20:
		score += 15
	case f.ShortInterestPercent >= 10:
		score += 10
	case f.ShortInterestPercent >= 5:
		score += 5
	default:
		score += 2
	}
	confidence += 0.15

	return math.Min(100, score), math.Min(1.0, confidence)
}

// scoreTechnical awards up to 100 points across MACD, EMA alignment, RSI,
// support/resistance position, pattern count and volume confirmation.
func (e *CompositeScoringEngine) scoreTechnical(tech TechnicalInput, market models.MarketSnapshot) (float64, float64) {
	score, confidence := 0.0, 0.0
	price := market.CurrentPrice
	ind := tech.Indicators

	switch {
	case ind.MACD.Line > ind.MACD.Signal && ind.MACD.Histogram > 0:
		score += 25
	case ind.MACD.Line > ind.MACD.Signal:
		score += 15
	case ind.MACD.Histogram > 0:
		score += 10
	}
	confidence += 0.25

	switch {
	case price > ind.EMA.EMA9 && ind.EMA.EMA9 > ind.EMA.EMA20:
		score += 20
	case price > ind.EMA.EMA9:
		score += 15
	case price > ind.EMA.EMA20:
		score += 10
	}
	confidence += 0.2

	rsi := ind.RSI.Value
	switch {
	case rsi >= 40 && rsi <= 60:
		score += 15
	case rsi >= 30 && rsi <= 70:
		score += 12
	case rsi > 70:
		score += 8
	case rsi < 30:
		score += 10
	default:
		score += 5
	}
	confidence += 0.15

	score += e.supportResistanceScore(tech.Levels, price)
	confidence += 0.15

	patternScore := float64(tech.Patterns.BullishCount()) * 5
	score += math.Min(15, patternScore)
	confidence += 0.15

	switch {
	case market.RelativeVolume >= 3.0:
		score += 10
	case market.RelativeVolume >= 2.0:
		score += 8
	case market.RelativeVolume >= 1.5:
		score += 5
	}
	confidence += 0.1

	return math.Min(100, score), math.Min(1.0, confidence)
}

// supportResistanceScore favors entries near support or with room below
// resistance; without levels it stays neutral.
func (e *CompositeScoringEngine) supportResistanceScore(levels technical.Levels, price float64) float64 {
	if levels.NearestSupport == nil && levels.NearestResistance == nil {
		return 8
	}

	if levels.NearestSupport != nil && price > 0 {
		if (price-levels.NearestSupport.Price)/price <= 0.02 {
			return 15
		}
	}
	if levels.NearestResistance != nil && price > 0 {
		if (levels.NearestResistance.Price-price)/price >= 0.05 {
			return 12
		}
	}
	return 8
}

// scoreNews converts the pre-computed sentiment, catalyst and momentum
// digests into up to 100 points with a recency bonus.
func (e *CompositeScoringEngine) scoreNews(news models.NewsSummary) (float64, float64) {
	score := 0.0

	score += (news.AvgSentiment + 1) * 20
	confidence := news.SentimentConfidence * 0.4

	score += (news.CatalystScore / 100) * 35
	confidence += news.CatalystConfidence * 0.35

	score += (news.NewsMomentumScore / 100) * 15
	confidence += 0.15

	if news.LatestCatalystTime != nil {
		hours := time.Since(*news.LatestCatalystTime).Hours()
		switch {
		case hours <= 1:
			score += 10
		case hours <= 6:
			score += 7
		case hours <= 24:
			score += 4
		default:
			score += 1
		}
	}
	confidence += 0.1

	return math.Min(100, score), math.Min(1.0, confidence)
}

// scoreMomentum awards up to 100 points across relative volume, price
// change, gap and volatility, with bonuses for upward moves.
func (e *CompositeScoringEngine) scoreMomentum(market models.MarketSnapshot, levels technical.Levels) (float64, float64) {
	score := 0.0

	switch {
	case market.RelativeVolume >= 10.0:
		score += 40
	case market.RelativeVolume >= 5.0:
		score += 35
	case market.RelativeVolume >= 3.0:
		score += 30
	case market.RelativeVolume >= 2.0:
		score += 20
	case market.RelativeVolume >= 1.5:
		score += 10
	}
	confidence := 0.4

	change := math.Abs(market.PriceChangePercent)
	changeScore := 0.0
	switch {
	case change >= 20:
		changeScore = 30
	case change >= 10:
		changeScore = 25
	case change >= 5:
		changeScore = 20
	case change >= 2:
		changeScore = 10
	}
	if market.PriceChangePercent > 0 {
		changeScore *= 1.2
	}
	score += math.Min(30, changeScore)
	confidence += 0.3

	gap := math.Abs(market.GapPercent)
	gapScore := 0.0
	switch {
	case gap >= 10:
		gapScore = 20
	case gap >= 5:
		gapScore = 15
	case gap >= 2:
		gapScore = 10
	}
	if market.GapPercent > 0 {
		gapScore *= 1.1
	}
	score += math.Min(20, gapScore)
	confidence += 0.2

	vol := levels.Volatility
	switch {
	case vol >= 0.1 && vol <= 0.3:
		score += 10
	case vol >= 0.05 && vol <= 0.5:
		score += 7
	default:
		score += 3
	}
	confidence += 0.1

	return math.Min(100, score), math.Min(1.0, confidence)
}

// riskLevel counts risk factors across RSI, volume, volatility, news and
// price; 0-1 is low, 2-3 medium, 4+ high.
func (e *CompositeScoringEngine) riskLevel(tech TechnicalInput, market models.MarketSnapshot, news models.NewsSummary) string {
	factors := 0

	rsi := tech.Indicators.RSI.Value
	if rsi > 80 {
		factors += 2
	} else if rsi > 70 {
		factors++
	}

	if market.RelativeVolume < 1.5 {
		factors++
	}

	vol := tech.Levels.Volatility
	if vol > 0.4 {
		factors += 2
	} else if vol > 0.25 {
		factors++
	}

	if news.TotalArticles > 0 && float64(news.NegativeArticles)/float64(news.TotalArticles) > 0.3 {
		factors++
	}

	if market.CurrentPrice > 50 {
		factors++
	}

	switch {
	case factors >= 4:
		return RiskHigh
	case factors >= 2:
		return RiskMedium
	default:
		return RiskLow
	}
}

func signalStrength(overall, confidence float64) string {
	adjusted := overall * confidence
	switch {
	case adjusted >= 80:
		return StrengthVeryStrong
	case adjusted >= 70:
		return StrengthStrong
	case adjusted >= 60:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// recommendation applies risk-adjusted buy/sell thresholds to the
// confidence-adjusted score.
func (e *CompositeScoringEngine) recommendation(overall float64, risk string, confidence float64) string {
	adjusted := overall * confidence

	var strongBuy, buy, sell float64
	switch risk {
	case RiskLow:
		strongBuy, buy, sell = 75, 65, 35
	case RiskMedium:
		strongBuy, buy, sell = 80, 70, 40
	default:
		strongBuy, buy, sell = 85, 75, 45
	}

	// Confidence drag can pull an unremarkable score well below the sell
	// line; strong_sell is reserved for scores weak outright, not merely
	// uncertain.
	switch {
	case adjusted >= strongBuy:
		return technical.RecStrongBuy
	case adjusted >= buy:
		return technical.RecBuy
	case adjusted >= sell:
		return technical.RecHold
	case adjusted >= 15:
		return technical.RecSell
	default:
		return technical.RecStrongSell
	}
}

// entryExitPoints derives entry, stop and target from the current price,
// the nearest levels and the risk regime.
func (e *CompositeScoringEngine) entryExitPoints(market models.MarketSnapshot, levels technical.Levels, risk string) (entry, stop, target float64) {
	price := market.CurrentPrice
	if price <= 0 {
		return 0, 0, 0
	}

	entry = price * 1.01

	if levels.NearestSupport != nil {
		stop = levels.NearestSupport.Price * 0.98
	} else {
		switch risk {
		case RiskLow:
			stop = price * 0.95
		case RiskMedium:
			stop = price * 0.92
		default:
			stop = price * 0.90
		}
	}

	if levels.NearestResistance != nil {
		target = levels.NearestResistance.Price * 0.98
	} else {
		target = entry + (entry-stop)*2
	}

	return entry, stop, target
}

func (e *CompositeScoringEngine) timeHorizon(levels technical.Levels, market models.MarketSnapshot, news models.NewsSummary, overall float64) string {
	if levels.Volatility > 0.3 && market.RelativeVolume > 5.0 {
		return HorizonScalp
	}
	if (news.UrgencyLevel == "urgent" || news.UrgencyLevel == UrgencyHigh) && overall > 75 {
		return HorizonDayTrade
	}
	if overall > 70 {
		return HorizonSwing
	}
	return HorizonPosition
}

func (e *CompositeScoringEngine) urgency(news models.NewsSummary, tech TechnicalInput, market models.MarketSnapshot, overall float64) string {
	factors := 0

	switch news.UrgencyLevel {
	case "urgent":
		factors += 3
	case UrgencyHigh:
		factors += 2
	case UrgencyMedium:
		factors++
	}

	if tech.Indicators.RSI.Value > 75 {
		factors++
	}

	if market.RelativeVolume > 5.0 {
		factors += 2
	} else if market.RelativeVolume > 3.0 {
		factors++
	}

	if overall > 85 {
		factors += 2
	} else if overall > 75 {
		factors++
	}

	switch {
	case factors >= 5:
		return UrgencyImmediate
	case factors >= 3:
		return UrgencyHigh
	case factors >= 1:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
