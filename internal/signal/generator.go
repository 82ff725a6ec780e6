package signal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/analysis/pattern"
	"github.com/Tracer88/Momentum/internal/analysis/scoring"
	"github.com/Tracer88/Momentum/internal/analysis/technical"
	"github.com/Tracer88/Momentum/models"
)

// TradingSignal is the complete output for one symbol: scores, trade levels,
// sizing and the human-readable alert trail.
type TradingSignal struct {
	Symbol    string    `json:"symbol"`
	SignalID  string    `json:"signal_id"`
	Timestamp time.Time `json:"timestamp"`

	Composite scoring.CompositeScore `json:"composite"`
	Ross      scoring.RossScore      `json:"ross"`
	Patterns  pattern.Analysis       `json:"patterns"`

	SignalType     string  `json:"signal_type"`
	SignalStrength string  `json:"signal_strength"`
	Confidence     float64 `json:"confidence"`

	EntryPrice      float64  `json:"entry_price,omitempty"`
	StopLoss        float64  `json:"stop_loss,omitempty"`
	TakeProfit      float64  `json:"take_profit,omitempty"`
	PositionSize    *float64 `json:"position_size,omitempty"`
	RiskRewardRatio *float64 `json:"risk_reward_ratio,omitempty"`

	TimeHorizon string     `json:"time_horizon"`
	Urgency     string     `json:"urgency"`
	ExpiryTime  *time.Time `json:"expiry_time,omitempty"`

	Alerts       []string `json:"alerts"`
	RiskWarnings []string `json:"risk_warnings"`
	Notes        string   `json:"notes"`
}

// Summary aggregates a batch of signals.
type Summary struct {
	TotalSignals     int             `json:"total_signals"`
	StrongBuySignals int             `json:"strong_buy_signals"`
	BuySignals       int             `json:"buy_signals"`
	HoldSignals      int             `json:"hold_signals"`
	SellSignals      int             `json:"sell_signals"`
	AvgConfidence    float64         `json:"avg_confidence"`
	TopSignals       []TradingSignal `json:"top_signals"`
	RiskDistribution map[string]int  `json:"risk_distribution"`
}

// FilterCriteria narrows a batch of signals.
type FilterCriteria struct {
	MinScore          float64
	MaxRisk           string
	MinConfidence     float64
	RequiredCatalysts []string
}

// Generator runs the full analysis pipeline for a symbol and assembles the
// resulting trading signal.
type Generator struct {
	patterns   *pattern.ABCDPatternMatcher
	indicators *technical.TechnicalIndicatorEngine
	levels     *technical.SupportResistanceCalculator
	ross       *scoring.RossCameronPillarScorer
	composite  *scoring.CompositeScoringEngine

	accountRisk    float64
	maxPositionPct float64
	rossMinScore   float64
	rossMinPillars int
	logger         zerolog.Logger
}

// NewGenerator builds a generator and its component pipeline from config.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{
		patterns:       pattern.NewABCDPatternMatcher(cfg),
		indicators:     technical.NewTechnicalIndicatorEngine(cfg),
		levels:         technical.NewSupportResistanceCalculator(cfg),
		ross:           scoring.NewRossCameronPillarScorer(cfg),
		composite:      scoring.NewCompositeScoringEngine(cfg),
		accountRisk:    cfg.AccountRiskPercent,
		maxPositionPct: cfg.MaxPositionPercent,
		rossMinScore:   cfg.RossMinOverallScore,
		rossMinPillars: cfg.RossMinPillarsPassing,
		logger:         log.With().Str("component", "signal_generator").Logger(),
	}
}

// Generate produces a complete trading signal for one symbol. It never
// fails: with unusable input it returns a neutral hold signal carrying an
// explanatory note.
func (g *Generator) Generate(input models.AnalysisInput) TradingSignal {
	now := time.Now()

	if input.Market.CurrentPrice <= 0 && len(input.Candles) == 0 {
		g.logger.Warn().Str("symbol", input.Symbol).Msg("no usable data, returning default signal")
		return g.defaultSignal(input.Symbol, now)
	}

	patterns := g.patterns.Detect(input.Candles)
	indicators := g.indicators.Analyze(input.Candles)
	levels := g.levels.Calculate(input.Candles)

	tech := scoring.TechnicalInput{
		Indicators: indicators,
		Levels:     levels,
		Patterns:   patterns,
	}

	composite := g.composite.Score(input.Symbol, input.Market, input.Fundamental, input.News, tech)
	ross := g.ross.Score(input.Symbol, input.Market, input.Fundamental, input.News)

	sig := TradingSignal{
		Symbol:         input.Symbol,
		SignalID:       fmt.Sprintf("%s_%s", input.Symbol, now.Format("20060102_150405")),
		Timestamp:      now,
		Composite:      composite,
		Ross:           ross,
		Patterns:       patterns,
		SignalType:     signalType(composite.Overall),
		SignalStrength: composite.SignalStrength,
		Confidence:     composite.ConfidenceLevel,
		EntryPrice:     composite.EntryPrice,
		StopLoss:       composite.StopLoss,
		TakeProfit:     composite.TakeProfit,
		TimeHorizon:    composite.TimeHorizon,
		Urgency:        composite.Urgency,
	}

	sig.RiskRewardRatio = riskRewardRatio(composite.EntryPrice, composite.StopLoss, composite.TakeProfit)
	sig.PositionSize = g.positionSize(composite, input.Portfolio)
	sig.ExpiryTime = expiryTime(now, composite.TimeHorizon)
	sig.Alerts = g.alerts(composite, ross, input.Market, input.News)
	sig.RiskWarnings = g.riskWarnings(composite, indicators, levels, input.Market)
	sig.Notes = analysisNotes(composite, ross)

	g.logger.Info().
		Str("symbol", input.Symbol).
		Str("type", sig.SignalType).
		Float64("score", composite.Overall).
		Str("grade", ross.Grade).
		Msg("signal generated")

	return sig
}

// GenerateBatch produces signals for every input, sorted by overall score.
// Inputs that produce only default signals are still included.
func (g *Generator) GenerateBatch(inputs []models.AnalysisInput) []TradingSignal {
	signals := make([]TradingSignal, 0, len(inputs))
	for _, input := range inputs {
		signals = append(signals, g.Generate(input))
	}
	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Composite.Overall > signals[j].Composite.Overall
	})
	return signals
}

// Summarize aggregates counts, average confidence, the top ten signals and
// the risk distribution of a batch.
func (g *Generator) Summarize(signals []TradingSignal) Summary {
	summary := Summary{
		TopSignals:       []TradingSignal{},
		RiskDistribution: map[string]int{},
	}
	if len(signals) == 0 {
		return summary
	}

	totalConfidence := 0.0
	for _, s := range signals {
		switch s.Composite.Recommendation {
		case technical.RecStrongBuy:
			summary.StrongBuySignals++
		case technical.RecBuy:
			summary.BuySignals++
		case technical.RecHold:
			summary.HoldSignals++
		case technical.RecSell, technical.RecStrongSell:
			summary.SellSignals++
		}
		summary.RiskDistribution[s.Composite.RiskLevel]++
		totalConfidence += s.Confidence
	}

	summary.TotalSignals = len(signals)
	summary.AvgConfidence = totalConfidence / float64(len(signals))

	top := len(signals)
	if top > 10 {
		top = 10
	}
	summary.TopSignals = signals[:top]

	return summary
}

// Filter keeps signals meeting the score, risk, confidence and catalyst
// criteria. A zero-valued criteria field disables that check.
func (g *Generator) Filter(signals []TradingSignal, criteria FilterCriteria, catalystsBySymbol map[string][]string) []TradingSignal {
	riskOrder := map[string]int{RiskLow: 1, RiskMedium: 2, RiskHigh: 3}
	maxRisk, ok := riskOrder[criteria.MaxRisk]
	if !ok {
		maxRisk = 2
	}

	filtered := make([]TradingSignal, 0, len(signals))
	for _, s := range signals {
		if s.Composite.Overall < criteria.MinScore {
			continue
		}
		risk, ok := riskOrder[s.Composite.RiskLevel]
		if !ok {
			risk = 2
		}
		if risk > maxRisk {
			continue
		}
		if s.Confidence < criteria.MinConfidence {
			continue
		}
		if len(criteria.RequiredCatalysts) > 0 {
			if !hasAnyCatalyst(catalystsBySymbol[s.Symbol], criteria.RequiredCatalysts) {
				continue
			}
		}
		filtered = append(filtered, s)
	}

	g.logger.Info().Int("in", len(signals)).Int("out", len(filtered)).Msg("signals filtered")
	return filtered
}

// Risk level aliases, shared with the scoring package.
const (
	RiskLow    = scoring.RiskLow
	RiskMedium = scoring.RiskMedium
	RiskHigh   = scoring.RiskHigh
)

func hasAnyCatalyst(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// RossCameronSignals keeps signals passing the overall pillar score bar and
// at least rossMinPillars of the five individual pillar bars, sorted by
// pillar score.
func (g *Generator) RossCameronSignals(signals []TradingSignal) []TradingSignal {
	passed := make([]TradingSignal, 0)
	for _, s := range signals {
		if s.Ross.Overall < g.rossMinScore {
			continue
		}

		pillars := 0
		if s.Ross.VolumePillar >= 80 {
			pillars++
		}
		if s.Ross.PriceChangePillar >= 70 {
			pillars++
		}
		if s.Ross.FloatPillar >= 80 {
			pillars++
		}
		if s.Ross.CatalystPillar >= 70 {
			pillars++
		}
		if s.Ross.PriceRangePillar >= 80 {
			pillars++
		}

		if pillars >= g.rossMinPillars {
			passed = append(passed, s)
		}
	}

	sort.Slice(passed, func(i, j int) bool {
		return passed[i].Ross.Overall > passed[j].Ross.Overall
	})
	return passed
}

func signalType(overall float64) string {
	switch {
	case overall >= 80:
		return technical.RecStrongBuy
	case overall >= 65:
		return technical.RecBuy
	case overall >= 45:
		return technical.RecHold
	case overall >= 30:
		return technical.RecSell
	default:
		return technical.RecStrongSell
	}
}

// riskRewardRatio returns reward over risk, or nil when the stop sits at or
// above the entry.
func riskRewardRatio(entry, stop, target float64) *float64 {
	if entry <= 0 || stop <= 0 || target <= 0 {
		return nil
	}
	risk := entry - stop
	if risk <= 0 {
		return nil
	}
	ratio := (target - entry) / risk
	return &ratio
}

// positionSize computes shares from the 2% account-risk rule, scaled by
// signal quality and risk level, capped at 10% of account value. Without
// portfolio data it returns nil.
func (g *Generator) positionSize(composite scoring.CompositeScore, portfolio *models.PortfolioSnapshot) *float64 {
	if portfolio == nil || portfolio.AccountValue <= 0 {
		return nil
	}
	if composite.EntryPrice <= 0 || composite.StopLoss <= 0 {
		return nil
	}

	riskPerTrade := g.accountRisk
	if composite.ConfidenceLevel > 0.8 && composite.Overall > 85 {
		riskPerTrade *= 1.5
	} else if composite.ConfidenceLevel < 0.6 {
		riskPerTrade *= 0.5
	}

	switch composite.RiskLevel {
	case RiskHigh:
		riskPerTrade *= 0.5
	case RiskLow:
		riskPerTrade *= 1.2
	}

	riskPerShare := composite.EntryPrice - composite.StopLoss
	if riskPerShare <= 0 {
		return nil
	}

	size := portfolio.AccountValue * riskPerTrade / riskPerShare
	maxShares := portfolio.AccountValue * g.maxPositionPct / composite.EntryPrice
	size = math.Min(size, maxShares)
	return &size
}

func expiryTime(now time.Time, horizon string) *time.Time {
	var expiry time.Time
	switch horizon {
	case scoring.HorizonScalp:
		expiry = now.Add(30 * time.Minute)
	case scoring.HorizonDayTrade:
		expiry = now.Add(6 * time.Hour)
	case scoring.HorizonSwing:
		expiry = now.Add(5 * 24 * time.Hour)
	case scoring.HorizonPosition:
		expiry = now.Add(30 * 24 * time.Hour)
	default:
		expiry = now.Add(24 * time.Hour)
	}
	return &expiry
}

// alerts builds the ordered alert list for notable setups.
func (g *Generator) alerts(composite scoring.CompositeScore, ross scoring.RossScore, market models.MarketSnapshot, news models.NewsSummary) []string {
	alerts := []string{}

	if composite.Overall >= 90 {
		alerts = append(alerts, "EXCEPTIONAL SETUP - Very high composite score!")
	} else if composite.Overall >= 80 {
		alerts = append(alerts, "STRONG SETUP - High composite score")
	}

	if ross.Overall >= 90 {
		alerts = append(alerts, "PERFECT MOMENTUM SETUP - All pillars strong!")
	} else if ross.Grade == "A+" || ross.Grade == "A" {
		alerts = append(alerts, fmt.Sprintf("EXCELLENT MOMENTUM SETUP - Grade: %s", ross.Grade))
	}

	if market.RelativeVolume >= 10 {
		alerts = append(alerts, fmt.Sprintf("MASSIVE VOLUME - %.1fx average!", market.RelativeVolume))
	} else if market.RelativeVolume >= 5 {
		alerts = append(alerts, fmt.Sprintf("HIGH VOLUME - %.1fx average", market.RelativeVolume))
	}

	if math.Abs(market.PriceChangePercent) >= 20 {
		alerts = append(alerts, fmt.Sprintf("MAJOR MOVE - %+.1f%% price change!", market.PriceChangePercent))
	} else if math.Abs(market.PriceChangePercent) >= 10 {
		alerts = append(alerts, fmt.Sprintf("SIGNIFICANT MOVE - %+.1f%% price change", market.PriceChangePercent))
	}

	if news.HasHighImpactCatalyst() {
		alerts = append(alerts, "HIGH-IMPACT CATALYST DETECTED")
	}

	if composite.Urgency == scoring.UrgencyImmediate {
		alerts = append(alerts, "IMMEDIATE ACTION REQUIRED")
	} else if composite.Urgency == scoring.UrgencyHigh {
		alerts = append(alerts, "HIGH URGENCY - Act soon")
	}

	return alerts
}

// riskWarnings builds the ordered risk-warning list.
func (g *Generator) riskWarnings(composite scoring.CompositeScore, indicators technical.Indicators, levels technical.Levels, market models.MarketSnapshot) []string {
	warnings := []string{}

	if composite.RiskLevel == RiskHigh {
		warnings = append(warnings, "HIGH RISK TRADE - Use smaller position size")
	}

	if indicators.RSI.Value > 80 {
		warnings = append(warnings, "HIGHLY OVERBOUGHT - Risk of pullback")
	} else if indicators.RSI.Value > 70 {
		warnings = append(warnings, "OVERBOUGHT CONDITIONS - Monitor closely")
	}

	if composite.ConfidenceLevel < 0.6 {
		warnings = append(warnings, "LOW CONFIDENCE SIGNAL - Consider waiting")
	}

	if levels.Volatility > 0.4 {
		warnings = append(warnings, "HIGH VOLATILITY - Expect large price swings")
	}

	if market.CurrentPrice > 50 {
		warnings = append(warnings, "HIGH PRICE STOCK - Increased risk")
	}

	if math.Abs(market.GapPercent) > 15 {
		warnings = append(warnings, "LARGE GAP - Risk of gap fill")
	}

	return warnings
}

// analysisNotes renders a readable breakdown of the score components and
// trade levels.
func analysisNotes(composite scoring.CompositeScore, ross scoring.RossScore) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Overall Score: %.1f/100\n", composite.Overall)
	fmt.Fprintf(&b, "Momentum Grade: %s\n", ross.Grade)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", composite.ConfidenceLevel*100)
	fmt.Fprintf(&b, "Risk Level: %s\n", composite.RiskLevel)

	if len(composite.Components) > 0 {
		b.WriteString("\nComponent Scores:\n")
		for _, c := range composite.Components {
			fmt.Fprintf(&b, "- %s: %.1f/100\n", c.Name, c.Score)
		}
	}

	b.WriteString("\nMomentum Pillars:\n")
	fmt.Fprintf(&b, "- Volume: %.1f/100\n", ross.VolumePillar)
	fmt.Fprintf(&b, "- Price Change: %.1f/100\n", ross.PriceChangePillar)
	fmt.Fprintf(&b, "- Float: %.1f/100\n", ross.FloatPillar)
	fmt.Fprintf(&b, "- Catalyst: %.1f/100\n", ross.CatalystPillar)
	fmt.Fprintf(&b, "- Price Range: %.1f/100\n", ross.PriceRangePillar)

	if composite.EntryPrice > 0 {
		fmt.Fprintf(&b, "\nEntry: $%.2f\n", composite.EntryPrice)
	}
	if composite.StopLoss > 0 {
		fmt.Fprintf(&b, "Stop Loss: $%.2f\n", composite.StopLoss)
	}
	if composite.TakeProfit > 0 {
		fmt.Fprintf(&b, "Take Profit: $%.2f\n", composite.TakeProfit)
	}

	return b.String()
}

func (g *Generator) defaultSignal(symbol string, now time.Time) TradingSignal {
	return TradingSignal{
		Symbol:         symbol,
		SignalID:       fmt.Sprintf("%s_error_%s", symbol, now.Format("20060102_150405")),
		Timestamp:      now,
		Composite:      scoring.CompositeScore{Symbol: symbol, Overall: 50, ConfidenceLevel: 0.5, RiskLevel: RiskMedium, SignalStrength: "weak", Recommendation: technical.RecHold, TimeHorizon: scoring.HorizonDayTrade, Urgency: scoring.UrgencyLow},
		Ross:           scoring.RossScore{Symbol: symbol, VolumePillar: 50, PriceChangePillar: 50, FloatPillar: 50, CatalystPillar: 50, PriceRangePillar: 50, Overall: 50, Grade: "C"},
		Patterns:       pattern.Analysis{Completed: []pattern.Pattern{}, Potential: []pattern.PotentialPattern{}, EntrySignals: []pattern.Signal{}, ExitSignals: []pattern.Signal{}},
		SignalType:     technical.RecHold,
		SignalStrength: "weak",
		Confidence:     0.5,
		TimeHorizon:    scoring.HorizonDayTrade,
		Urgency:        scoring.UrgencyLow,
		Alerts:         []string{},
		RiskWarnings:   []string{"Signal reliability unknown"},
		Notes:          "Insufficient data for analysis",
	}
}
