package technical

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/calculate"
	"github.com/Tracer88/Momentum/models"
)

// Crossover states for MACD.
const (
	CrossoverBullish = "bullish"
	CrossoverBearish = "bearish"
	CrossoverNone    = "none"
)

// Trend labels shared by EMA and volume analyses.
const (
	TrendBullish  = "bullish"
	TrendBearish  = "bearish"
	TrendSideways = "sideways"

	VolumeIncreasing = "increasing"
	VolumeDecreasing = "decreasing"
	VolumeStable     = "stable"
)

// Recommendations emitted by the engine.
const (
	RecStrongBuy  = "strong_buy"
	RecBuy        = "buy"
	RecHold       = "hold"
	RecSell       = "sell"
	RecStrongSell = "strong_sell"
)

// MACDAnalysis holds the latest MACD state including the prior-bar
// crossover check.
type MACDAnalysis struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
	Crossover string  `json:"crossover"`
	IsBullish bool    `json:"is_bullish"`
	IsBearish bool    `json:"is_bearish"`
}

// EMAAnalysis holds the moving-average stack state.
type EMAAnalysis struct {
	EMA9            float64 `json:"ema_9"`
	EMA20           float64 `json:"ema_20"`
	EMA50           float64 `json:"ema_50"`
	EMA200          float64 `json:"ema_200"`
	Trend           string  `json:"trend"`
	PriceAboveEMA9  bool    `json:"price_above_ema_9"`
	PriceAboveEMA20 bool    `json:"price_above_ema_20"`
	GoldenCross     bool    `json:"golden_cross"`
}

// RSIAnalysis holds the RSI value and its interpretation.
type RSIAnalysis struct {
	Value      float64 `json:"value"`
	Overbought bool    `json:"overbought"`
	Oversold   bool    `json:"oversold"`
	Momentum   string  `json:"momentum"`
}

// VolumeAnalysis holds volume behavior relative to its average.
type VolumeAnalysis struct {
	SMA      float64 `json:"sma"`
	Relative float64 `json:"relative"`
	Trend    string  `json:"trend"`
	Breakout bool    `json:"breakout"`
}

// Indicators is the combined output of one indicator pass.
type Indicators struct {
	MACD           MACDAnalysis   `json:"macd"`
	EMA            EMAAnalysis    `json:"ema"`
	RSI            RSIAnalysis    `json:"rsi"`
	Volume         VolumeAnalysis `json:"volume"`
	SignalStrength float64        `json:"signal_strength"`
	Recommendation string         `json:"recommendation"`
	EntrySignal    bool           `json:"entry_signal"`
	ExitSignal     bool           `json:"exit_signal"`
}

// TechnicalIndicatorEngine computes MACD, EMA stack, RSI and volume
// analyses and folds them into a single weighted recommendation.
type TechnicalIndicatorEngine struct {
	macdFast     int
	macdSlow     int
	macdSignal   int
	rsiPeriod    int
	volumePeriod int
	breakout     float64
	minCandles   int
	logger       zerolog.Logger
}

// NewTechnicalIndicatorEngine builds an engine from config.
func NewTechnicalIndicatorEngine(cfg *config.Config) *TechnicalIndicatorEngine {
	return &TechnicalIndicatorEngine{
		macdFast:     cfg.MACDFastPeriod,
		macdSlow:     cfg.MACDSlowPeriod,
		macdSignal:   cfg.MACDSignalPeriod,
		rsiPeriod:    cfg.RSIPeriod,
		volumePeriod: cfg.VolumeSMAPeriod,
		breakout:     cfg.VolumeBreakout,
		minCandles:   cfg.MinCandles,
		logger:       log.With().Str("component", "indicator_engine").Logger(),
	}
}

// Analyze computes all indicators for candles. With fewer than minCandles
// bars it returns neutral defaults instead of partial values.
func (e *TechnicalIndicatorEngine) Analyze(candles []models.Candle) Indicators {
	if len(candles) < e.minCandles {
		e.logger.Debug().Int("candles", len(candles)).Int("required", e.minCandles).Msg("insufficient data, returning defaults")
		return defaultIndicators()
	}

	closes := models.Closes(candles)
	price := closes[len(closes)-1]

	result := Indicators{
		MACD:   e.analyzeMACD(closes),
		EMA:    e.analyzeEMA(closes, price),
		RSI:    e.analyzeRSI(closes),
		Volume: e.analyzeVolume(candles),
	}

	score := e.scoreIndicators(result)
	result.SignalStrength = math.Max(0, math.Min(100, (score+100)/2))
	result.Recommendation = recommendationFor(result.SignalStrength)
	result.EntrySignal = e.entrySignal(result)
	result.ExitSignal = e.exitSignal(result)

	return result
}

func defaultIndicators() Indicators {
	return Indicators{
		MACD:           MACDAnalysis{Crossover: CrossoverNone},
		EMA:            EMAAnalysis{Trend: TrendSideways},
		RSI:            RSIAnalysis{Value: 50, Momentum: "neutral"},
		Volume:         VolumeAnalysis{Relative: 1.0, Trend: VolumeStable},
		SignalStrength: 50,
		Recommendation: RecHold,
	}
}

func (e *TechnicalIndicatorEngine) analyzeMACD(closes []float64) MACDAnalysis {
	series := calculate.MACDSeries(closes, e.macdFast, e.macdSlow, e.macdSignal)
	if len(series) == 0 {
		return MACDAnalysis{Crossover: CrossoverNone}
	}

	current := series[len(series)-1]
	analysis := MACDAnalysis{
		Line:      current.Line,
		Signal:    current.Signal,
		Histogram: current.Histogram,
		Crossover: CrossoverNone,
		IsBullish: current.Line > current.Signal && current.Histogram > 0,
		IsBearish: current.Line < current.Signal && current.Histogram < 0,
	}

	if len(series) >= 2 {
		prev := series[len(series)-2]
		if prev.Line <= prev.Signal && current.Line > current.Signal {
			analysis.Crossover = CrossoverBullish
		} else if prev.Line >= prev.Signal && current.Line < current.Signal {
			analysis.Crossover = CrossoverBearish
		}
	}

	return analysis
}

func (e *TechnicalIndicatorEngine) analyzeEMA(closes []float64, price float64) EMAAnalysis {
	analysis := EMAAnalysis{
		EMA9:   calculate.EMA(closes, 9),
		EMA20:  calculate.EMA(closes, 20),
		EMA50:  calculate.EMA(closes, 50),
		EMA200: calculate.EMA(closes, 200),
	}
	analysis.PriceAboveEMA9 = price > analysis.EMA9
	analysis.PriceAboveEMA20 = price > analysis.EMA20
	analysis.GoldenCross = analysis.EMA50 > analysis.EMA200 && analysis.EMA200 > 0

	// A full stack with fewer than 200 bars leaves EMA200 at zero; the
	// trend is sideways until every average is defined.
	switch {
	case analysis.EMA200 > 0 && price > analysis.EMA9 && analysis.EMA9 > analysis.EMA20 &&
		analysis.EMA20 > analysis.EMA50 && analysis.EMA50 > analysis.EMA200:
		analysis.Trend = TrendBullish
	case analysis.EMA200 > 0 && analysis.EMA9 < analysis.EMA20 &&
		analysis.EMA20 < analysis.EMA50 && analysis.EMA50 < analysis.EMA200:
		analysis.Trend = TrendBearish
	default:
		analysis.Trend = TrendSideways
	}

	return analysis
}

func (e *TechnicalIndicatorEngine) analyzeRSI(closes []float64) RSIAnalysis {
	value := calculate.RSI(closes, e.rsiPeriod)
	analysis := RSIAnalysis{
		Value:      value,
		Overbought: value > 70,
		Oversold:   value < 30,
		Momentum:   "neutral",
	}
	if value > 60 {
		analysis.Momentum = TrendBullish
	} else if value < 40 {
		analysis.Momentum = TrendBearish
	}
	return analysis
}

func (e *TechnicalIndicatorEngine) analyzeVolume(candles []models.Candle) VolumeAnalysis {
	volumes := models.Volumes(candles)
	sma := calculate.SMA(volumes, e.volumePeriod)

	analysis := VolumeAnalysis{
		SMA:      sma,
		Relative: 1.0,
		Trend:    VolumeStable,
	}
	if sma > 0 {
		analysis.Relative = volumes[len(volumes)-1] / sma
	}
	analysis.Breakout = analysis.Relative >= e.breakout

	if len(volumes) >= 10 {
		recent := calculate.Mean(volumes[len(volumes)-5:])
		prior := calculate.Mean(volumes[len(volumes)-10 : len(volumes)-5])
		if prior > 0 {
			switch {
			case recent > prior*1.2:
				analysis.Trend = VolumeIncreasing
			case recent < prior*0.8:
				analysis.Trend = VolumeDecreasing
			}
		}
	}

	return analysis
}

// scoreIndicators awards at most one point tier per indicator, producing a
// raw score capped at 100.
func (e *TechnicalIndicatorEngine) scoreIndicators(ind Indicators) float64 {
	score := 0.0

	switch {
	case ind.MACD.Crossover == CrossoverBullish:
		score += 25
	case ind.MACD.Crossover == CrossoverBearish:
		score -= 25
	case ind.MACD.IsBullish:
		score += 15
	case ind.MACD.IsBearish:
		score -= 15
	}

	switch ind.EMA.Trend {
	case TrendBullish:
		score += 25
	case TrendBearish:
		score -= 25
	}
	if ind.EMA.PriceAboveEMA9 && ind.EMA.PriceAboveEMA20 {
		score += 15
	} else if !ind.EMA.PriceAboveEMA9 && !ind.EMA.PriceAboveEMA20 {
		score -= 15
	}

	switch {
	case ind.RSI.Momentum == TrendBullish && !ind.RSI.Overbought:
		score += 15
	case ind.RSI.Momentum == TrendBearish && !ind.RSI.Oversold:
		score -= 15
	case ind.RSI.Oversold:
		score += 10
	case ind.RSI.Overbought:
		score -= 10
	}

	switch {
	case ind.Volume.Breakout:
		score += 20
	case ind.Volume.Trend == VolumeIncreasing:
		score += 10
	case ind.Volume.Trend == VolumeDecreasing:
		score -= 10
	}

	return score
}

func recommendationFor(strength float64) string {
	switch {
	case strength >= 80:
		return RecStrongBuy
	case strength >= 65:
		return RecBuy
	case strength >= 35:
		return RecHold
	case strength >= 20:
		return RecSell
	default:
		return RecStrongSell
	}
}

// entrySignal requires at least 3 of 5 bullish conditions.
func (e *TechnicalIndicatorEngine) entrySignal(ind Indicators) bool {
	conditions := []bool{
		ind.MACD.Crossover == CrossoverBullish,
		ind.EMA.PriceAboveEMA9,
		!ind.RSI.Overbought,
		ind.Volume.Breakout,
		ind.EMA.Trend == TrendBullish || ind.EMA.Trend == TrendSideways,
	}
	return countTrue(conditions) >= 3
}

// exitSignal requires at least 2 of 4 bearish conditions.
func (e *TechnicalIndicatorEngine) exitSignal(ind Indicators) bool {
	conditions := []bool{
		ind.MACD.Crossover == CrossoverBearish,
		!ind.EMA.PriceAboveEMA9,
		ind.RSI.Overbought,
		ind.EMA.Trend == TrendBearish,
	}
	return countTrue(conditions) >= 2
}

func countTrue(conditions []bool) int {
	n := 0
	for _, c := range conditions {
		if c {
			n++
		}
	}
	return n
}
