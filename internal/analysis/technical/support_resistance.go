package technical

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/analysis/pattern"
	"github.com/Tracer88/Momentum/internal/calculate"
	"github.com/Tracer88/Momentum/models"
)

// Volatility regime labels.
const (
	VolatilityHigh   = "high"
	VolatilityMedium = "medium"
	VolatilityLow    = "low"
)

// Level is a support or resistance price level with its touch history.
type Level struct {
	Price     float64 `json:"price"`
	Touches   int     `json:"touches"`
	Strength  float64 `json:"strength"`
	IsCurrent bool    `json:"is_current"`
}

// Levels is the combined support/resistance picture around the current price.
type Levels struct {
	Support           []Level `json:"support"`
	Resistance        []Level `json:"resistance"`
	NearestSupport    *Level  `json:"nearest_support,omitempty"`
	NearestResistance *Level  `json:"nearest_resistance,omitempty"`
	Volatility        float64 `json:"volatility"`
	VolatilityLevel   string  `json:"volatility_level"`
}

// SupportResistanceCalculator finds price levels from pivot extremes in the
// recent window and ranks them by touch count and proximity.
type SupportResistanceCalculator struct {
	pivots           *pattern.SwingPointDetector
	window           int
	touchPercent     float64
	minTouches       int
	maxLevels        int
	currentPercent   float64
	volatilityWindow int
	logger           zerolog.Logger
}

// NewSupportResistanceCalculator builds a calculator from config.
func NewSupportResistanceCalculator(cfg *config.Config) *SupportResistanceCalculator {
	return &SupportResistanceCalculator{
		pivots:           pattern.NewPivotDetector(cfg),
		window:           cfg.SRWindow,
		touchPercent:     cfg.SRTouchPercent,
		minTouches:       cfg.SRMinTouches,
		maxLevels:        cfg.SRMaxLevels,
		currentPercent:   cfg.SRCurrentPercent,
		volatilityWindow: cfg.VolatilityWindow,
		logger:           log.With().Str("component", "support_resistance").Logger(),
	}
}

// Calculate returns the level picture for candles. With no candles it
// returns an empty result.
func (c *SupportResistanceCalculator) Calculate(candles []models.Candle) Levels {
	levels := Levels{
		Support:         []Level{},
		Resistance:      []Level{},
		VolatilityLevel: VolatilityLow,
	}
	if len(candles) == 0 {
		return levels
	}

	window := candles
	if len(window) > c.window {
		window = window[len(window)-c.window:]
	}
	price := window[len(window)-1].Close

	for _, sp := range c.pivots.Detect(window) {
		level, ok := c.buildLevel(window, sp, price)
		if !ok {
			continue
		}
		if sp.Type == pattern.SwingPeak {
			levels.Resistance = append(levels.Resistance, level)
		} else {
			levels.Support = append(levels.Support, level)
		}
	}

	levels.Support = topLevels(levels.Support, c.maxLevels)
	levels.Resistance = topLevels(levels.Resistance, c.maxLevels)
	levels.NearestSupport = nearestBelow(levels.Support, price)
	levels.NearestResistance = nearestAbove(levels.Resistance, price)

	closes := models.Closes(candles)
	levels.Volatility = calculate.AnnualizedVolatility(closes, c.volatilityWindow)
	switch {
	case levels.Volatility > 0.5:
		levels.VolatilityLevel = VolatilityHigh
	case levels.Volatility > 0.3:
		levels.VolatilityLevel = VolatilityMedium
	}

	c.logger.Debug().
		Int("support", len(levels.Support)).
		Int("resistance", len(levels.Resistance)).
		Float64("volatility", levels.Volatility).
		Msg("level calculation complete")

	return levels
}

// buildLevel counts how many bars touched the pivot price and scores the
// level; levels touched fewer than minTouches times are discarded.
func (c *SupportResistanceCalculator) buildLevel(candles []models.Candle, sp pattern.SwingPoint, price float64) (Level, bool) {
	if sp.Price <= 0 {
		return Level{}, false
	}

	touches := 0
	for _, candle := range candles {
		ref := candle.High
		if sp.Type == pattern.SwingTrough {
			ref = candle.Low
		}
		if math.Abs(ref-sp.Price)/sp.Price <= c.touchPercent {
			touches++
		}
	}
	if touches < c.minTouches {
		return Level{}, false
	}

	distance := math.Abs(price-sp.Price) / price * 100
	strength := math.Min(100, float64(touches)*20+(100-distance))

	return Level{
		Price:     sp.Price,
		Touches:   touches,
		Strength:  strength,
		IsCurrent: math.Abs(price-sp.Price)/price < c.currentPercent,
	}, true
}

func topLevels(levels []Level, max int) []Level {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Strength > levels[j].Strength })
	if len(levels) > max {
		levels = levels[:max]
	}
	return levels
}

func nearestBelow(levels []Level, price float64) *Level {
	var nearest *Level
	for i := range levels {
		l := levels[i]
		if l.Price >= price {
			continue
		}
		if nearest == nil || l.Price > nearest.Price {
			nearest = &levels[i]
		}
	}
	return nearest
}

func nearestAbove(levels []Level, price float64) *Level {
	var nearest *Level
	for i := range levels {
		l := levels[i]
		if l.Price <= price {
			continue
		}
		if nearest == nil || l.Price < nearest.Price {
			nearest = &levels[i]
		}
	}
	return nearest
}
