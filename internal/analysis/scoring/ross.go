package scoring

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/models"
)

// RossScore holds the five momentum-pillar scores (each 0-100), the weighted
// overall score and its letter grade.
type RossScore struct {
	Symbol            string  `json:"symbol"`
	VolumePillar      float64 `json:"volume_pillar"`
	PriceChangePillar float64 `json:"price_change_pillar"`
	FloatPillar       float64 `json:"float_pillar"`
	CatalystPillar    float64 `json:"catalyst_pillar"`
	PriceRangePillar  float64 `json:"price_range_pillar"`
	Overall           float64 `json:"overall"`
	Grade             string  `json:"grade"`
}

// RossCameronPillarScorer grades a symbol against the five classic momentum
// pillars: relative volume, price change, float, catalyst and price range.
type RossCameronPillarScorer struct {
	weightVolume      float64
	weightPriceChange float64
	weightFloat       float64
	weightCatalyst    float64
	weightPriceRange  float64
	logger            zerolog.Logger
}

// NewRossCameronPillarScorer builds a scorer from config.
func NewRossCameronPillarScorer(cfg *config.Config) *RossCameronPillarScorer {
	return &RossCameronPillarScorer{
		weightVolume:      cfg.RossWeightVolume,
		weightPriceChange: cfg.RossWeightPriceChange,
		weightFloat:       cfg.RossWeightFloat,
		weightCatalyst:    cfg.RossWeightCatalyst,
		weightPriceRange:  cfg.RossWeightPriceRange,
		logger:            log.With().Str("component", "ross_scorer").Logger(),
	}
}

// Score computes all pillar scores. A snapshot without a price yields the
// neutral default (all pillars 50, grade C) rather than an error.
func (s *RossCameronPillarScorer) Score(symbol string, market models.MarketSnapshot, fundamental models.FundamentalSummary, news models.NewsSummary) RossScore {
	if market.CurrentPrice <= 0 {
		s.logger.Warn().Str("symbol", symbol).Msg("no market data, returning default pillar score")
		return defaultRossScore(symbol)
	}

	volume := volumePillar(market.RelativeVolume)
	priceChange := priceChangePillar(market.PriceChangePercent)
	floatShares := floatPillar(fundamental.FloatShares)
	catalyst := catalystPillar(news)
	priceRange := priceRangePillar(market.CurrentPrice)

	overall := (volume*s.weightVolume +
		priceChange*s.weightPriceChange +
		floatShares*s.weightFloat +
		catalyst*s.weightCatalyst +
		priceRange*s.weightPriceRange) * 100

	return RossScore{
		Symbol:            symbol,
		VolumePillar:      volume * 100,
		PriceChangePillar: priceChange * 100,
		FloatPillar:       floatShares * 100,
		CatalystPillar:    catalyst * 100,
		PriceRangePillar:  priceRange * 100,
		Overall:           overall,
		Grade:             gradeFor(overall),
	}
}

func defaultRossScore(symbol string) RossScore {
	return RossScore{
		Symbol:            symbol,
		VolumePillar:      50,
		PriceChangePillar: 50,
		FloatPillar:       50,
		CatalystPillar:    50,
		PriceRangePillar:  50,
		Overall:           50,
		Grade:             "C",
	}
}

func volumePillar(relativeVolume float64) float64 {
	switch {
	case relativeVolume >= 5.0:
		return 1.0
	case relativeVolume >= 3.0:
		return 0.9
	case relativeVolume >= 2.0:
		return 0.8
	case relativeVolume >= 1.5:
		return 0.6
	default:
		return 0.2
	}
}

func priceChangePillar(priceChangePercent float64) float64 {
	change := math.Abs(priceChangePercent)
	switch {
	case change >= 20:
		return 1.0
	case change >= 10:
		return 0.9
	case change >= 5:
		return 0.8
	case change >= 4:
		return 0.7
	default:
		return 0.3
	}
}

func floatPillar(floatShares float64) float64 {
	switch {
	case floatShares <= 10_000_000:
		return 1.0
	case floatShares <= 20_000_000:
		return 0.9
	case floatShares <= 30_000_000:
		return 0.8
	case floatShares <= 50_000_000:
		return 0.6
	default:
		return 0.2
	}
}

func catalystPillar(news models.NewsSummary) float64 {
	if !news.CatalystDetected {
		return 0.1
	}
	score := news.CatalystScore / 100
	if news.HasHighImpactCatalyst() {
		score *= 1.2
	}
	return math.Min(1.0, score)
}

func priceRangePillar(price float64) float64 {
	switch {
	case price >= 2 && price <= 10:
		return 1.0
	case price >= 1 && price <= 20:
		return 0.8
	case price <= 50:
		return 0.6
	default:
		return 0.2
	}
}

func gradeFor(score float64) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 85:
		return "B+"
	case score >= 80:
		return "B"
	case score >= 75:
		return "C+"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
