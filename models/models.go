package models

import (
	"time"
)

// Candle represents a single OHLCV price bar
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
}

// MarketSnapshot holds the live market state for a symbol
type MarketSnapshot struct {
	Symbol             string  `json:"symbol"`
	CurrentPrice       float64 `json:"current_price"`
	CurrentVolume      int64   `json:"current_volume"`
	RelativeVolume     float64 `json:"relative_volume"`
	PriceChangePercent float64 `json:"price_change_percent"`
	GapPercent         float64 `json:"gap_percent"`
	Week52High         float64 `json:"week_52_high,omitempty"`
	Week52Low          float64 `json:"week_52_low,omitempty"`
}

// FundamentalSummary holds share-structure and classification data
// supplied by an external data provider
type FundamentalSummary struct {
	FloatShares          float64 `json:"float_shares"`
	SharesOutstanding    float64 `json:"shares_outstanding"`
	MarketCap            float64 `json:"market_cap"`
	Sector               string  `json:"sector"`
	Industry             string  `json:"industry,omitempty"`
	ShortInterestPercent float64 `json:"short_interest_percent"`
}

// NewsSummary is the numeric digest of news and catalyst analysis.
// Sentiment is pre-computed upstream; this package never re-scores text.
type NewsSummary struct {
	AvgSentiment        float64    `json:"avg_sentiment"`        // -1..1
	SentimentConfidence float64    `json:"sentiment_confidence"` // 0..1
	CatalystDetected    bool       `json:"catalyst_detected"`
	CatalystTypes       []string   `json:"catalyst_types,omitempty"`
	CatalystScore       float64    `json:"catalyst_score"`      // 0..100
	CatalystConfidence  float64    `json:"catalyst_confidence"` // 0..1
	NewsMomentumScore   float64    `json:"news_momentum_score"` // 0..100
	LatestCatalystTime  *time.Time `json:"latest_catalyst_time,omitempty"`
	UrgencyLevel        string     `json:"urgency_level,omitempty"` // urgent, high, medium, low
	NegativeArticles    int        `json:"negative_articles"`
	TotalArticles       int        `json:"total_articles"`
}

// HighImpactCatalysts are catalyst types that historically move low-float stocks hardest.
var HighImpactCatalysts = []string{"fda_approval", "merger_acquisition", "earnings_beat"}

// HasHighImpactCatalyst reports whether any detected catalyst type is high impact.
func (n NewsSummary) HasHighImpactCatalyst() bool {
	for _, ct := range n.CatalystTypes {
		for _, hi := range HighImpactCatalysts {
			if ct == hi {
				return true
			}
		}
	}
	return false
}

// PortfolioSnapshot holds account state used for position sizing
type PortfolioSnapshot struct {
	AccountValue  float64 `json:"account_value"`
	AvailableCash float64 `json:"available_cash"`
	OpenPositions int     `json:"open_positions"`
}

// AnalysisInput bundles everything a single-symbol analysis needs.
// All fields except Candles and Market may be zero-valued; components fall
// back to neutral defaults when data is missing.
type AnalysisInput struct {
	Symbol      string             `json:"symbol"`
	Candles     []Candle           `json:"candles"`
	Market      MarketSnapshot     `json:"market"`
	Fundamental FundamentalSummary `json:"fundamental"`
	News        NewsSummary        `json:"news"`
	Portfolio   *PortfolioSnapshot `json:"portfolio,omitempty"`
}

// Closes extracts the close-price series from a candle slice
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// Volumes extracts the volume series from a candle slice
func Volumes(candles []Candle) []float64 {
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		volumes[i] = float64(c.Volume)
	}
	return volumes
}
