package pattern

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/internal/calculate"
	"github.com/Tracer88/Momentum/models"
)

// SwingType classifies a swing point.
type SwingType string

const (
	SwingPeak   SwingType = "peak"
	SwingTrough SwingType = "trough"
)

// SwingPoint is a confirmed local extreme in the price series.
type SwingPoint struct {
	Index int       `json:"index"`
	Price float64   `json:"price"`
	Type  SwingType `json:"type"`
}

// SwingPointDetector extracts alternatable peaks and troughs from candles.
// Peaks are detected on highs, troughs on lows, each requiring a minimum
// bar distance and a prominence proportional to the series deviation.
type SwingPointDetector struct {
	minDistance      int
	prominenceFactor float64
	logger           zerolog.Logger
}

// NewSwingPointDetector builds a detector from config.
func NewSwingPointDetector(cfg *config.Config) *SwingPointDetector {
	return &SwingPointDetector{
		minDistance:      cfg.SwingMinDistance,
		prominenceFactor: cfg.SwingProminenceFactor,
		logger:           log.With().Str("component", "swing_detector").Logger(),
	}
}

// NewPivotDetector builds a detector with a looser prominence factor,
// used for support/resistance pivots which accept shallower extremes.
func NewPivotDetector(cfg *config.Config) *SwingPointDetector {
	return &SwingPointDetector{
		minDistance:      cfg.SwingMinDistance,
		prominenceFactor: cfg.PivotProminenceFactor,
		logger:           log.With().Str("component", "pivot_detector").Logger(),
	}
}

// Detect returns all swing points in candles, ordered by bar index.
// Fewer than 2*minDistance+1 candles yield no swing points.
func (d *SwingPointDetector) Detect(candles []models.Candle) []SwingPoint {
	if len(candles) < 2*d.minDistance+1 {
		return nil
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
	}

	// Prominence is scaled per series: choppy highs do not raise the bar
	// for shallow but genuine troughs, and vice versa.
	highProminence := d.prominenceFactor * calculate.StdDev(highs)
	lowProminence := d.prominenceFactor * calculate.StdDev(lows)

	points := make([]SwingPoint, 0)
	for _, idx := range findPeaks(highs, d.minDistance, highProminence) {
		points = append(points, SwingPoint{Index: idx, Price: highs[idx], Type: SwingPeak})
	}
	inverted := make([]float64, len(lows))
	for i, v := range lows {
		inverted[i] = -v
	}
	for _, idx := range findPeaks(inverted, d.minDistance, lowProminence) {
		points = append(points, SwingPoint{Index: idx, Price: lows[idx], Type: SwingTrough})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Index < points[j].Index })

	d.logger.Debug().Int("candles", len(candles)).Int("swings", len(points)).Msg("swing detection complete")
	return points
}

// findPeaks locates local maxima in values that satisfy both the minimum
// distance between accepted peaks and the minimum prominence. When two
// candidates are closer than minDistance, the higher one wins.
func findPeaks(values []float64, minDistance int, minProminence float64) []int {
	candidates := localMaxima(values)

	if minProminence > 0 {
		filtered := candidates[:0]
		for _, idx := range candidates {
			if peakProminence(values, idx) >= minProminence {
				filtered = append(filtered, idx)
			}
		}
		candidates = filtered
	}

	if minDistance > 1 && len(candidates) > 1 {
		candidates = enforceDistance(values, candidates, minDistance)
	}

	return candidates
}

// localMaxima returns indices of strict local maxima. Flat-topped peaks
// resolve to the middle of the plateau.
func localMaxima(values []float64) []int {
	var maxima []int
	i := 1
	for i < len(values)-1 {
		if values[i] <= values[i-1] {
			i++
			continue
		}
		// Climb over any plateau.
		j := i
		for j < len(values)-1 && values[j+1] == values[j] {
			j++
		}
		if j < len(values)-1 && values[j+1] < values[j] {
			maxima = append(maxima, (i+j)/2)
		}
		i = j + 1
	}
	return maxima
}

// peakProminence measures how far values[idx] stands above the higher of
// the two lowest points separating it from taller terrain on each side.
func peakProminence(values []float64, idx int) float64 {
	peak := values[idx]

	leftMin := peak
	for i := idx - 1; i >= 0; i-- {
		if values[i] > peak {
			break
		}
		if values[i] < leftMin {
			leftMin = values[i]
		}
	}

	rightMin := peak
	for i := idx + 1; i < len(values); i++ {
		if values[i] > peak {
			break
		}
		if values[i] < rightMin {
			rightMin = values[i]
		}
	}

	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return peak - base
}

// enforceDistance drops peaks that sit within minDistance of a taller
// accepted peak, processing candidates tallest-first.
func enforceDistance(values []float64, candidates []int, minDistance int) []int {
	order := make([]int, len(candidates))
	copy(order, candidates)
	sort.Slice(order, func(i, j int) bool { return values[order[i]] > values[order[j]] })

	rejected := make(map[int]bool)
	for _, idx := range order {
		if rejected[idx] {
			continue
		}
		for _, other := range candidates {
			if other == idx || rejected[other] {
				continue
			}
			if abs(other-idx) < minDistance {
				rejected[other] = true
			}
		}
	}

	kept := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if !rejected[idx] {
			kept = append(kept, idx)
		}
	}
	return kept
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
