package calculate

import "math"

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values, or 0 when
// fewer than two values are given.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// PercentChanges returns the bar-to-bar fractional changes of values.
// Bars following a zero value contribute a zero change.
func PercentChanges(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	changes := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			changes = append(changes, 0)
			continue
		}
		changes = append(changes, (values[i]-values[i-1])/values[i-1])
	}
	return changes
}

// AnnualizedVolatility computes the annualized standard deviation of the
// close-to-close percent changes over the last window values, assuming 252
// trading days. Returns 0 when there is not enough data.
func AnnualizedVolatility(closes []float64, window int) float64 {
	if window < 2 || len(closes) < window {
		return 0
	}
	changes := PercentChanges(closes[len(closes)-window:])
	return StdDev(changes) * math.Sqrt(252)
}
