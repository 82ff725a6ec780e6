package calculate

// EMA computes the exponential moving average of prices for the given period.
// The first EMA value is seeded with the simple average of the first period
// prices. Returns 0 when there is not enough data.
func EMA(prices []float64, period int) float64 {
	series := EMASeries(prices, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// EMASeries returns the full EMA series for prices. The result has
// len(prices) - period + 1 values, the first being the SMA seed.
func EMASeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}

	series := make([]float64, 0, len(prices)-period+1)

	sum := 0.0
	for _, p := range prices[:period] {
		sum += p
	}
	ema := sum / float64(period)
	series = append(series, ema)

	multiplier := 2.0 / float64(period+1)
	for _, p := range prices[period:] {
		ema = (p-ema)*multiplier + ema
		series = append(series, ema)
	}

	return series
}

// SMA computes the simple moving average of the last period values.
// Returns 0 when there is not enough data.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}
