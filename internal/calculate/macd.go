package calculate

// MACDResult holds one bar's MACD values.
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// MACDSeries computes the MACD line, signal line and histogram for every bar
// where all three are defined. fast/slow are the EMA periods for the MACD
// line, signalPeriod the EMA period of the signal line. Returns nil when
// there is not enough data for a single signal value.
func MACDSeries(prices []float64, fast, slow, signalPeriod int) []MACDResult {
	if fast <= 0 || slow <= fast || signalPeriod <= 0 {
		return nil
	}
	if len(prices) < slow+signalPeriod-1 {
		return nil
	}

	fastSeries := EMASeries(prices, fast)
	slowSeries := EMASeries(prices, slow)

	// Align the fast series to the slow one; the slow EMA starts
	// slow-fast bars later.
	offset := slow - fast
	macdLine := make([]float64, len(slowSeries))
	for i := range slowSeries {
		macdLine[i] = fastSeries[i+offset] - slowSeries[i]
	}

	signalSeries := EMASeries(macdLine, signalPeriod)
	if len(signalSeries) == 0 {
		return nil
	}

	results := make([]MACDResult, len(signalSeries))
	lineOffset := len(macdLine) - len(signalSeries)
	for i := range signalSeries {
		line := macdLine[i+lineOffset]
		results[i] = MACDResult{
			Line:      line,
			Signal:    signalSeries[i],
			Histogram: line - signalSeries[i],
		}
	}
	return results
}

// MACD returns the latest MACD values, or zeros when there is not enough data.
func MACD(prices []float64, fast, slow, signalPeriod int) MACDResult {
	series := MACDSeries(prices, fast, slow, signalPeriod)
	if len(series) == 0 {
		return MACDResult{}
	}
	return series[len(series)-1]
}
