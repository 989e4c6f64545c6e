package core

import "math"

// -----------------------------------------------------------------------------

// SMA calculates the simple moving average over the last period values.
// Returns false when fewer than period values are available.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// -----------------------------------------------------------------------------

// EMA calculates a weighted moving average over the last period values using
// exponentially spaced weights. Returns false when fewer than period values
// are available.
func EMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}

	window := values[len(values)-period:]
	weights := emaWeights(period)

	result := 0.0
	for i, v := range window {
		result += v * weights[i]
	}
	return result, true
}

// emaWeights returns normalized weights exp(x) for x evenly spaced on [-1, 0].
func emaWeights(period int) []float64 {
	weights := make([]float64, period)
	if period == 1 {
		weights[0] = 1
		return weights
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		x := -1.0 + float64(i)/float64(period-1)
		weights[i] = math.Exp(x)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// -----------------------------------------------------------------------------

// RSI calculates the relative strength index over the last period deltas.
// Returns false when fewer than period+1 values are available.
func RSI(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period+1 {
		return 0, false
	}

	window := values[len(values)-period-1:]

	gains := 0.0
	losses := 0.0
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// -----------------------------------------------------------------------------

// MACD calculates the MACD line, signal line and histogram using recursive
// EMAs. Requires at least slow+signal values.
func MACD(values []float64, fast, slow, signal int) (macd, sig, hist float64, ok bool) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return 0, 0, 0, false
	}
	if len(values) < slow+signal {
		return 0, 0, 0, false
	}

	fastEMA := emaSeries(values, fast)
	slowEMA := emaSeries(values, slow)

	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := emaSeries(macdLine, signal)

	last := len(values) - 1
	macd = macdLine[last]
	sig = signalLine[last]
	hist = macd - sig
	return macd, sig, hist, true
}

// emaSeries computes the full recursive EMA series with alpha = 2/(period+1),
// seeded with the first value.
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
