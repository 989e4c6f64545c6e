package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	v, ok := SMA([]float64{1, 2, 3}, 3)
	require.True(t, ok)
	require.InDelta(t, 2.0, v, 1e-9)

	// Not enough data
	_, ok = SMA([]float64{1, 2, 3}, 4)
	require.False(t, ok)

	// Uses only the trailing window
	v, ok = SMA([]float64{100, 1, 2, 3}, 3)
	require.True(t, ok)
	require.InDelta(t, 2.0, v, 1e-9)
}

func TestEMAWeighted(t *testing.T) {
	// Constant series stays constant regardless of weights
	v, ok := EMA([]float64{5, 5, 5, 5}, 4)
	require.True(t, ok)
	require.InDelta(t, 5.0, v, 1e-9)

	_, ok = EMA([]float64{1, 2}, 3)
	require.False(t, ok)

	// Single period degenerates to the last value
	v, ok = EMA([]float64{1, 2, 9}, 1)
	require.True(t, ok)
	require.InDelta(t, 9.0, v, 1e-9)

	// Weights are increasing, so a rising series lands above its mean
	v, ok = EMA([]float64{1, 2, 3, 4, 5}, 5)
	require.True(t, ok)
	require.Greater(t, v, 3.0)
	require.Less(t, v, 5.0)
}

func TestRSI(t *testing.T) {
	// Strictly increasing series has no losses
	rising := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	v, ok := RSI(rising, 14)
	require.True(t, ok)
	require.InDelta(t, 100.0, v, 1e-9)

	// Strictly decreasing series has no gains
	falling := make([]float64, 15)
	for i := range falling {
		falling[i] = float64(15 - i)
	}
	v, ok = RSI(falling, 14)
	require.True(t, ok)
	require.InDelta(t, 0.0, v, 1e-9)

	// Needs period+1 values
	_, ok = RSI(rising[:14], 14)
	require.False(t, ok)
}

func TestMACD(t *testing.T) {
	// Needs at least slow+signal values
	short := make([]float64, 34)
	_, _, _, ok := MACD(short, 12, 26, 9)
	require.False(t, ok)

	// Constant series: every EMA equals the constant, all outputs zero
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 7
	}
	macd, sig, hist, ok := MACD(flat, 12, 26, 9)
	require.True(t, ok)
	require.InDelta(t, 0.0, macd, 1e-9)
	require.InDelta(t, 0.0, sig, 1e-9)
	require.InDelta(t, 0.0, hist, 1e-9)

	// Rising series: fast EMA above slow EMA, positive MACD line
	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = float64(i)
	}
	macd, _, _, ok = MACD(rising, 12, 26, 9)
	require.True(t, ok)
	require.Greater(t, macd, 0.0)
}
