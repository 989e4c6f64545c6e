package marketdata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeChangeFirstSeen(t *testing.T) {
	refs := NewReferenceStore()

	// First price becomes the reference, change reported as zero
	change, pct := refs.ComputeChange("EURUSD", 1.1000)
	require.Zero(t, change)
	require.Zero(t, pct)

	change, pct = refs.ComputeChange("EURUSD", 1.1050)
	require.InDelta(t, 0.0050, change, 1e-9)
	require.InDelta(t, 0.0050/1.1000*100, pct, 1e-9)
}

func TestComputeChangeAgainstDailyReference(t *testing.T) {
	refs := NewReferenceStore()
	refs.SetDailyReference("EURUSD", 1.1000)

	change, pct := refs.ComputeChange("EURUSD", 1.1050)
	require.InDelta(t, 0.0050, change, 1e-9)
	require.InDelta(t, 0.454545, pct, 1e-4)
}

func TestDailyReferenceOverridesFirstSeen(t *testing.T) {
	refs := NewReferenceStore()

	// Bootstrap baseline from the first observed price
	refs.ComputeChange("EURUSD", 1.2000)

	// The daily bar arrives and takes over permanently
	refs.SetDailyReference("EURUSD", 1.1000)
	change, pct := refs.ComputeChange("EURUSD", 1.1050)
	require.InDelta(t, 0.0050, change, 1e-9)
	require.InDelta(t, 0.454545, pct, 1e-4)
}

func TestSetDailyReferenceDamping(t *testing.T) {
	refs := NewReferenceStore()
	refs.SetDailyReference("EURUSD", 1.1000)

	// Within 0.1% of the current reference: ignored
	refs.SetDailyReference("EURUSD", 1.10005)
	ref, ok := refs.DailyReference("EURUSD")
	require.True(t, ok)
	require.InDelta(t, 1.1000, ref, 1e-9)

	// Beyond 0.1%: accepted
	refs.SetDailyReference("EURUSD", 1.1100)
	ref, _ = refs.DailyReference("EURUSD")
	require.InDelta(t, 1.1100, ref, 1e-9)
}

func TestSetDailyReferenceRejectsNonPositive(t *testing.T) {
	refs := NewReferenceStore()
	refs.SetDailyReference("EURUSD", 0)
	refs.SetDailyReference("EURUSD", -1)

	_, ok := refs.DailyReference("EURUSD")
	require.False(t, ok)
}
