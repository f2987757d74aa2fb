package threadinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentIsStablePerCall(t *testing.T) {
	a := Current()
	b := Current()
	require.Equal(t, a.Tid(), b.Tid())
	require.Same(t, a, b, "Current must return the same Info for repeated calls from the same thread")
}

func TestOccupancyFirstSampleIsZero(t *testing.T) {
	registryMu.Lock()
	delete(registry, Current().Tid())
	registryMu.Unlock()

	info := Current()
	require.Equal(t, 0, info.Occupancy(), "the first Occupancy sample has no prior baseline to diff against")
}

func TestOccupancyClampedToPercent(t *testing.T) {
	info := Current().(*osThread)
	info.Occupancy() // establish a baseline sample

	info.mu.Lock()
	info.lastCPUMS = 0
	info.mu.Unlock()

	pct := info.Occupancy()
	require.GreaterOrEqual(t, pct, 0)
	require.LessOrEqual(t, pct, 100)
}
