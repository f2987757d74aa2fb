package pool

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestMandatoryHousekeepingIgnoresOccupancyCeiling(t *testing.T) {
	m, poolFor := fanoutManager()

	// Occupancy is pinned above OccupancyCeiling for the whole test: if the
	// mandatory trigger were gated on occupancy like the opportunistic one
	// is, it would never fire and in_use would stay pinned at capacity.
	owner := poolFor(1, 95)
	owner.SetPerObjectCount(10)
	RegisterType[widget](owner)

	acquired := make([]*widget, 0, 10)
	for i := 0; i < 10; i++ {
		w, err := Acquire[widget](owner)
		require.NoError(t, err)
		acquired = append(acquired, w)
	}
	// Simulate another thread having already popped these off its own
	// dispatch bookkeeping and handed them back via the shared
	// ReturnBuffer, without going through release() here.
	for _, w := range acquired {
		m.returnBuf.Enqueue(unsafe.Pointer(w))
	}

	w, err := Acquire[widget](owner)
	require.NoError(t, err, "the mandatory sweep this Acquire triggers must reclaim the 10 buffered pointers before findFree runs")

	slab, _ := owner.registry.get(typeKeyOf[widget]())
	require.Equal(t, 1, slab.InUse(), "only the slot just acquired should remain in use once the sweep reclaims the rest")
	require.Equal(t, uint64(1), owner.mandatoryHousekeepingCount)
	_ = w
}

func TestOpportunisticHousekeepingSkippedAboveOccupancyCeiling(t *testing.T) {
	_, poolFor := fanoutManager()

	p := poolFor(1, 90) // above OccupancyCeiling
	p.SetPerObjectCount(10)
	RegisterType[widget](p)

	for i := 0; i < 7; i++ { // 70% >= LowThreshold, < HighThreshold
		_, err := Acquire[widget](p)
		require.NoError(t, err)
	}

	require.Equal(t, uint64(0), p.housekeepingCount)
	require.Equal(t, uint64(0), p.housekeepingDeferCount)
}

func TestOpportunisticHousekeepingDefersWhileInProgress(t *testing.T) {
	m, poolFor := fanoutManager()

	p := poolFor(1, 0)
	p.SetPerObjectCount(10)
	RegisterType[widget](p)

	m.inProgress.Store(true)
	for i := 0; i < 9; i++ { // in_use crosses the 60% (6-slot) line on call 7
		_, err := Acquire[widget](p)
		require.NoError(t, err)
	}
	m.inProgress.Store(false)

	require.Equal(t, uint64(3), p.housekeepingDeferCount, "calls 7, 8 and 9 each see in_use at or above the low threshold")
	require.Equal(t, uint64(0), p.housekeepingCount)
}

func TestSweepReclaimsEvenWhenOccupancyExceedsCeiling(t *testing.T) {
	m, poolFor := fanoutManager()

	// Occupancy above OccupancyCeiling must not stop a sweep already under
	// way: the ceiling only gates whether opportunistic housekeeping starts
	// one, per maybeHousekeep. An in-progress sweep logs and keeps draining.
	owner := poolFor(1, 95)
	owner.SetPerObjectCount(4)
	RegisterType[widget](owner)

	w, err := Acquire[widget](owner)
	require.NoError(t, err)
	m.returnBuf.Enqueue(unsafe.Pointer(w))

	owner.sweep()

	slab, _ := owner.registry.get(typeKeyOf[widget]())
	require.Equal(t, 0, slab.InUse(), "a high-occupancy sweep must still reclaim pointers it owns")
}

func TestSweepReenqueuesPointersItDoesNotOwn(t *testing.T) {
	m, poolFor := fanoutManager()

	owner := poolFor(1, 0)
	owner.SetPerObjectCount(10)
	RegisterType[widget](owner)
	w, err := Acquire[widget](owner)
	require.NoError(t, err)

	foreignPtr := unsafe.Pointer(&widget{})
	m.returnBuf.Enqueue(foreignPtr)

	other := poolFor(2, 0)
	other.sweep()

	require.Equal(t, 1, m.returnBuf.Len(), "a pointer sweep doesn't own must be re-enqueued, not dropped")
	_ = w
}
