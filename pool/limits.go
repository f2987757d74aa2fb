package pool

// Compile-time tunables. Mirrors the defaults in the source allocator this
// package is modeled on (Base/Limits.h): a 100k-slot default capacity, a
// 60%/95% low/high housekeeping band, an 88% occupancy ceiling at or above
// which opportunistic housekeeping is skipped, and a 5-byte trailing guard
// region.
const (
	// DefaultCapacity is the slot count used for a type registered without
	// an explicit SetPerObjectCount override.
	DefaultCapacity = 100_000

	// LowThreshold is the in-use fraction at which Acquire attempts
	// opportunistic housekeeping.
	LowThreshold = 0.60

	// HighThreshold is the in-use fraction at which Acquire blocks for
	// mandatory housekeeping.
	HighThreshold = 0.95

	// OccupancyCeiling is the thread-occupancy percentage (0-100) at or
	// above which opportunistic housekeeping is skipped entirely.
	OccupancyCeiling = 88

	// GuardBytes is the size of the trailing canary region placed after a
	// slab's last slot.
	GuardBytes = 5

	// CacheLineSize is the alignment unit slot sizes are rounded up to.
	CacheLineSize = 64

	// bookkeepingBytes accounts for the two per-slot integers (free flag
	// and index) that share a cache line with slot data, per §3's slot_size
	// rounding rule.
	bookkeepingBytes = 2 * 8
)

// overflowKey is the DispatchMap sentinel slab key meaning "not a slab
// slot; this pointer came from the general allocator and must be dropped,
// not returned to a Slab, on release." Type keys are uint64 (stable hashes
// of a registered type), so the spec's signed (-1, -1) pair becomes the
// all-ones key paired with index -1.
const overflowKey = ^uint64(0)

const overflowIndex = -1
