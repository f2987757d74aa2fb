package pool

import "unsafe"

// dispatchEntry records where an outstanding buffer came from: either a
// (slabKey, index) pair identifying a live slot, or the overflow sentinel
// (overflowKey, overflowIndex) meaning the buffer came from the general
// allocator and must simply be dropped (left to the garbage collector) on
// release.
type dispatchEntry struct {
	slabKey uint64
	index   int

	// overflow holds the backing slice for an overflow allocation so the
	// garbage collector keeps it alive for as long as this entry exists,
	// even though the map key only carries an unsafe.Pointer into it.
	overflow []byte
}

func (e dispatchEntry) isOverflow() bool {
	return e.slabKey == overflowKey && e.index == overflowIndex
}

// dispatchMap is the per-thread table of outstanding buffer -> origin
// mappings described in spec §3. Thread-confined: only the owning Pool's
// goroutine reads or writes it.
type dispatchMap map[unsafe.Pointer]dispatchEntry
