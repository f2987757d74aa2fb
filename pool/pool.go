package pool

import (
	"reflect"
	"strconv"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/AlexsanderHamir/tlpool/internal/threadinfo"
)

// Pool is the per-OS-thread allocator described in spec §3: one Pool per
// calling thread, holding one Slab per registered type plus the dispatch
// map recording where every outstanding buffer came from.
//
// A Pool must only ever be used from the OS thread that created it via
// Manager.CurrentPool. Callers are expected to have called
// runtime.LockOSThread beforehand, matching the source allocator's
// thread_local MemPool instance. Go has no language-level equivalent, so
// this package asks for the discipline explicitly instead of assuming it.
type Pool struct {
	manager    *Manager
	ownerTid   int
	tidLabel   string
	threadInfo threadinfo.Info
	logger     zerolog.Logger

	volume int // per-type slot count; see SetPerObjectCount

	registry *typeRegistry
	dispatch dispatchMap

	getCount                   uint64
	returnCount                uint64
	foreignReturnCount         uint64
	housekeepingCount          uint64
	housekeepingDeferCount     uint64
	mandatoryHousekeepingCount uint64
	overflowCount              uint64
	overflowReturnedCount      uint64
}

func newPool(m *Manager, tid int, info threadinfo.Info) *Pool {
	label := strconv.Itoa(tid)
	return &Pool{
		manager:    m,
		ownerTid:   tid,
		tidLabel:   label,
		threadInfo: info,
		logger:     m.logger.With().Int("tid", tid).Logger(),
		volume:     DefaultCapacity,
		registry:   newTypeRegistry(),
		dispatch:   dispatchMap{},
	}
}

// SetPerObjectCount overrides the slot count used by every type this Pool
// registers after the call. Must be called before the types it should
// affect are registered; existing Slabs keep their original capacity.
func (p *Pool) SetPerObjectCount(n int) {
	if n <= 0 {
		p.logger.Warn().Int("count", n).Msg("ignoring non-positive per-object count")
		return
	}
	p.volume = n
}

// RegisterNewObject creates a Slab for key sized to hold size-byte values.
// Returns (false, ErrDuplicateRegistration) if key is already registered,
// matching the source allocator's registerNewObject contract; the existing
// Slab is left untouched.
//
// Slab storage is a plain byte arena the garbage collector never scans (see
// slab.go), so size-byte values stored at this key must not contain any
// pointer-shaped field: a pointer, slice, map, string, channel, func or
// interface. RegisterType checks this automatically for a concrete Go type;
// this raw, key-and-size entry point cannot, since it never sees a type, so
// callers going through it directly are responsible for the same guarantee.
func (p *Pool) RegisterNewObject(key uint64, size int) (bool, error) {
	_, ok := p.registry.register(key, p.volume, size)
	if !ok {
		p.logger.Debug().Uint64("key", key).Msg("type already registered")
		return false, ErrDuplicateRegistration
	}
	return true, nil
}

// RegisterType registers T's zero-value size under its type key. A
// convenience wrapper for the common case where T is a concrete Go type
// rather than a caller-chosen key and size. Returns ErrPointerField if T
// contains a pointer-shaped field, since the slab storage backing it is
// never scanned by the garbage collector.
func RegisterType[T any](p *Pool) (bool, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if hasPointerData(t) {
		p.logger.Warn().Str("type", t.String()).Msg("refusing to register pointer-shaped type in slab storage")
		return false, ErrPointerField
	}

	var zero T
	return p.RegisterNewObject(typeKeyOf[T](), int(unsafe.Sizeof(zero)))
}

// IsRegistered reports whether T has a Slab on p.
func IsRegistered[T any](p *Pool) bool {
	return p.registry.isRegistered(typeKeyOf[T]())
}

// Acquire hands back a zero-filled buffer for key, registering the
// dispatch entry so a later Release (from any thread) can find its way
// back to the right Slab. See spec §4.1.
func (p *Pool) Acquire(key uint64) (unsafe.Pointer, error) {
	slab, ok := p.registry.get(key)
	if !ok {
		p.logger.Warn().Uint64("key", key).Msg("acquire of unregistered type")
		return nil, ErrUnknownType
	}

	p.getCount++
	p.manager.metrics.acquireTotal.WithLabelValues(p.tidLabel).Inc()

	p.maybeHousekeep(slab)

	if idx, ok := slab.findFree(); ok {
		slab.markInUse(idx)
		ptr := slab.slotPtr(idx)
		p.dispatch[ptr] = dispatchEntry{slabKey: key, index: idx}

		if !slab.validate() {
			p.logger.Fatal().Uint64("key", key).Msg("guard region corrupted, memory safety lost")
		}
		return ptr, nil
	}

	// Slab exhausted: fall back to a one-off heap allocation tracked under
	// the overflow sentinel. Go's allocator panics rather than returning
	// nil on true exhaustion, so ErrAllocationFailed below is unreachable
	// in practice; it is kept for parity with the source allocator's
	// contract and in case a future pluggable allocator can fail softly.
	buf := make([]byte, slab.SlotSize())
	if len(buf) == 0 {
		return nil, ErrAllocationFailed
	}
	ptr := unsafe.Pointer(&buf[0])
	p.dispatch[ptr] = dispatchEntry{slabKey: overflowKey, index: overflowIndex, overflow: buf}
	p.overflowCount++
	p.manager.metrics.overflowTotal.WithLabelValues(p.tidLabel).Inc()
	return ptr, nil
}

// Acquire is the generic, type-safe counterpart of (*Pool).Acquire: it
// derives the type key itself and casts the returned buffer to *T.
func Acquire[T any](p *Pool) (*T, error) {
	ptr, err := p.Acquire(typeKeyOf[T]())
	if err != nil {
		return nil, err
	}
	return (*T)(ptr), nil
}

// release implements the owner/cross-thread split from spec §4.2-§4.3.
//
// Open Question (spec §9): the source's returnBuffer compares the calling
// thread's tid against its own thread-local instance's tid, which is
// always true by construction and leaves the cross-thread branch dead.
// The rule actually needed is "owner path iff my tid equals the owning
// pool's tid", and since a bare pointer carries no owner information
// (§4.3), the only place that comparison can be made without breaking
// thread confinement is presence in *this* Pool's own dispatch map: an
// entry only exists here if this Pool itself created it. Absence is
// therefore treated as "belongs to some other thread's Pool" rather than
// as an immediate error; ReleaseOwned below is the strict counterpart for
// callers that can prove they hold the owning Pool and want the source's
// diagnostic UnknownPointer behavior instead.
func (p *Pool) release(ptr unsafe.Pointer) {
	entry, ok := p.dispatch[ptr]
	if !ok {
		p.manager.returnBuf.Enqueue(ptr)
		p.foreignReturnCount++
		p.manager.metrics.foreignReturnTotal.WithLabelValues(p.tidLabel).Inc()
		return
	}
	delete(p.dispatch, ptr)
	p.reclaim(entry)
	p.returnCount++
	p.manager.metrics.releaseTotal.WithLabelValues(p.tidLabel).Inc()
}

// ReleaseOwned releases ptr only if this Pool itself dispatched it,
// reporting ErrUnknownPointer otherwise instead of assuming a foreign
// pointer. Intended for callers that already hold the pointer's owning
// Pool and want to catch a double-release or a bogus pointer as a bug
// rather than have it silently queued for an endless cross-thread retry.
func (p *Pool) ReleaseOwned(ptr unsafe.Pointer) error {
	entry, ok := p.dispatch[ptr]
	if !ok {
		p.logger.Warn().Msg("release of pointer never dispatched by this pool")
		return ErrUnknownPointer
	}
	delete(p.dispatch, ptr)
	p.reclaim(entry)
	p.returnCount++
	p.manager.metrics.releaseTotal.WithLabelValues(p.tidLabel).Inc()
	return nil
}

func (p *Pool) reclaim(entry dispatchEntry) {
	if entry.isOverflow() {
		p.overflowReturnedCount++
		p.manager.metrics.overflowReturnedTotal.WithLabelValues(p.tidLabel).Inc()
		return
	}
	slab, ok := p.registry.get(entry.slabKey)
	if !ok {
		p.logger.Error().Uint64("key", entry.slabKey).Msg("dispatch entry references unknown slab")
		return
	}
	slab.cleanup(entry.index)
}

// ValidatePools checks every Slab's guard region on this Pool.
func (p *Pool) ValidatePools() bool {
	sane := true
	for _, slab := range p.registry.slabs {
		if !slab.validate() {
			sane = false
		}
	}
	return sane
}

// Release routes ptr back to its owning Pool via the calling thread's
// current Pool and the default Manager. Safe to call from any thread that
// holds a pointer previously returned by Acquire, including threads other
// than the one that acquired it.
func Release(ptr unsafe.Pointer) {
	DefaultManager().Release(ptr)
}

// ValidatePools checks every Pool's every Slab known to the default
// Manager.
func ValidatePools() bool {
	return DefaultManager().ValidatePools()
}
