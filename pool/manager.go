package pool

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexsanderHamir/tlpool/internal/queue"
	"github.com/AlexsanderHamir/tlpool/internal/threadinfo"
)

// Manager owns the process-wide shared state spec §5 calls out: the
// cross-thread ReturnBuffer, the single housekeeping lock, and the
// in-progress flag, plus the registry of per-thread Pools. Design Notes §9
// prefers a pool-manager handle over bare file-scope globals for fresh
// implementations; DefaultManager supplies one process-wide instance so
// free functions like Release keep the source allocator's call-from-
// anywhere ergonomics.
type Manager struct {
	logger     zerolog.Logger
	threadInfo func() threadinfo.Info

	poolsMu sync.RWMutex
	pools   map[int]*Pool

	returnBuf *queue.MPSC[unsafe.Pointer]

	housekeepingMu sync.Mutex
	inProgress     atomic.Bool

	metrics *metrics
}

// NewManager builds a Manager with its own independent shared state: the
// ReturnBuffer, housekeeping lock, pool registry and metrics registry are
// all scoped to this instance, so tests can run several managers side by
// side without interference.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		logger:     log.Logger,
		threadInfo: threadinfo.Current,
		pools:      make(map[int]*Pool),
		returnBuf:  queue.NewMPSC[unsafe.Pointer](),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics = newMetrics()
	return m
}

var defaultManager = NewManager()

// DefaultManager is the process-wide Manager used by the package-level
// free functions Release and ValidatePools.
func DefaultManager() *Manager { return defaultManager }

// CurrentPool returns the calling OS thread's Pool, creating it lazily on
// first access and recording the thread's tid for its lifetime (spec §3
// Lifecycle). Construction is keyed by tid under poolsMu so a second
// concurrent first-access from the same thread cannot race into building
// two Pools for it.
func (m *Manager) CurrentPool() *Pool {
	info := m.threadInfo()
	tid := info.Tid()

	m.poolsMu.RLock()
	p, ok := m.pools[tid]
	m.poolsMu.RUnlock()
	if ok {
		return p
	}

	m.poolsMu.Lock()
	defer m.poolsMu.Unlock()
	if p, ok = m.pools[tid]; ok {
		return p
	}
	p = newPool(m, tid, info)
	m.pools[tid] = p
	return p
}

// Release routes ptr back to its owning Pool: if the calling thread's own
// Pool dispatched it, it is reclaimed directly; otherwise it is assumed to
// belong to a different thread's Pool and handed to the shared
// ReturnBuffer for that thread's next housekeeping sweep to pick up (spec
// §4.2-§4.3). See pool.go's release for the resolution of the tid-
// comparison Open Question in spec §9.
func (m *Manager) Release(ptr unsafe.Pointer) {
	m.CurrentPool().release(ptr)
}

// Stats renders one Pool.Stats line per thread this Manager has seen.
func (m *Manager) Stats(detailed bool) []string {
	m.poolsMu.RLock()
	defer m.poolsMu.RUnlock()

	lines := make([]string, 0, len(m.pools))
	for _, p := range m.pools {
		lines = append(lines, p.Stats(detailed))
	}
	return lines
}

// ValidatePools checks the guard region of every slab in every Pool this
// Manager knows about.
func (m *Manager) ValidatePools() bool {
	m.poolsMu.RLock()
	defer m.poolsMu.RUnlock()

	sane := true
	for _, p := range m.pools {
		if !p.ValidatePools() {
			sane = false
		}
	}
	return sane
}
