package pool

import "github.com/AlexsanderHamir/tlpool/internal/threadinfo"

// fakeInfo is a deterministic threadinfo.Info for tests: tid and occupancy
// are both fixed at construction instead of read from the OS, so tests can
// exercise the housekeeping thresholds without real OS threads or CPU load.
type fakeInfo struct {
	tid       int
	occupancy int
}

func (f *fakeInfo) Tid() int           { return f.tid }
func (f *fakeInfo) Occupancy() int     { return f.occupancy }
func (f *fakeInfo) SystemTimeMS() uint64 { return 0 }
func (f *fakeInfo) UserTimeMS() uint64   { return 0 }

var _ threadinfo.Info = (*fakeInfo)(nil)

// newTestManager returns a Manager whose threadInfo always resolves to
// the same fixed fake thread, i.e. every CurrentPool() call returns the
// same *Pool. Use fanoutManager for multi-thread scenarios.
func newTestManager(tid, occupancy int) *Manager {
	info := &fakeInfo{tid: tid, occupancy: occupancy}
	return NewManager(WithThreadInfo(func() threadinfo.Info { return info }))
}

// fanoutManager returns a Manager plus a function that, given a tid and an
// occupancy reading, returns the Pool that a thread with that identity
// would see.
func fanoutManager() (*Manager, func(tid, occupancy int) *Pool) {
	current := &fakeInfo{}
	m := NewManager(WithThreadInfo(func() threadinfo.Info { return current }))
	return m, func(tid, occupancy int) *Pool {
		current.tid = tid
		current.occupancy = occupancy
		return m.CurrentPool()
	}
}
