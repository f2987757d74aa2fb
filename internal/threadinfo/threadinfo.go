// Package threadinfo provides the pool's ThreadInfo collaborator: a stable
// OS-thread identity and an approximate occupancy reading. Out of scope for
// the allocator core per the spec, but the core needs a concrete default to
// run against, so this is a direct translation of Base/ThreadInfo.cpp onto
// golang.org/x/sys/unix: gettid() for identity, getrusage(RUSAGE_THREAD,
// ...) for CPU time.
package threadinfo

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Info is the interface the pool package consumes. Only Tid and Occupancy
// affect correctness; SystemTimeMS/UserTimeMS exist for stats only.
type Info interface {
	Tid() int
	Occupancy() int
	SystemTimeMS() uint64
	UserTimeMS() uint64
}

// osThread is the default Info implementation, one per OS thread. Callers
// must have called runtime.LockOSThread before fetching theirs via Current,
// otherwise the tid it reports is whichever OS thread happens to be running
// the calling goroutine at that instant.
type osThread struct {
	tid int

	mu         sync.Mutex
	lastWall   time.Time
	lastCPUMS  uint64
	lastSysMS  uint64
	lastUsrMS  uint64
	haveSample bool
}

var (
	registryMu sync.Mutex
	registry   = map[int]*osThread{}
)

// Current returns the Info for the calling OS thread, creating it on first
// use. Safe to call from any goroutine; it reflects whatever OS thread is
// currently running that goroutine.
func Current() Info {
	tid := unix.Gettid()

	registryMu.Lock()
	t, ok := registry[tid]
	if !ok {
		t = &osThread{tid: tid}
		registry[tid] = t
	}
	registryMu.Unlock()

	return t
}

func (t *osThread) Tid() int { return t.tid }

// SystemTimeMS returns this thread's cumulative kernel CPU time in
// milliseconds, via getrusage(RUSAGE_THREAD, ...).
func (t *osThread) SystemTimeMS() uint64 {
	sys, _ := t.rusageMS()
	return sys
}

// UserTimeMS returns this thread's cumulative user CPU time in
// milliseconds, via getrusage(RUSAGE_THREAD, ...).
func (t *osThread) UserTimeMS() uint64 {
	_, usr := t.rusageMS()
	return usr
}

func (t *osThread) rusageMS() (sysMS, usrMS uint64) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return 0, 0
	}
	sysMS = uint64(ru.Stime.Sec)*1000 + uint64(ru.Stime.Usec)/1000
	usrMS = uint64(ru.Utime.Sec)*1000 + uint64(ru.Utime.Usec)/1000
	return sysMS, usrMS
}

// Occupancy approximates the percentage of wall-clock time since the last
// call that this thread spent on CPU, clamped to [0,100]. The source this
// package is modeled on left the equivalent routine stubbed to always
// return 0; a pool that never sees nonzero occupancy would always be
// eligible for opportunistic housekeeping, which defeats the point of the
// ceiling, so this gives it a real (if approximate) signal instead.
func (t *osThread) Occupancy() int {
	sysMS, usrMS := t.rusageMS()
	cpuMS := sysMS + usrMS
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.haveSample {
		t.haveSample = true
		t.lastWall = now
		t.lastCPUMS = cpuMS
		return 0
	}

	wallMS := uint64(now.Sub(t.lastWall).Milliseconds())
	cpuDeltaMS := cpuMS - t.lastCPUMS
	t.lastWall = now
	t.lastCPUMS = cpuMS

	if wallMS == 0 {
		return 0
	}

	pct := int(cpuDeltaMS * 100 / wallMS)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}
