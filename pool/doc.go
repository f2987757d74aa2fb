// Package pool implements a per-thread, type-segregated object pool.
//
// Each OS thread that touches the pool owns exactly one *Pool, created
// lazily on first use and keyed by that thread's id (see internal/threadinfo).
// Every registered type gets a fixed-capacity Slab of pre-allocated,
// cache-line-padded slots; acquiring a buffer hands out a free slot (or
// overflows to the general allocator once the slab is exhausted) and
// releasing one returns it to its owning thread, directly if the caller
// is that thread, or via the shared ReturnBuffer otherwise. A housekeeping
// sweep, triggered opportunistically or mandatorily from Acquire, drains
// the ReturnBuffer back into each owner's slabs.
//
// Callers that want the single-owner guarantees this package relies on
// must pin their goroutine to its OS thread with runtime.LockOSThread
// before calling Acquire or Release, the same way a C/C++ program would
// pin work to a pthread.
package pool
