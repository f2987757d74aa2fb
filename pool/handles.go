package pool

import (
	"sync/atomic"
	"unsafe"
)

// OwningHandle is unique ownership over a pool-backed *T, mirroring the
// source allocator's unique_ptr wrapper: Close returns the buffer to its
// owning Pool. It is not safe to copy an OwningHandle value directly
// (that would double-release); pass it by pointer, or call Release to
// detach the raw *T and take over its lifetime yourself.
type OwningHandle[T any] struct {
	ptr     *T
	manager *Manager
}

// Get returns the owned pointer without transferring ownership.
func (h *OwningHandle[T]) Get() *T { return h.ptr }

// Release detaches the pointer from this handle without returning it to
// the pool: the caller now owns its lifetime.
func (h *OwningHandle[T]) Release() *T {
	p := h.ptr
	h.ptr = nil
	return p
}

// Close returns the underlying buffer to its owning Pool's Manager,
// through the same cross-thread-safe path as the free function Release,
// then detaches this handle. Safe to call once; a second call is a no-op.
func (h *OwningHandle[T]) Close() {
	if h.ptr == nil {
		return
	}
	h.manager.Release(unsafe.Pointer(h.ptr))
	h.ptr = nil
}

// MakeOwning registers T on p if necessary, acquires a zero-filled buffer
// sized for T, runs init over it if non-nil, and wraps the result in an
// OwningHandle.
func MakeOwning[T any](p *Pool, init func(*T)) (*OwningHandle[T], error) {
	obj, err := constructFromPool[T](p, init)
	if err != nil {
		return nil, err
	}
	return &OwningHandle[T]{ptr: obj, manager: p.manager}, nil
}

func constructFromPool[T any](p *Pool, init func(*T)) (*T, error) {
	if !IsRegistered[T](p) {
		if _, err := RegisterType[T](p); err != nil {
			return nil, err
		}
	}
	obj, err := Acquire[T](p)
	if err != nil {
		return nil, err
	}
	if init != nil {
		init(obj)
	}
	return obj, nil
}

// SharedHandle is reference-counted ownership over a pool-backed *T,
// mirroring the source allocator's shared_ptr wrapper. The count lives in
// the handle, not the Pool; the Pool itself has no notion of sharing.
// The underlying buffer returns to its Pool once the last clone's Close
// brings the count to zero.
type SharedHandle[T any] struct {
	ptr     *T
	refs    *int32
	manager *Manager
}

// Get returns the shared pointer.
func (h *SharedHandle[T]) Get() *T { return h.ptr }

// Clone returns a new handle over the same buffer, incrementing the
// shared reference count.
func (h *SharedHandle[T]) Clone() *SharedHandle[T] {
	atomic.AddInt32(h.refs, 1)
	return &SharedHandle[T]{ptr: h.ptr, refs: h.refs, manager: h.manager}
}

// Close decrements the reference count and, once it reaches zero, returns
// the buffer to its owning Pool's Manager. Safe to call once per handle
// (including clones); a second call on the same handle value is a no-op.
func (h *SharedHandle[T]) Close() {
	if h.ptr == nil {
		return
	}
	if atomic.AddInt32(h.refs, -1) == 0 {
		h.manager.Release(unsafe.Pointer(h.ptr))
	}
	h.ptr = nil
}

// MakeShared registers T on p if necessary, acquires a zero-filled buffer
// sized for T, runs init over it if non-nil, and wraps the result in a
// SharedHandle with a reference count of one.
func MakeShared[T any](p *Pool, init func(*T)) (*SharedHandle[T], error) {
	obj, err := constructFromPool[T](p, init)
	if err != nil {
		return nil, err
	}
	n := int32(1)
	return &SharedHandle[T]{ptr: obj, refs: &n, manager: p.manager}, nil
}
