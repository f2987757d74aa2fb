package pool

import "errors"

// Sentinel errors returned by the pool's public surface. Every row in the
// spec's error-handling table that returns control to the caller (everything
// except GuardCorruption, which is fatal) maps to one of these.
var (
	// ErrUnknownType is returned by Acquire when called with a type key
	// that was never registered on this Pool. Caller bug.
	ErrUnknownType = errors.New("pool: unknown type key")

	// ErrPointerField is returned by RegisterType when T contains a
	// pointer-shaped field (pointer, slice, map, string, channel, func or
	// interface). Slab storage is a plain noscan byte arena, so the garbage
	// collector never traces into it; storing a pointer-shaped value there
	// would leave its referent unrooted and collectible while the slot is
	// still in use. Use a heap-allocated *T from a normal allocator for
	// types that need this, not the slab.
	ErrPointerField = errors.New("pool: type contains a pointer-shaped field, unsafe for slab storage")

	// ErrDuplicateRegistration is returned by RegisterNewObject when the
	// key is already registered. Not fatal: registration is idempotent
	// from the caller's point of view, the existing Slab is left alone.
	ErrDuplicateRegistration = errors.New("pool: type already registered")

	// ErrAllocationFailed is returned when the overflow path cannot obtain
	// memory from the general allocator.
	ErrAllocationFailed = errors.New("pool: overflow allocation failed")

	// ErrUnknownPointer is returned by ReleaseOwned when the pointer was
	// not dispatched by that Pool. Caller bug; the pointer is not freed.
	ErrUnknownPointer = errors.New("pool: release of undispatched pointer")

	// ErrGuardCorruption indicates the trailing guard region of a Slab no
	// longer reads as all-zero: a slot user wrote past its allotted size.
	// No function returns it: Acquire exits the process through a Fatal log
	// event when its guard check fails, and ValidatePools reports the
	// condition as false.
	ErrGuardCorruption = errors.New("pool: guard region corrupted, memory safety lost")
)
