package pool

import (
	"hash/fnv"
	"reflect"
)

// typeRegistry is the mapping from a type key to its Slab (spec component
// B). Insertion is one-shot per key: redefinition is rejected, mirroring
// registerNewObject's "already registered" check in the source allocator.
type typeRegistry struct {
	slabs map[uint64]*Slab
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{slabs: make(map[uint64]*Slab)}
}

// register creates a new Slab for key if one does not already exist.
// Returns (slab, true) on success, (nil, false) if key was already
// registered; the existing Slab is left untouched either way.
func (r *typeRegistry) register(key uint64, capacity, size int) (*Slab, bool) {
	if _, exists := r.slabs[key]; exists {
		return nil, false
	}
	s := newSlab(capacity, size)
	r.slabs[key] = s
	return s, true
}

func (r *typeRegistry) get(key uint64) (*Slab, bool) {
	s, ok := r.slabs[key]
	return s, ok
}

func (r *typeRegistry) isRegistered(key uint64) bool {
	_, ok := r.slabs[key]
	return ok
}

// typeKeyOf computes a stable hash of T's type identity, standing in for
// the source allocator's typeid(T).hash_code(). Unlike a raw type-pointer
// identity, this is stable across separate binaries/runs of the same code,
// which makes it safe to use as a user-supplied registration key too.
func typeKeyOf[T any]() uint64 {
	t := reflect.TypeOf((*T)(nil)).Elem()

	h := fnv.New64a()
	_, _ = h.Write([]byte(t.PkgPath()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(t.String()))
	return h.Sum64()
}

// hasPointerData reports whether t, or any field it contains transitively,
// is pointer-shaped: a representation that holds the address of memory the
// garbage collector must trace to keep it alive (a pointer, slice, map,
// string, channel, func or interface value). Slab storage is a plain
// noscan byte arena (see slab.go), so only pointer-free types may safely be
// registered through RegisterType.
func hasPointerData(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.String,
		reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return hasPointerData(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointerData(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
