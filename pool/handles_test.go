package pool

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestOwningHandleCloseReturnsSlotToPool(t *testing.T) {
	m := newTestManager(1, 0)
	p := m.CurrentPool()

	h, err := MakeOwning[widget](p, func(w *widget) { w.A = 42 })
	require.NoError(t, err)
	require.Equal(t, int64(42), h.Get().A)

	slab, _ := p.registry.get(typeKeyOf[widget]())
	require.Equal(t, 1, slab.InUse())

	h.Close()
	require.Equal(t, 0, slab.InUse())

	h.Close() // must be a harmless no-op
}

func TestOwningHandleReleaseDetachesWithoutFreeing(t *testing.T) {
	m := newTestManager(1, 0)
	p := m.CurrentPool()

	h, err := MakeOwning[widget](p, nil)
	require.NoError(t, err)

	raw := h.Release()
	require.NotNil(t, raw)
	require.Nil(t, h.Get())

	slab, _ := p.registry.get(typeKeyOf[widget]())
	require.Equal(t, 1, slab.InUse(), "Release must not return the slot to the pool")

	p.release(unsafe.Pointer(raw))
	require.Equal(t, 0, slab.InUse())
}

func TestSharedHandleReleasesOnLastClose(t *testing.T) {
	m := newTestManager(1, 0)
	p := m.CurrentPool()

	h, err := MakeShared[widget](p, nil)
	require.NoError(t, err)
	clone := h.Clone()

	slab, _ := p.registry.get(typeKeyOf[widget]())
	require.Equal(t, 1, slab.InUse())

	h.Close()
	require.Equal(t, 1, slab.InUse(), "one live clone remains, the buffer must not be freed yet")

	clone.Close()
	require.Equal(t, 0, slab.InUse())
}
