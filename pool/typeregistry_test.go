package pool

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type stringField struct {
	A   int64
	Tag string
}

type nestedPointerField struct {
	Inner *widget
}

type sliceField struct {
	Items []int64
}

func TestTypeKeyOfIsStableAndDistinct(t *testing.T) {
	require.Equal(t, typeKeyOf[widget](), typeKeyOf[widget]())
	require.NotEqual(t, typeKeyOf[widget](), typeKeyOf[int]())
}

func TestHasPointerDataRejectsPointerShapedFields(t *testing.T) {
	require.False(t, hasPointerData(reflect.TypeOf(widget{})), "a plain int64 struct must be slab-safe")
	require.True(t, hasPointerData(reflect.TypeOf(stringField{})))
	require.True(t, hasPointerData(reflect.TypeOf(nestedPointerField{})))
	require.True(t, hasPointerData(reflect.TypeOf(sliceField{})))
}

func TestRegisterTypeRejectsPointerShapedType(t *testing.T) {
	m := newTestManager(1, 0)
	p := m.CurrentPool()

	ok, err := RegisterType[stringField](p)
	require.ErrorIs(t, err, ErrPointerField)
	require.False(t, ok)
	require.False(t, IsRegistered[stringField](p))
}

func TestTypeRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := newTypeRegistry()
	key := typeKeyOf[widget]()

	_, ok := r.register(key, 10, 16)
	require.True(t, ok)
	require.True(t, r.isRegistered(key))

	_, ok = r.register(key, 10, 16)
	require.False(t, ok, "registering the same key twice must fail")
}
