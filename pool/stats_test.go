package pool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatsIncludesCoreCounters(t *testing.T) {
	m := newTestManager(3, 0)
	p := m.CurrentPool()
	RegisterType[widget](p)
	_, err := Acquire[widget](p)
	require.NoError(t, err)

	s := p.Stats(false)
	require.Contains(t, s, "tid:3")
	require.Contains(t, s, "get:1")
	require.NotContains(t, s, "{", "non-detailed Stats must not list per-slab blocks")
}

func TestStatsDetailedListsSlabs(t *testing.T) {
	m := newTestManager(3, 0)
	p := m.CurrentPool()
	RegisterType[widget](p)

	s := p.Stats(true)
	require.True(t, strings.Contains(s, "{"), "detailed Stats must include per-slab blocks")
}

func TestManagerExposesPrometheusRegistry(t *testing.T) {
	m := newTestManager(3, 0)
	require.NotNil(t, m.Registry())
}
