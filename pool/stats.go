package pool

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the prometheus collectors shared by every Pool a Manager
// creates, one instance per Manager so independent Managers (as used in
// tests) never collide on metric registration.
type metrics struct {
	registry *prometheus.Registry

	acquireTotal      *prometheus.CounterVec
	releaseTotal      *prometheus.CounterVec
	foreignReturnTotal *prometheus.CounterVec
	overflowTotal     *prometheus.CounterVec
	overflowReturnedTotal *prometheus.CounterVec
	housekeepingTotal *prometheus.CounterVec
	deferTotal        *prometheus.CounterVec
	mandatoryTotal    *prometheus.CounterVec
	slotsInUse        *prometheus.GaugeVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		acquireTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tlpool_acquire_total",
			Help: "Buffers handed out by Acquire, by owning thread id.",
		}, []string{"tid"}),
		releaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tlpool_release_total",
			Help: "Buffers reclaimed by their owning thread, on release or by a housekeeping sweep.",
		}, []string{"tid"}),
		foreignReturnTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tlpool_foreign_release_total",
			Help: "Buffers released by a thread that did not dispatch them, queued for cross-thread reclaim.",
		}, []string{"tid"}),
		overflowTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tlpool_overflow_total",
			Help: "Overflow allocations made once a slab was exhausted.",
		}, []string{"tid"}),
		overflowReturnedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tlpool_overflow_returned_total",
			Help: "Overflow allocations reclaimed and dropped.",
		}, []string{"tid"}),
		housekeepingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tlpool_housekeeping_sweeps_total",
			Help: "Housekeeping sweeps run (mandatory and opportunistic combined).",
		}, []string{"tid"}),
		deferTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tlpool_housekeeping_deferred_total",
			Help: "Opportunistic housekeeping attempts declined because a sweep was already in progress or the housekeeping lock was held.",
		}, []string{"tid"}),
		mandatoryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tlpool_housekeeping_mandatory_total",
			Help: "Mandatory, blocking housekeeping sweeps run.",
		}, []string{"tid"}),
		slotsInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tlpool_slots_in_use",
			Help: "Slots currently dispatched, by owning thread and type key.",
		}, []string{"tid", "type_key"}),
	}
	reg.MustRegister(
		m.acquireTotal, m.releaseTotal, m.foreignReturnTotal,
		m.overflowTotal, m.overflowReturnedTotal,
		m.housekeepingTotal, m.deferTotal, m.mandatoryTotal,
		m.slotsInUse,
	)
	return m
}

// Registry exposes the Manager's prometheus registry, e.g. to wire into an
// HTTP handler via promhttp.HandlerFor.
func (m *Manager) Registry() *prometheus.Registry { return m.metrics.registry }

// Stats renders a line of counters for this Pool, in the same dense
// single-line style as the source allocator's stats() dump. With
// detailed set, one { ... } block per registered type is appended.
func (p *Pool) Stats(detailed bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[ tid:%d get:%d return:%d foreignReturn:%d slabs:%d dispatched:%d "+
		"housekeeping:%d deferred:%d mandatory:%d overflow:%d overflowReturned:%d returnBuffer:%d",
		p.ownerTid, p.getCount, p.returnCount, p.foreignReturnCount,
		len(p.registry.slabs), len(p.dispatch),
		p.housekeepingCount, p.housekeepingDeferCount, p.mandatoryHousekeepingCount,
		p.overflowCount, p.overflowReturnedCount, p.manager.returnBuf.Len())

	if detailed {
		for key, slab := range p.registry.slabs {
			fmt.Fprintf(&b, " { key:%s slot:%s capacity:%d inUse:%d }",
				strconv.FormatUint(key, 16),
				humanize.Bytes(uint64(slab.SlotSize())),
				slab.Capacity(), slab.InUse())
		}
	}

	b.WriteString(" ]")
	return b.String()
}
