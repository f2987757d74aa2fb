package pool

// maybeHousekeep implements the trigger priority from spec §4.4: a
// mandatory sweep fires unconditionally once a Slab crosses HighThreshold
// occupancy, regardless of this thread's own CPU occupancy reading.
// Opportunistic housekeeping only fires below that, and only when this
// thread's own occupancy is comfortably under OccupancyCeiling. The idea
// is that a thread already busy doing real work should not also pay for a
// sweep it can defer.
func (p *Pool) maybeHousekeep(slab *Slab) {
	inUse := float64(slab.InUse())
	capacity := float64(slab.Capacity())
	if capacity == 0 {
		return
	}

	if inUse >= capacity*HighThreshold {
		p.mandatoryHousekeep()
		return
	}

	if inUse >= capacity*LowThreshold && p.threadInfo.Occupancy() < OccupancyCeiling {
		p.opportunisticHousekeep()
	}
}

// mandatoryHousekeep blocks on the shared housekeeping lock and always
// runs a sweep, per spec §4.4's "Mandatory" trigger.
func (p *Pool) mandatoryHousekeep() {
	p.manager.housekeepingMu.Lock()
	defer p.manager.housekeepingMu.Unlock()

	p.manager.inProgress.Store(true)
	p.sweep()
	p.manager.inProgress.Store(false)

	p.housekeepingCount++
	p.mandatoryHousekeepingCount++
	p.manager.metrics.housekeepingTotal.WithLabelValues(p.tidLabel).Inc()
	p.manager.metrics.mandatoryTotal.WithLabelValues(p.tidLabel).Inc()
}

// opportunisticHousekeep runs a sweep only if no sweep is already marked
// in progress and the shared lock can be taken without waiting; otherwise
// it counts the attempt as deferred and returns immediately, per spec
// §4.4's "Opportunistic" trigger.
func (p *Pool) opportunisticHousekeep() {
	if p.manager.inProgress.Load() {
		p.housekeepingDeferCount++
		p.manager.metrics.deferTotal.WithLabelValues(p.tidLabel).Inc()
		return
	}
	if !p.manager.housekeepingMu.TryLock() {
		p.housekeepingDeferCount++
		p.manager.metrics.deferTotal.WithLabelValues(p.tidLabel).Inc()
		return
	}
	defer p.manager.housekeepingMu.Unlock()

	p.manager.inProgress.Store(true)
	p.sweep()
	p.manager.inProgress.Store(false)

	p.housekeepingCount++
	p.manager.metrics.housekeepingTotal.WithLabelValues(p.tidLabel).Inc()
}

// sweep drains a fixed-size snapshot of the shared ReturnBuffer: its length
// at the moment the sweep starts, not however many pointers arrive while it
// runs, so one thread's sweep cannot be held open forever by a constant
// stream of concurrent releases. Every popped pointer this Pool recognizes
// is reclaimed; everything else is assumed to belong to some other thread's
// Pool and is re-enqueued for a later sweep, matching the source
// allocator's doHouseKeeping loop.
//
// If this thread's own occupancy climbs past OccupancyCeiling partway
// through, the sweep is logged as overloaded and continues anyway rather
// than aborting: per spec §4.4/§7, an overloaded sweep is reported, not
// treated as an error. The source allocator's doHouseKeeping logs this on
// every iteration it holds true for, so this does too.
func (p *Pool) sweep() {
	n := p.manager.returnBuf.Len()
	for i := 0; i < n; i++ {
		if occ := p.threadInfo.Occupancy(); occ > OccupancyCeiling {
			p.logger.Error().Int("occupancy", occ).Msg("housekeeping sweep running over thread occupancy ceiling")
		}

		ptr, ok := p.manager.returnBuf.Dequeue()
		if !ok {
			return
		}

		entry, owned := p.dispatch[ptr]
		if !owned {
			p.manager.returnBuf.Enqueue(ptr)
			continue
		}

		delete(p.dispatch, ptr)
		p.reclaim(entry)
		p.returnCount++
		p.manager.metrics.releaseTotal.WithLabelValues(p.tidLabel).Inc()
	}
}
