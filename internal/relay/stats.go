package relay

import "sync/atomic"

type stats struct {
	received   atomic.Uint64
	dispatched atomic.Uint64
	framing    atomic.Uint64
	final      atomic.Uint64
	garbage    atomic.Uint64
	null       atomic.Uint64
	unrouted   atomic.Uint64
	faults     atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the loop counters.
type StatsSnapshot struct {
	Received   uint64 `json:"received"`
	Dispatched uint64 `json:"dispatched"`
	Framing    uint64 `json:"framing"`
	Final      uint64 `json:"final"`
	Garbage    uint64 `json:"garbage"`
	Null       uint64 `json:"null"`
	Unrouted   uint64 `json:"unrouted"`
	Faults     uint64 `json:"faults"`
}

func (r *Service) Stats() StatsSnapshot {
	return StatsSnapshot{
		Received:   r.stats.received.Load(),
		Dispatched: r.stats.dispatched.Load(),
		Framing:    r.stats.framing.Load(),
		Final:      r.stats.final.Load(),
		Garbage:    r.stats.garbage.Load(),
		Null:       r.stats.null.Load(),
		Unrouted:   r.stats.unrouted.Load(),
		Faults:     r.stats.faults.Load(),
	}
}
