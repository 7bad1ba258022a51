// Package scheduler implements the delayed-current scheduler: a
// pending-current table keyed by (time bin, neuron id), drained once per
// tick into a dense current vector. See spec §4.3.
//
// The teacher's neuron/signal_scheduler.go manages outgoing signal timing
// with a container/heap priority queue (one per neuron, ordered by
// delivery time). This package's shape is different on purpose: spec §4.3
// only ever needs to drain *one* bin at a time — "now" — so a composite-key
// map, not a priority queue, is the right structure; the teacher's queue
// was solving a different problem (many neurons sharing one axon's
// delivery timeline). The atomic-stats-counter style is kept; the table
// itself is an unbounded map.
package scheduler

import (
	"fmt"
	"math"
	"sync/atomic"
)

// key is a genuine composite key, never a packed integer — spec §9 open
// question 1 calls out the source's `(bin << 16) | id` packing as a
// collision hazard when N or the bin count overflows the packed width.
// A struct key sidesteps the hazard entirely.
type key struct {
	bin    int64
	neuron int
}

// Scheduler owns the pending-current table. It is not safe for concurrent
// use from multiple goroutines; the core is single-threaded (spec §5).
type Scheduler struct {
	neuronN int
	pending map[key]float64

	scheduled int64 // atomic: total schedule/inject calls ever made
	drained   int64 // atomic: total entries ever drained
}

// New creates a scheduler for a network of neuronN neurons.
func New(neuronN int) (*Scheduler, error) {
	if neuronN <= 0 {
		return nil, fmt.Errorf("scheduler: neuron count must be positive, got %d", neuronN)
	}
	return &Scheduler{neuronN: neuronN, pending: make(map[key]float64)}, nil
}

// Bin quantizes a millisecond timestamp to an integer bin using
// round-half-away-from-zero, resolving spec §9 open question 3. Go's
// math.Round already rounds half away from zero (for both positive and
// negative values), so it is used directly rather than reimplemented.
func Bin(t float64) int64 {
	return int64(math.Round(t))
}

// Inject adds current to bin(t) for neuron post, bypassing the synaptic
// forward-progress rule — this is how encoders stimulate the network
// (spec §4.3 "External injections").
func (s *Scheduler) Inject(t float64, post int, current float64) error {
	return s.add(Bin(t), post, current)
}

// Schedule adds current at an explicit future bin. Callers implementing
// the synaptic delivery rule (spec §4.3) are responsible for choosing
// deliverAtBin > bin(t_now) themselves; Schedule does not re-derive "now".
func (s *Scheduler) Schedule(deliverAtBin int64, post int, current float64) error {
	return s.add(deliverAtBin, post, current)
}

func (s *Scheduler) add(bin int64, post int, current float64) error {
	if post < 0 || post >= s.neuronN {
		return fmt.Errorf("scheduler: neuron id %d out of range [0,%d)", post, s.neuronN)
	}
	s.pending[key{bin: bin, neuron: post}] += current
	atomic.AddInt64(&s.scheduled, 1)
	return nil
}

// Drain removes and returns every entry at nowBin as a dense per-neuron
// current vector of length neuronN. Entries for nowBin are deleted from
// the table; entries for other bins are untouched.
func (s *Scheduler) Drain(nowBin int64) []float64 {
	I := make([]float64, s.neuronN)
	for n := 0; n < s.neuronN; n++ {
		k := key{bin: nowBin, neuron: n}
		if v, ok := s.pending[k]; ok {
			I[n] = v
			delete(s.pending, k)
			atomic.AddInt64(&s.drained, 1)
		}
	}
	return I
}

// Reset clears every pending entry, regardless of bin. Used by Network.Reset.
func (s *Scheduler) Reset() {
	s.pending = make(map[key]float64)
}

// Stats returns lifetime schedule/drain counters, useful for driver-level
// diagnostics; the core itself never reads them.
func (s *Scheduler) Stats() (scheduled, drained int64) {
	return atomic.LoadInt64(&s.scheduled), atomic.LoadInt64(&s.drained)
}
