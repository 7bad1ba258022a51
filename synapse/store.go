package synapse

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when pre/post reference a neuron id the store
// was not told to expect (the neuron count passed to NewStore).
var ErrOutOfRange = errors.New("synapse: neuron id out of range")

// ErrUnknownIndex is returned when an operation names a synapse index the
// store never allocated.
var ErrUnknownIndex = errors.New("synapse: unknown synapse index")

// Synapse is a single directed connection. Index is assigned once by
// Store.Add and is never reused or reordered (spec §3).
type Synapse struct {
	Index   int
	Pre     int
	Post    int
	W       float64
	DelayMs float64
	Plastic bool
}

// Store owns the flat synapse array and the pre_id -> ordered synapse
// indices adjacency. There are no back-references from synapses to
// neurons; the neuron id space is only used to validate pre/post and to
// size the per-neuron adjacency slices (spec §9 "cyclic object graphs").
type Store struct {
	cfg       Config
	neuronN   int
	synapses  []Synapse
	outgoing  [][]int // pre_id -> ordered synapse indices
	postIndex [][]int // post_id -> ordered plastic synapse indices (secondary index, spec §9 open question 2)
	plastic   []int   // all plastic synapse indices, insertion order
}

// NewStore creates an empty synapse store sized for neuronN neurons. cfg's
// w_min/w_max bound every subsequent UpdateWeight call.
func NewStore(neuronN int, cfg Config) (*Store, error) {
	if neuronN <= 0 {
		return nil, fmt.Errorf("synapse: neuron count must be positive, got %d", neuronN)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		cfg:       cfg,
		neuronN:   neuronN,
		outgoing:  make([][]int, neuronN),
		postIndex: make([][]int, neuronN),
	}, nil
}

// Config returns the weight-clipping configuration.
func (s *Store) Config() Config { return s.cfg }

// Len returns the number of synapses ever added.
func (s *Store) Len() int { return len(s.synapses) }

// Add appends a new synapse and returns its final index. pre/post must be
// valid neuron ids; self-loops (pre == post) are allowed per spec §3.
func (s *Store) Add(pre, post int, w, delayMs float64, plastic bool) (int, error) {
	if pre < 0 || pre >= s.neuronN || post < 0 || post >= s.neuronN {
		return 0, fmt.Errorf("%w: pre=%d post=%d, neuron count %d", ErrOutOfRange, pre, post, s.neuronN)
	}
	if delayMs < 0 {
		return 0, fmt.Errorf("synapse: delay_ms must be non-negative, got %v", delayMs)
	}
	idx := len(s.synapses)
	s.synapses = append(s.synapses, Synapse{
		Index:   idx,
		Pre:     pre,
		Post:    post,
		W:       w,
		DelayMs: delayMs,
		Plastic: plastic,
	})
	s.outgoing[pre] = append(s.outgoing[pre], idx)
	if plastic {
		s.postIndex[post] = append(s.postIndex[post], idx)
		s.plastic = append(s.plastic, idx)
	}
	return idx, nil
}

// PlasticIndices returns every plastic synapse index, in insertion order.
func (s *Store) PlasticIndices() []int { return s.plastic }

// Get returns a copy of the synapse at index idx.
func (s *Store) Get(idx int) (Synapse, error) {
	if idx < 0 || idx >= len(s.synapses) {
		return Synapse{}, fmt.Errorf("%w: %d", ErrUnknownIndex, idx)
	}
	return s.synapses[idx], nil
}

// Outgoing returns the ordered synapse indices for pre, in insertion order
// (spec §4.2 contract).
func (s *Store) Outgoing(pre int) []int {
	if pre < 0 || pre >= s.neuronN {
		return nil
	}
	return s.outgoing[pre]
}

// PlasticIncoming returns the ordered plastic-synapse indices whose Post
// equals post — the secondary index spec §9 recommends instead of an O(S)
// linear scan on every post-spike.
func (s *Store) PlasticIncoming(post int) []int {
	if post < 0 || post >= s.neuronN {
		return nil
	}
	return s.postIndex[post]
}

// UpdateWeight sets the weight of synapse idx, clipped to [w_min, w_max].
// Only the plasticity engine is expected to call this (spec §4.2 contract).
func (s *Store) UpdateWeight(idx int, w float64) error {
	if idx < 0 || idx >= len(s.synapses) {
		return fmt.Errorf("%w: %d", ErrUnknownIndex, idx)
	}
	s.synapses[idx].W = clip(w, s.cfg.WMin, s.cfg.WMax)
	return nil
}

func clip(w, lo, hi float64) float64 {
	if w < lo {
		return lo
	}
	if w > hi {
		return hi
	}
	return w
}
