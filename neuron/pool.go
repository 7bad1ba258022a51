package neuron

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned when a neuron id or vector length falls outside
// the pool's dense id space [0, N).
var ErrOutOfRange = errors.New("neuron: id out of range")

// negInfinity is the "far-past" refractory sentinel: a freshly reset neuron
// is never refractory, because ref_until is unreachably in the past.
var negInfinity = math.Inf(-1)

// state is the mutable, per-neuron membrane state. Identity (the dense
// integer id in [0, N)) is the neuron's index into Pool.states and is never
// carried inside the struct itself.
type state struct {
	v        float64 // membrane potential
	refUntil float64 // timestamp (ms) until which this neuron is refractory
}

// Pool owns the dense array of LIF neurons. There is no per-neuron object;
// everything is a flat slice indexed by neuron id, so integration can sweep
// ascending ids without pointer chasing.
type Pool struct {
	cfg    Config
	states []state
}

// NewPool allocates a pool of n neurons, all starting at resting potential
// and not refractory. n must be positive and cfg must validate.
func NewPool(n int, cfg Config) (*Pool, error) {
	if n <= 0 {
		return nil, fmt.Errorf("neuron: pool size must be positive, got %d", n)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pool{cfg: cfg, states: make([]state, n)}
	p.Reset()
	return p, nil
}

// N returns the number of neurons in the pool.
func (p *Pool) N() int { return len(p.states) }

// Config returns the LIF parameters shared by every neuron in the pool.
func (p *Pool) Config() Config { return p.cfg }

// Reset returns every neuron to {v = v_rest, ref_until = -inf}, per spec §4.1.
func (p *Pool) Reset() {
	for i := range p.states {
		p.states[i] = state{v: p.cfg.VRest, refUntil: negInfinity}
	}
}

// Voltage returns the current membrane potential of neuron id.
func (p *Pool) Voltage(id int) (float64, error) {
	if id < 0 || id >= len(p.states) {
		return 0, fmt.Errorf("%w: id %d, pool size %d", ErrOutOfRange, id, len(p.states))
	}
	return p.states[id].v, nil
}

// RefractoryUntil returns the time (ms) up to which neuron id is refractory.
func (p *Pool) RefractoryUntil(id int) (float64, error) {
	if id < 0 || id >= len(p.states) {
		return 0, fmt.Errorf("%w: id %d, pool size %d", ErrOutOfRange, id, len(p.states))
	}
	return p.states[id].refUntil, nil
}

// Step integrates every neuron by one tick of size dtMs at simulation time
// t, given a dense per-neuron input-current vector I (len(I) must equal
// N()). It implements spec §4.1: neurons still inside their refractory
// window are pinned to v_reset and emit nothing; others take one Euler step
// and spike (resetting and starting a new refractory window) if they cross
// threshold. Spikes are returned in ascending neuron-id order, which is the
// order spec §4.1 and §4.8 require for all downstream processing.
func (p *Pool) Step(t, dtMs float64, I []float64) ([]int, error) {
	if len(I) != len(p.states) {
		return nil, fmt.Errorf("%w: current vector length %d, pool size %d", ErrOutOfRange, len(I), len(p.states))
	}
	var spikes []int
	c := p.cfg
	for id := range p.states {
		s := &p.states[id]
		if t < s.refUntil {
			s.v = c.VReset
			continue
		}
		s.v += (dtMs / c.TauMembMs) * (-(s.v - c.VRest) + c.RMembrane*I[id])
		if s.v >= c.VThresh {
			s.v = c.VReset
			s.refUntil = t + c.TauRefMs
			spikes = append(spikes, id)
		}
	}
	return spikes, nil
}
