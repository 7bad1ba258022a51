// Package runtime implements the Network facade and the per-tick
// orchestration (spec §4.7, §4.8): the single owner of neuron state,
// synapse store, pending-current table, and plasticity state (spec §5
// "Shared resources").
package runtime

import (
	"github.com/patrickgillette/NeuroNet/neuron"
	"github.com/patrickgillette/NeuroNet/plasticity"
	"github.com/patrickgillette/NeuroNet/scheduler"
	"github.com/patrickgillette/NeuroNet/synapse"
)

// Network owns every subsystem spec §4.8's step ordering touches: the LIF
// pool, the synapse store, the delayed-current scheduler, and the
// plasticity engine. Its methods are the sole mutators of that state
// (spec §5 "Exclusive mutation discipline").
type Network struct {
	Pool       *neuron.Pool
	Synapses   *synapse.Store
	Scheduler  *scheduler.Scheduler
	Plasticity *plasticity.Engine
}

// NewNetwork builds a network sized for n neurons. n is normally the
// return value of population.Core.Materialize.
func NewNetwork(n int, lifCfg neuron.Config, synCfg synapse.Config, plCfg plasticity.Config) (*Network, error) {
	pool, err := neuron.NewPool(n, lifCfg)
	if err != nil {
		return nil, err
	}
	store, err := synapse.NewStore(n, synCfg)
	if err != nil {
		return nil, err
	}
	sched, err := scheduler.New(n)
	if err != nil {
		return nil, err
	}
	eng, err := plasticity.New(store, plCfg)
	if err != nil {
		return nil, err
	}
	return &Network{Pool: pool, Synapses: store, Scheduler: sched, Plasticity: eng}, nil
}

// AddSynapse adds a synapse to the store. Available any time after
// construction — spec §3 only forbids adding synapses *before*
// materialization, which by construction has already happened here.
func (net *Network) AddSynapse(pre, post int, w, delayMs float64, plastic bool) (int, error) {
	return net.Synapses.Add(pre, post, w, delayMs, plastic)
}

// Inject schedules an external current directly into bin(t), bypassing
// the synaptic delivery rule — this is how encoders stimulate the network
// (spec §4.3 "External injections").
func (net *Network) Inject(t float64, neuronID int, current float64) error {
	return net.Scheduler.Inject(t, neuronID, current)
}

// Step executes spec §4.8's authoritative ordering for one tick of size
// dtMs at time t: drain pending currents for bin(t), integrate neurons in
// ascending id order, reschedule synaptic delivery for every spike, then
// run the plasticity decay/pre-bump/post-bump sequence. It returns the
// ascending-id spike list.
func (net *Network) Step(t, dtMs float64) ([]int, error) {
	nowBin := scheduler.Bin(t)
	I := net.Scheduler.Drain(nowBin)

	spikes, err := net.Pool.Step(t, dtMs, I)
	if err != nil {
		return nil, err
	}

	for _, pre := range spikes {
		for _, idx := range net.Synapses.Outgoing(pre) {
			syn, err := net.Synapses.Get(idx)
			if err != nil {
				return nil, err
			}
			deliverAt := scheduler.Bin(t + syn.DelayMs)
			if deliverAt <= nowBin {
				// spec §4.3: delay rounds into the bin already drained this
				// tick — force one bin forward so no same-tick feedback is
				// possible.
				deliverAt = nowBin + 1
			}
			if err := net.Scheduler.Schedule(deliverAt, syn.Post, syn.W); err != nil {
				return nil, err
			}
		}
	}

	if err := net.Plasticity.Decay(t); err != nil {
		return nil, err
	}
	for _, id := range spikes {
		net.Plasticity.OnPreSpike(id)
	}
	for _, id := range spikes {
		net.Plasticity.OnPostSpike(id)
	}

	return spikes, nil
}

// ApplyReward commits a reward-modulated weight update across every
// plastic synapse (spec §4.4 "Reward application").
func (net *Network) ApplyReward(r float64) error {
	return net.Plasticity.ApplyReward(r)
}

// Reset clears neuron state, pending currents, traces, and eligibility —
// it does not zero synapse weights (spec §5).
func (net *Network) Reset() {
	net.Pool.Reset()
	net.Scheduler.Reset()
	net.Plasticity.Reset()
}
