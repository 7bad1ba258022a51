package plasticity

import (
	"errors"
	"fmt"
	"math"

	"github.com/patrickgillette/NeuroNet/synapse"
)

// ErrNegativeDt is returned by Decay when called with a time earlier than
// the last call, which would imply time running backwards (spec §7).
var ErrNegativeDt = errors.New("plasticity: negative time delta between ticks")

// trace holds the per-plastic-synapse state spec §3 calls for: pre/post
// traces (non-negative) and a signed eligibility accumulator.
type trace struct {
	pre  float64
	post float64
	elig float64
}

// Engine owns the decaying traces and eligibility for every plastic
// synapse in a Store, plus the single global t_last clock spec §3/§4.4
// describe. It mutates Store weights only through Store.UpdateWeight, on
// ApplyReward.
type Engine struct {
	cfg    Config
	store  *synapse.Store
	traces map[int]*trace // synapse index -> trace state
	tLast  float64
	primed bool // false until the first decay step establishes t_last
}

// New creates a plasticity engine bound to store. cfg must validate.
func New(store *synapse.Store, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, store: store, traces: make(map[int]*trace)}
	e.syncTraces()
	return e, nil
}

// syncTraces allocates zeroed trace state for any plastic synapse the
// store knows about but the engine hasn't seen yet. Safe to call after new
// plastic synapses are added to the store mid-run.
func (e *Engine) syncTraces() {
	for _, idx := range e.store.PlasticIndices() {
		if _, ok := e.traces[idx]; !ok {
			e.traces[idx] = &trace{}
		}
	}
}

// Reset clears every trace and eligibility and forgets t_last; it does not
// touch synapse weights (spec §5 "Reset ... does not zero weights").
func (e *Engine) Reset() {
	e.traces = make(map[int]*trace)
	e.syncTraces()
	e.tLast = 0
	e.primed = false
}

// Decay applies spec §4.4's decay step: on the first call it only
// establishes t_last (there is no prior time to measure Δt against); every
// call after that multiplies every trace and eligibility by
// exp(-Δt/tau). Negative Δt (time running backwards) is rejected per
// spec §7 "numeric hazards".
func (e *Engine) Decay(t float64) error {
	e.syncTraces()
	if !e.primed {
		e.tLast = t
		e.primed = true
		return nil
	}
	dt := t - e.tLast
	if dt < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDt, dt)
	}
	e.tLast = t
	if len(e.traces) == 0 {
		return nil
	}
	decayTrace := math.Exp(-dt / e.cfg.TauTraceMs)
	decayElig := math.Exp(-dt / e.cfg.TauEligMs)
	for _, tr := range e.traces {
		tr.pre = flushSubnormal(tr.pre * decayTrace)
		tr.post = flushSubnormal(tr.post * decayTrace)
		tr.elig = flushSubnormal(tr.elig * decayElig)
	}
	return nil
}

// OnPreSpike applies spec §4.4's pre-spike bump to every plastic outgoing
// synapse of pre: pre_trace += A_pre, eligibility += A_pre * post_trace.
func (e *Engine) OnPreSpike(pre int) {
	e.syncTraces()
	for _, idx := range e.store.Outgoing(pre) {
		tr, ok := e.traces[idx]
		if !ok {
			continue // non-plastic synapse
		}
		tr.pre += e.cfg.APre
		tr.elig += e.cfg.APre * tr.post
	}
}

// OnPostSpike applies spec §4.4's post-spike bump to every plastic synapse
// whose Post equals post, via the secondary index (spec §9 open question 2):
// post_trace += A_post, eligibility += A_post * pre_trace.
func (e *Engine) OnPostSpike(post int) {
	e.syncTraces()
	for _, idx := range e.store.PlasticIncoming(post) {
		tr := e.traces[idx]
		tr.post += e.cfg.APost
		tr.elig += e.cfg.APost * tr.pre
	}
}

// ApplyReward commits, for every plastic synapse, w_new = clip(w + eta*r*eligibility, w_min, w_max)
// via Store.UpdateWeight. Eligibility is left untouched by reward itself —
// only Decay changes it (spec §4.4 "Eligibility is not reset on reward").
// r == 0 is a no-op (spec §8 property 8), though the runtime is expected
// not to call this at all when r == 0 (spec §4.7 step 7).
func (e *Engine) ApplyReward(r float64) error {
	if r == 0 {
		return nil
	}
	for _, idx := range e.store.PlasticIndices() {
		tr := e.traces[idx]
		syn, err := e.store.Get(idx)
		if err != nil {
			return err
		}
		wNew := syn.W + e.cfg.Eta*r*tr.elig
		if err := e.store.UpdateWeight(idx, wNew); err != nil {
			return err
		}
	}
	return nil
}

// Eligibility returns the current eligibility of a plastic synapse, for
// tests and diagnostics.
func (e *Engine) Eligibility(idx int) float64 {
	if tr, ok := e.traces[idx]; ok {
		return tr.elig
	}
	return 0
}

// Traces returns the current (pre_trace, post_trace) of a plastic synapse.
func (e *Engine) Traces(idx int) (pre, post float64) {
	if tr, ok := e.traces[idx]; ok {
		return tr.pre, tr.post
	}
	return 0, 0
}

func flushSubnormal(v float64) float64 {
	// spec §7: "Subnormal traces may be flushed to zero."
	if v != 0 && math.Abs(v) < minNormalMagnitude {
		return 0
	}
	return v
}

const minNormalMagnitude = 2.2250738585072014e-308 // smallest positive float64 normal
