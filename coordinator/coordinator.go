package coordinator

import "fmt"

// inputBinding is spec §3's InputBinding: {port_name, encoder, target_ids}.
// TargetIDs are informational only — encoders own their own id scheme.
type inputBinding struct {
	port     string
	encoder  Encoder
	targetID []int
}

// outputBinding is spec §3's OutputBinding: {port_name, decoder,
// source_ids_set, readout_period_ms, next_readout_at?}.
type outputBinding struct {
	port            string
	decoder         Decoder
	sourceIDs       map[int]bool
	readoutPeriodMs float64
	nextReadoutAt   float64
	hasNextReadout  bool
}

// Coordinator owns every input/output binding and the routing table from
// neuron id to the output bindings listening to it (spec §3 "Routing
// table"). It is bound once per run and may be Reset on demand.
type Coordinator struct {
	neuronN int
	inputs  []inputBinding
	outputs []outputBinding
	routing map[int][]int // neuron id -> output binding indices
}

// New creates an unbound coordinator for a network of neuronN neurons.
// neuronN bounds every id a binding names (spec §7 "Out-of-range neuron id
// in inject, add_synapse, or a binding: fail at call site").
func New(neuronN int) *Coordinator {
	return &Coordinator{neuronN: neuronN, routing: make(map[int][]int)}
}

// BindInput registers an encoder for port, with informational targetIDs.
func (c *Coordinator) BindInput(port string, encoder Encoder, targetIDs []int) error {
	if encoder == nil {
		return fmt.Errorf("coordinator: BindInput(%q): encoder must not be nil", port)
	}
	for _, id := range targetIDs {
		if id < 0 || id >= c.neuronN {
			return fmt.Errorf("coordinator: BindInput(%q): target id %d out of range [0,%d)", port, id, c.neuronN)
		}
	}
	c.inputs = append(c.inputs, inputBinding{port: port, encoder: encoder, targetID: targetIDs})
	return nil
}

// BindOutput registers a decoder for port, listening to sourceIDs, with a
// readout cadence of readoutPeriodMs. Extends the routing table for every
// id in sourceIDs (spec §4.6 "Binding").
func (c *Coordinator) BindOutput(port string, decoder Decoder, sourceIDs []int, readoutPeriodMs float64) error {
	if decoder == nil {
		return fmt.Errorf("coordinator: BindOutput(%q): decoder must not be nil", port)
	}
	if readoutPeriodMs <= 0 {
		return fmt.Errorf("coordinator: BindOutput(%q): readout_period_ms must be positive, got %v", port, readoutPeriodMs)
	}
	for _, id := range sourceIDs {
		if id < 0 || id >= c.neuronN {
			return fmt.Errorf("coordinator: BindOutput(%q): source id %d out of range [0,%d)", port, id, c.neuronN)
		}
	}
	set := make(map[int]bool, len(sourceIDs))
	for _, id := range sourceIDs {
		set[id] = true
	}
	idx := len(c.outputs)
	c.outputs = append(c.outputs, outputBinding{
		port:            port,
		decoder:         decoder,
		sourceIDs:       set,
		readoutPeriodMs: readoutPeriodMs,
	})
	for id := range set {
		c.routing[id] = append(c.routing[id], idx)
	}
	return nil
}

// EncodeObservations implements spec §4.6 "Encode": it observes the
// environment, runs every bound encoder whose port is present in the
// observation, and returns the (id, offset) stream. It does not inject —
// the caller (runtime.Tick) is responsible for calling
// scheduler.Inject(t+offset, id, strength) for each event (spec §4.6 step 3).
// Ports missing from obs are silently skipped (spec §7 "partial environments").
func (c *Coordinator) EncodeObservations(t float64, obs map[string]interface{}) ([]SpikeEvent, error) {
	var events []SpikeEvent
	for _, in := range c.inputs {
		observation, present := obs[in.port]
		if !present {
			continue
		}
		evs, err := in.encoder.Encode(t, observation)
		if err != nil {
			return nil, fmt.Errorf("coordinator: encoder for port %q: %w", in.port, err)
		}
		events = append(events, evs...)
	}
	return events, nil
}

// OnOutputSpike implements spec §4.6 "Route": every output binding
// listening to neuronID is notified, and its readout schedule is primed on
// the first spike it ever receives.
func (c *Coordinator) OnOutputSpike(t float64, neuronID int) {
	for _, idx := range c.routing[neuronID] {
		ob := &c.outputs[idx]
		if !ob.hasNextReadout {
			ob.nextReadoutAt = t + ob.readoutPeriodMs
			ob.hasNextReadout = true
		}
		ob.decoder.OnSpike(t, neuronID)
	}
}

// MaybeEmitActions implements spec §4.6 "Poll": every output binding whose
// readout is due (t >= next_readout_at) is advanced by one period and
// read out; non-null actions are collected per port.
func (c *Coordinator) MaybeEmitActions(t float64) map[string]interface{} {
	actions := make(map[string]interface{})
	for i := range c.outputs {
		ob := &c.outputs[i]
		if !ob.hasNextReadout || t < ob.nextReadoutAt {
			continue
		}
		ob.nextReadoutAt += ob.readoutPeriodMs
		if action, ok := ob.decoder.Readout(t); ok {
			actions[ob.port] = action
		}
	}
	return actions
}

// Reset implements spec §4.6 "Reset": every decoder is reset and every
// output binding's readout schedule is cleared. Network weights and
// bindings themselves are untouched.
func (c *Coordinator) Reset() {
	for i := range c.outputs {
		c.outputs[i].decoder.Reset()
		c.outputs[i].hasNextReadout = false
	}
}
