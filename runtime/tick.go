package runtime

import (
	"log/slog"

	"github.com/patrickgillette/NeuroNet/coordinator"
)

// Tick executes spec §4.7's one-tick orchestration: encode observations
// into scheduled input spikes, step the network, route output spikes to
// decoders, poll decoders for actions and apply any that fire, then
// evaluate the goal and apply a reward exactly once if it's non-zero.
//
// logger may be nil; when set it receives Debug-level tick-by-tick detail,
// matching the ambient logging convention the demo driver uses (spec §9
// "Driver-level logging ... must be injected" — this package accepts a
// logger, it never reaches for a global one).
func Tick(net *Network, io *coordinator.Coordinator, env coordinator.Environment, goal coordinator.Goal, t, dtMs, injectScale float64, logger *slog.Logger) (map[string]interface{}, error) {
	obsBefore := env.Observe(t)

	events, err := io.EncodeObservations(t, obsBefore)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if err := net.Inject(t+ev.OffsetMs, ev.NeuronID, injectScale); err != nil {
			return nil, err
		}
	}

	spikes, err := net.Step(t, dtMs)
	if err != nil {
		return nil, err
	}
	for _, id := range spikes {
		io.OnOutputSpike(t, id)
	}

	actions := io.MaybeEmitActions(t)
	if len(actions) > 0 {
		if err := env.ApplyAction(t, actions); err != nil {
			return nil, err
		}
	}

	obsAfter := env.Observe(t)
	r := goal.Evaluate(t, obsBefore, actions, obsAfter)
	if r != 0 {
		if err := net.ApplyReward(r); err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Debug("reward applied", "t", t, "reward", r)
		}
	}

	if logger != nil {
		logger.Debug("tick complete", "t", t, "spikes", len(spikes), "actions", len(actions))
	}
	return actions, nil
}
