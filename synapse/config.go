// Package synapse implements the flat synapse store: stable integer
// indices, outgoing adjacency kept in lockstep, and the weight-clipping
// update path used by the plasticity engine.
package synapse

import "fmt"

// Config bounds the weight range UpdateWeight clips to (spec §4.2: only
// update_weight clips, never Add — initial weights, including static
// wiring like lateral inhibition's w_inh, are stored exactly as given).
// w_min/w_max live here rather than per-synapse because the plasticity
// engine's clip step (spec §4.4) uses a single global range.
type Config struct {
	WMin float64 `toml:"w_min"`
	WMax float64 `toml:"w_max"`
}

// Validate rejects an inverted clipping range (w_min > w_max); an empty
// range with w_min == w_max is accepted.
func (c Config) Validate() error {
	if c.WMin > c.WMax {
		return fmt.Errorf("synapse: w_min (%v) must not exceed w_max (%v)", c.WMin, c.WMax)
	}
	return nil
}
