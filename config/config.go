// Package config loads network configuration from TOML, the same library
// and pattern emer/emergent's econfig package uses (see
// github.com/emer/emergent/v2/econfig/io.go): a plain Go struct decoded
// with github.com/BurntSushi/toml, validated by the decoded sub-configs'
// own Validate methods rather than a second validation layer here.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/patrickgillette/NeuroNet/neuron"
	"github.com/patrickgillette/NeuroNet/plasticity"
	"github.com/patrickgillette/NeuroNet/synapse"
)

// PopulationSpec mirrors spec §6 "Population: {name, size}".
type PopulationSpec struct {
	Name string `toml:"name"`
	Size int    `toml:"size"`
}

// WiringSpec mirrors spec §6 "Wiring: {pre_pop, post_pop, w_range, delay_ms, plastic}".
// LateralInhibition wiring uses Pop/WInh instead of the pairwise fields.
type WiringSpec struct {
	Kind     string     `toml:"kind"` // "dense" or "lateral_inhibition"
	PrePop   string     `toml:"pre_pop"`
	PostPop  string     `toml:"post_pop"`
	WRange   [2]float64 `toml:"w_range"`
	Pop      string     `toml:"pop"`
	WInh     float64    `toml:"w_inh"`
	DelayMs  float64    `toml:"delay_ms"`
	Plastic  bool       `toml:"plastic"`
}

// OutputBindingSpec mirrors spec §6 "Output binding".
type OutputBindingSpec struct {
	Port            string  `toml:"port"`
	SourceIDs       []int   `toml:"source_ids"`
	ReadoutPeriodMs float64 `toml:"readout_period_ms"`
}

// Root is the top-level shape of a NeuroNet TOML config file.
type Root struct {
	Seed           int64                `toml:"seed"`
	InjectScale    float64              `toml:"inject_scale"`
	DtMs           float64              `toml:"dt_ms"`
	LIF            neuron.Config        `toml:"lif"`
	Plasticity     plasticity.Config    `toml:"plasticity"`
	Synapse        synapse.Config       `toml:"synapse"`
	Populations    []PopulationSpec     `toml:"population"`
	Wiring         []WiringSpec         `toml:"wiring"`
	OutputBindings []OutputBindingSpec  `toml:"output_binding"`
}

// Load reads and decodes a NeuroNet TOML config file from path.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var root Root
	if _, err := toml.Decode(string(data), &root); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return &root, nil
}

// Validate runs each embedded sub-config's own Validate, plus the
// structural checks that only make sense at the root level.
func (r *Root) Validate() error {
	if r.DtMs <= 0 {
		return fmt.Errorf("config: dt_ms must be positive, got %v", r.DtMs)
	}
	if err := r.LIF.Validate(); err != nil {
		return err
	}
	if err := r.Plasticity.Validate(); err != nil {
		return err
	}
	if err := r.Synapse.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(r.Populations))
	for _, p := range r.Populations {
		if p.Size <= 0 {
			return fmt.Errorf("config: population %q must have positive size, got %d", p.Name, p.Size)
		}
		if seen[p.Name] {
			return fmt.Errorf("config: duplicate population name %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
