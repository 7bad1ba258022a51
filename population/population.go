// Package population implements the processing core: named contiguous
// neuron-id ranges declared before materialization, and the dense/lateral
// wiring helpers used to connect them once the network exists. See
// spec §3 "Population" and §4.5.
package population

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/patrickgillette/NeuroNet/synapse"
)

// ErrAlreadyMaterialized is returned by Add when called after Materialize.
var ErrAlreadyMaterialized = errors.New("population: network already materialized")

// ErrNotMaterialized is returned by Get when called before Materialize.
var ErrNotMaterialized = errors.New("population: network not yet materialized")

// ErrDuplicateName is returned by Add when a population name repeats.
var ErrDuplicateName = errors.New("population: duplicate population name")

// Range is a named contiguous neuron-id range [Start, Start+Size).
type Range struct {
	Name  string
	Start int
	Size  int
}

// IDs returns every neuron id in the range, in ascending order.
func (r Range) IDs() []int {
	ids := make([]int, r.Size)
	for i := range ids {
		ids[i] = r.Start + i
	}
	return ids
}

// Core declares populations, then materializes them into a contiguous id
// space exactly once (spec §3 "Lifecycle"). Wiring helpers only operate
// after materialization, since they need real neuron ids to create
// synapses with.
type Core struct {
	declared      []string
	sizes         map[string]int
	ranges        map[string]Range
	order         []string
	materialized  bool
	totalNeurons  int
}

// NewCore creates an empty, undeclared processing core.
func NewCore() *Core {
	return &Core{sizes: make(map[string]int), ranges: make(map[string]Range)}
}

// Add declares a population by name and size. Must be called before
// Materialize; names must be unique (spec §7).
func (c *Core) Add(name string, size int) error {
	if c.materialized {
		return fmt.Errorf("%w: cannot add population %q", ErrAlreadyMaterialized, name)
	}
	if _, exists := c.sizes[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if size <= 0 {
		return fmt.Errorf("population: size of %q must be positive, got %d", name, size)
	}
	c.sizes[name] = size
	c.declared = append(c.declared, name)
	return nil
}

// Materialize assigns contiguous id ranges in declaration order and
// returns the total neuron count, which the caller uses to size the
// neuron pool and synapse store. May only be called once (spec §3
// "materialized exactly once").
func (c *Core) Materialize() (int, error) {
	if c.materialized {
		return 0, fmt.Errorf("%w", ErrAlreadyMaterialized)
	}
	start := 0
	for _, name := range c.declared {
		size := c.sizes[name]
		c.ranges[name] = Range{Name: name, Start: start, Size: size}
		c.order = append(c.order, name)
		start += size
	}
	c.totalNeurons = start
	c.materialized = true
	return c.totalNeurons, nil
}

// Get returns the materialized range for name.
func (c *Core) Get(name string) (Range, error) {
	if !c.materialized {
		return Range{}, ErrNotMaterialized
	}
	r, ok := c.ranges[name]
	if !ok {
		return Range{}, fmt.Errorf("population: unknown population %q", name)
	}
	return r, nil
}

// TotalNeurons returns the network size after materialization.
func (c *Core) TotalNeurons() int {
	return c.totalNeurons
}

// Dense adds a synapse for every (i in pre, j in post) pair, with weight
// drawn uniformly from wRange using rng (spec §4.5 "dense"). rng must be
// seeded by the caller for reproducible tests.
func Dense(store *synapse.Store, rng *rand.Rand, pre, post Range, wRange [2]float64, delayMs float64, plastic bool) error {
	lo, hi := wRange[0], wRange[1]
	for _, i := range pre.IDs() {
		for _, j := range post.IDs() {
			w := lo + rng.Float64()*(hi-lo)
			if _, err := store.Add(i, j, w, delayMs, plastic); err != nil {
				return err
			}
		}
	}
	return nil
}

// LateralInhibition adds a non-plastic synapse of weight wInh for every
// ordered pair (i, j) with i != j inside pop (spec §4.5
// "lateral_inhibition").
func LateralInhibition(store *synapse.Store, pop Range, wInh, delayMs float64) error {
	ids := pop.IDs()
	for _, i := range ids {
		for _, j := range ids {
			if i == j {
				continue
			}
			if _, err := store.Add(i, j, wInh, delayMs, false); err != nil {
				return err
			}
		}
	}
	return nil
}
