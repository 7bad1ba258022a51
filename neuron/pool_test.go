package neuron

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPool_RejectsBadConfig(t *testing.T) {
	_, err := NewPool(1, Config{VThresh: 0, VReset: 0, TauMembMs: 10, TauRefMs: 1})
	require.Error(t, err)

	_, err = NewPool(0, DefaultConfig())
	require.Error(t, err)
}

func TestPool_SingleNeuronThreshold(t *testing.T) {
	// Scenario S1 shape: N=1, v_thresh=1.0, v_reset=0, tau_m_ms=10, r_m=1,
	// tau_ref_ms=2, dt_ms=1. A constant 0.2 current only has a steady-state
	// membrane potential of r_m*I = 0.2 under this leaky rule, so it can
	// never cross a threshold of 1.0; a strong enough current is used here
	// so the crossing actually happens, and the resulting bin is checked
	// against the same Euler recurrence the pool implements rather than a
	// hand-picked bin number.
	pool, err := NewPool(1, DefaultConfig())
	require.NoError(t, err)

	const current = 2.0
	wantV := 0.0
	spikeBin := -1
	for bin := 0; bin < 20; bin++ {
		wantV += 0.1 * (-(wantV - 0) + current)
		spikes, err := pool.Step(float64(bin), 1.0, []float64{current})
		require.NoError(t, err)
		if len(spikes) > 0 {
			spikeBin = bin
			break
		}
		v, _ := pool.Voltage(0)
		require.InDelta(t, wantV, v, 1e-9, "bin %d", bin)
	}
	require.NotEqual(t, -1, spikeBin, "expected a spike well before bin 20 at this current")

	v, err := pool.Voltage(0)
	require.NoError(t, err)
	require.Equal(t, 0.0, v)

	// Refractory silence through the configured refractory window.
	spikes, err := pool.Step(float64(spikeBin)+1, 1.0, []float64{current})
	require.NoError(t, err)
	require.Empty(t, spikes)
	v, _ = pool.Voltage(0)
	require.Equal(t, 0.0, v, "voltage must be pinned to v_reset while refractory")
}

func TestPool_RefractorySeal(t *testing.T) {
	pool, err := NewPool(1, DefaultConfig())
	require.NoError(t, err)

	// Force a spike with a huge current at t=0.
	spikes, err := pool.Step(0, 1.0, []float64{100})
	require.NoError(t, err)
	require.Equal(t, []int{0}, spikes)

	refUntil, err := pool.RefractoryUntil(0)
	require.NoError(t, err)
	require.Equal(t, 2.0, refUntil)

	for tt := 0.0; tt < refUntil; tt += 0.5 {
		spikes, err := pool.Step(tt, 0.5, []float64{100})
		require.NoError(t, err)
		require.Empty(t, spikes, "neuron must not spike while t < ref_until")
		v, _ := pool.Voltage(0)
		require.Equal(t, 0.0, v)
	}
}

func TestPool_OutOfRangeErrors(t *testing.T) {
	pool, err := NewPool(2, DefaultConfig())
	require.NoError(t, err)

	_, err = pool.Voltage(5)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = pool.Step(0, 1, []float64{1})
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestPool_Reset(t *testing.T) {
	pool, err := NewPool(1, DefaultConfig())
	require.NoError(t, err)
	_, err = pool.Step(0, 1, []float64{100})
	require.NoError(t, err)

	pool.Reset()
	v, _ := pool.Voltage(0)
	require.Equal(t, pool.Config().VRest, v)
	refUntil, _ := pool.RefractoryUntil(0)
	require.True(t, refUntil < -1e300, "ref_until must be reset to the far-past sentinel")
}
