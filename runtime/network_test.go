package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patrickgillette/NeuroNet/neuron"
	"github.com/patrickgillette/NeuroNet/plasticity"
	"github.com/patrickgillette/NeuroNet/synapse"
)

func testNet(t *testing.T, n int) *Network {
	t.Helper()
	net, err := NewNetwork(n,
		neuron.DefaultConfig(),
		synapse.Config{WMin: -5, WMax: 5},
		plasticity.Config{Eta: 0.1, TauTraceMs: 20, TauEligMs: 50, APre: 1, APost: 1},
	)
	require.NoError(t, err)
	return net
}

func TestNetwork_DelayedSynapse(t *testing.T) {
	// Scenario S2: one synapse 0->1, w=1.5, delay_ms=3. A strong injection
	// at t=0 makes neuron 0 spike at bin 0; neuron 1 must receive current
	// at bin 3, not earlier.
	net := testNet(t, 2)
	_, err := net.AddSynapse(0, 1, 1.5, 3, false)
	require.NoError(t, err)

	require.NoError(t, net.Inject(0, 0, 100))
	spikes, err := net.Step(0, 1)
	require.NoError(t, err)
	require.Equal(t, []int{0}, spikes)

	for bin := 1.0; bin < 3; bin++ {
		spikes, err = net.Step(bin, 1)
		require.NoError(t, err)
		require.Empty(t, spikes, "neuron 1 must not receive current before bin 3")
	}

	v1Before, err := net.Pool.Voltage(1)
	require.NoError(t, err)
	require.Equal(t, 0.0, v1Before)

	_, err = net.Step(3, 1)
	require.NoError(t, err)
	v1After, err := net.Pool.Voltage(1)
	require.NoError(t, err)
	require.Greater(t, v1After, 0.0, "neuron 1 must receive current exactly at bin 3")
}

func TestNetwork_SameBinDelayPromotion(t *testing.T) {
	// Scenario S3: synapse 0->1 with delay_ms=0. A pre-spike at bin 5 must
	// deliver to bin 6, not bin 5.
	net := testNet(t, 2)
	_, err := net.AddSynapse(0, 1, 1.0, 0, false)
	require.NoError(t, err)

	for bin := 0.0; bin < 5; bin++ {
		_, err := net.Step(bin, 1)
		require.NoError(t, err)
	}
	require.NoError(t, net.Inject(5, 0, 100))
	spikes, err := net.Step(5, 1)
	require.NoError(t, err)
	require.Equal(t, []int{0}, spikes)

	v1, _ := net.Pool.Voltage(1)
	require.Equal(t, 0.0, v1, "bin 5 drain must not include the delay-0 delivery")

	_, err = net.Step(6, 1)
	require.NoError(t, err)
	v1, _ = net.Pool.Voltage(1)
	require.Greater(t, v1, 0.0, "delivery must land in bin 6")
}

func TestNetwork_DelayMonotonicityProperty(t *testing.T) {
	net := testNet(t, 2)
	_, err := net.AddSynapse(0, 1, 1.0, 4.6, false) // rounds to 5
	require.NoError(t, err)

	require.NoError(t, net.Inject(10, 0, 100))
	_, err = net.Step(10, 1)
	require.NoError(t, err)

	for bin := 11; bin < 15; bin++ {
		_, err := net.Step(float64(bin), 1)
		require.NoError(t, err)
		v, _ := net.Pool.Voltage(1)
		require.Equal(t, 0.0, v, "bin %d: current must not arrive before round(10+4.6)=15", bin)
	}
	_, err = net.Step(15, 1)
	require.NoError(t, err)
	v, _ := net.Pool.Voltage(1)
	require.Greater(t, v, 0.0)
}

func TestNetwork_RewardModulatedLearning(t *testing.T) {
	// Scenario S5: one plastic synapse 0->1, w=0.0, eta=0.1. Pre-spike at
	// t=0, post-spike at t=1 (forced), reward at t=2.
	net := testNet(t, 2)
	idx, err := net.AddSynapse(0, 1, 0.0, 100 /* long delay: keep 0's spike from reaching 1 */, true)
	require.NoError(t, err)

	require.NoError(t, net.Inject(0, 0, 100))
	spikes, err := net.Step(0, 1)
	require.NoError(t, err)
	require.Equal(t, []int{0}, spikes)

	require.NoError(t, net.Inject(1, 1, 100))
	spikes, err = net.Step(1, 1)
	require.NoError(t, err)
	require.Equal(t, []int{1}, spikes)

	_, err = net.Step(2, 1)
	require.NoError(t, err)

	require.NoError(t, net.ApplyReward(1.0))
	syn, err := net.Synapses.Get(idx)
	require.NoError(t, err)
	require.Greater(t, syn.W, 0.0)

	wAfterPositive := syn.W
	require.NoError(t, net.ApplyReward(-1.0))
	syn, _ = net.Synapses.Get(idx)
	require.Less(t, syn.W, wAfterPositive)

	require.GreaterOrEqual(t, syn.W, net.Synapses.Config().WMin)
	require.LessOrEqual(t, syn.W, net.Synapses.Config().WMax)
}

func TestNetwork_WeightClippingAfterManyRewards(t *testing.T) {
	net := testNet(t, 2)
	idx, err := net.AddSynapse(0, 1, 0.0, 100, true)
	require.NoError(t, err)

	require.NoError(t, net.Inject(0, 0, 100))
	_, err = net.Step(0, 1)
	require.NoError(t, err)
	require.NoError(t, net.Inject(1, 1, 100))
	_, err = net.Step(1, 1)
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		require.NoError(t, net.ApplyReward(1.0))
	}
	syn, _ := net.Synapses.Get(idx)
	require.Equal(t, net.Synapses.Config().WMax, syn.W)
}

func TestNetwork_Reset(t *testing.T) {
	net := testNet(t, 2)
	idx, err := net.AddSynapse(0, 1, 0.5, 1, true)
	require.NoError(t, err)

	require.NoError(t, net.Inject(0, 0, 100))
	_, err = net.Step(0, 1)
	require.NoError(t, err)
	require.NoError(t, net.ApplyReward(1.0))

	syn, _ := net.Synapses.Get(idx)
	weightBefore := syn.W

	net.Reset()

	v, _ := net.Pool.Voltage(0)
	require.Equal(t, net.Pool.Config().VRest, v)

	syn, _ = net.Synapses.Get(idx)
	require.Equal(t, weightBefore, syn.W, "Reset must not zero weights")
}
