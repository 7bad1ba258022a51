package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBin_RoundsHalfAwayFromZero(t *testing.T) {
	require.Equal(t, int64(0), Bin(0.4))
	require.Equal(t, int64(1), Bin(0.5))
	require.Equal(t, int64(1), Bin(1.49))
	require.Equal(t, int64(2), Bin(1.5))
	require.Equal(t, int64(-1), Bin(-0.5))
}

func TestScheduler_InjectAndDrain(t *testing.T) {
	s, err := New(3)
	require.NoError(t, err)

	require.NoError(t, s.Inject(0, 1, 0.5))
	require.NoError(t, s.Inject(0.4, 1, 0.25)) // same bin (0), accumulates

	I := s.Drain(0)
	require.Equal(t, []float64{0, 0.75, 0}, I)

	// Entries are removed after drain; a second drain of the same bin is empty.
	I = s.Drain(0)
	require.Equal(t, []float64{0, 0, 0}, I)
}

func TestScheduler_ScheduleFutureBinUntouchedByEarlierDrain(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	require.NoError(t, s.Schedule(5, 0, 1.0))

	for b := int64(0); b < 5; b++ {
		I := s.Drain(b)
		require.Equal(t, []float64{0, 0}, I, "bin %d must be empty before delivery", b)
	}
	I := s.Drain(5)
	require.Equal(t, []float64{1.0, 0}, I)
}

func TestScheduler_RejectsOutOfRangeNeuron(t *testing.T) {
	s, err := New(1)
	require.NoError(t, err)

	require.Error(t, s.Inject(0, 5, 1))
	require.Error(t, s.Schedule(1, -1, 1))
}

func TestScheduler_Reset(t *testing.T) {
	s, err := New(1)
	require.NoError(t, err)
	require.NoError(t, s.Schedule(3, 0, 1))

	s.Reset()
	I := s.Drain(3)
	require.Equal(t, []float64{0}, I)
}

func TestScheduler_Stats(t *testing.T) {
	s, err := New(1)
	require.NoError(t, err)
	require.NoError(t, s.Inject(0, 0, 1))
	s.Drain(0)

	scheduled, drained := s.Stats()
	require.Equal(t, int64(1), scheduled)
	require.Equal(t, int64(1), drained)
}
