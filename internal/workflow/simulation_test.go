package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSimulationSchedule(t *testing.T) {
	sim := DefaultSimulation()
	steps := sim.Steps()
	require.Len(t, steps, 6)
	assert.Equal(t, 8800*time.Millisecond, sim.Total())

	wantProgress := []int{15, 35, 55, 75, 95, 100}
	for i, s := range steps {
		assert.Equal(t, wantProgress[i], s.Progress)
	}
	assert.Equal(t, "aiProcessing.steps.2.message", steps[2].MessageKey)
}

func TestSimulationAt(t *testing.T) {
	sim := DefaultSimulation()

	st := sim.At(0)
	assert.Equal(t, 0, st.StepIndex)
	assert.Equal(t, 0, st.Percent)
	assert.False(t, st.Done)

	st = sim.At(1500 * time.Millisecond)
	assert.Equal(t, 1, st.StepIndex)
	assert.Equal(t, 15, st.Percent)

	st = sim.At(2500 * time.Millisecond)
	assert.Equal(t, 1, st.StepIndex)
	assert.Equal(t, 25, st.Percent)
	assert.Equal(t, 6300*time.Millisecond, st.Remaining)

	st = sim.At(8800 * time.Millisecond)
	assert.True(t, st.Done)
	assert.Equal(t, 100, st.Percent)
	assert.Equal(t, 5, st.StepIndex)

	assert.Equal(t, 0, sim.At(-time.Second).Percent)
}

func TestSimulationSpeed(t *testing.T) {
	fast := NewSimulation(4)
	assert.Equal(t, 2200*time.Millisecond, fast.Total())
	assert.True(t, fast.At(2200*time.Millisecond).Done)
	assert.Equal(t, DefaultSimulation().Total(), NewSimulation(0).Total())
}
