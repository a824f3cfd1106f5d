package workflow

import (
	"fmt"
	"time"
)

// Step is one phase of the simulated analysis.
type Step struct {
	MessageKey string
	Progress   int
	Duration   time.Duration
}

// Simulation is the fixed choreography shown while processing. Its state is derived from
// the elapsed time since processing started, so no goroutine drives it.
type Simulation struct {
	steps []Step
	total time.Duration
}

var defaultSteps = []struct {
	progress int
	ms       int
}{
	{15, 1500},
	{35, 2000},
	{55, 1800},
	{75, 1500},
	{95, 1200},
	{100, 800},
}

// DefaultSimulation runs at real speed.
func DefaultSimulation() Simulation {
	return NewSimulation(1)
}

// NewSimulation scales every step duration by 1/speed. A speed of 2 finishes twice as fast;
// non-positive speeds are treated as 1.
func NewSimulation(speed float64) Simulation {
	if speed <= 0 {
		speed = 1
	}
	steps := make([]Step, 0, len(defaultSteps))
	for i, s := range defaultSteps {
		d := time.Duration(float64(time.Duration(s.ms)*time.Millisecond) / speed)
		steps = append(steps, Step{
			MessageKey: fmt.Sprintf("aiProcessing.steps.%d.message", i),
			Progress:   s.progress,
			Duration:   d,
		})
	}
	return newSimulation(steps)
}

func newSimulation(steps []Step) Simulation {
	var total time.Duration
	for _, s := range steps {
		total += s.Duration
	}
	return Simulation{steps: steps, total: total}
}

// Steps returns a copy of the step list.
func (s Simulation) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Total is the full duration of the analysis.
func (s Simulation) Total() time.Duration { return s.total }

// Status is the processing view at a point in time.
type Status struct {
	Step      Step
	StepIndex int
	Percent   int
	Remaining time.Duration
	Done      bool
}

// At reports the status after elapsed. Percent climbs linearly from the previous step's
// progress towards the current one.
func (s Simulation) At(elapsed time.Duration) Status {
	if len(s.steps) == 0 {
		return Status{Percent: 100, Done: true}
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= s.total {
		last := len(s.steps) - 1
		return Status{Step: s.steps[last], StepIndex: last, Percent: 100, Done: true}
	}
	var start time.Duration
	prev := 0
	for i, step := range s.steps {
		end := start + step.Duration
		if elapsed < end {
			pct := prev
			if step.Duration > 0 {
				pct += int(float64(step.Progress-prev) * float64(elapsed-start) / float64(step.Duration))
			}
			return Status{Step: step, StepIndex: i, Percent: pct, Remaining: s.total - elapsed}
		}
		start = end
		prev = step.Progress
	}
	last := len(s.steps) - 1
	return Status{Step: s.steps[last], StepIndex: last, Percent: 100, Done: true}
}
