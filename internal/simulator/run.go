// Package simulator fakes a multi-stage processing pipeline with timed progress.
package simulator

import (
	"errors"
	"fmt"
	"time"

	"github.com/vid2scene/api/internal/model"
)

// ErrNoStages is returned when a run is started without any stage time
var ErrNoStages = errors.New("simulator: no stages to run")

// Progress is a point-in-time view of a run
type Progress struct {
	StageIndex int           `json:"stageIndex"`
	StageID    string        `json:"stageId,omitempty"`
	Percent    float64       `json:"percent"`
	Elapsed    time.Duration `json:"-"`
}

// Run is the virtual-time state of one simulation. It holds no timers;
// Advance moves it forward and the rest is read back out.
type Run struct {
	stages      []model.ProcessingStage
	total       time.Duration
	index       int
	inStage     time.Duration
	elapsed     time.Duration
	lastPercent float64
	finalDone   bool
}

// NewRun validates the stage table and returns a run at 0%
func NewRun(stages []model.ProcessingStage) (*Run, error) {
	if len(stages) == 0 {
		return nil, ErrNoStages
	}
	for _, s := range stages {
		if s.Duration < 0 {
			return nil, fmt.Errorf("simulator: stage %q has negative duration", s.ID)
		}
	}
	total := model.TotalDuration(stages)
	if total <= 0 {
		return nil, ErrNoStages
	}

	cp := make([]model.ProcessingStage, len(stages))
	copy(cp, stages)
	return &Run{stages: cp, total: total}, nil
}

// Advance adds dt to the run and returns the stages that finished during
// the step, in order. Time left over when a stage finishes carries into
// the next stage. The final stage is never left; it is reported finished
// once the grand total is reached.
func (r *Run) Advance(dt time.Duration) []model.ProcessingStage {
	if dt <= 0 || r.finalDone {
		return nil
	}

	r.elapsed += dt
	r.inStage += dt

	var finished []model.ProcessingStage
	last := len(r.stages) - 1
	for r.index < last && r.inStage >= r.stages[r.index].Duration {
		r.inStage -= r.stages[r.index].Duration
		finished = append(finished, r.stages[r.index])
		r.index++
	}

	if r.elapsed >= r.total {
		r.finalDone = true
		finished = append(finished, r.stages[last])
	}

	if p := r.percent(); p > r.lastPercent {
		r.lastPercent = p
	}
	return finished
}

func (r *Run) percent() float64 {
	var completed time.Duration
	for i := 0; i < r.index; i++ {
		completed += r.stages[i].Duration
	}
	p := 100 * float64(completed+r.inStage) / float64(r.total)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Done reports whether the run has reached 100%
func (r *Run) Done() bool {
	return r.finalDone
}

// Total is the sum of all stage durations
func (r *Run) Total() time.Duration {
	return r.total
}

// Progress returns the current snapshot
func (r *Run) Progress() Progress {
	return Progress{
		StageIndex: r.index,
		StageID:    r.stages[r.index].ID,
		Percent:    r.lastPercent,
		Elapsed:    r.elapsed,
	}
}

// Stages returns a copy of the stage table
func (r *Run) Stages() []model.ProcessingStage {
	cp := make([]model.ProcessingStage, len(r.stages))
	copy(cp, r.stages)
	return cp
}
