package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vid2scene/api/internal/model"
)

func stagesMs(durations ...int) []model.ProcessingStage {
	ids := []string{"upload", "keyframes", "reconstruction", "optimization", "extra"}
	out := make([]model.ProcessingStage, len(durations))
	for i, d := range durations {
		out[i] = model.ProcessingStage{ID: ids[i%len(ids)], Duration: time.Duration(d) * time.Millisecond}
	}
	return out
}

func TestNewRun_Rejects(t *testing.T) {
	_, err := NewRun(nil)
	assert.ErrorIs(t, err, ErrNoStages)

	_, err = NewRun(stagesMs(0, 0))
	assert.ErrorIs(t, err, ErrNoStages)

	_, err = NewRun(stagesMs(100, -1))
	assert.Error(t, err)
}

func TestRun_ReachesExactlyHundredAtTotal(t *testing.T) {
	run, err := NewRun(stagesMs(2000, 3000, 4000, 2000))
	require.NoError(t, err)
	require.Equal(t, 11000*time.Millisecond, run.Total())

	step := 50 * time.Millisecond
	prev := 0.0
	var finishedIDs []string
	transitions := map[int]time.Duration{}
	lastIndex := 0

	for !run.Done() {
		for _, st := range run.Advance(step) {
			finishedIDs = append(finishedIDs, st.ID)
		}
		p := run.Progress()

		assert.GreaterOrEqual(t, p.Percent, prev, "progress went backwards at %v", p.Elapsed)
		prev = p.Percent

		if p.StageIndex != lastIndex {
			transitions[p.StageIndex] = p.Elapsed
			lastIndex = p.StageIndex
		}
		if !run.Done() {
			assert.Less(t, p.Percent, 100.0)
			assert.Less(t, p.Elapsed, run.Total())
		}
	}

	final := run.Progress()
	assert.Equal(t, 100.0, final.Percent)
	assert.Equal(t, 11000*time.Millisecond, final.Elapsed)
	assert.Equal(t, 3, final.StageIndex)
	assert.Equal(t, []string{"upload", "keyframes", "reconstruction", "optimization"}, finishedIDs)
	assert.Equal(t, map[int]time.Duration{
		1: 2000 * time.Millisecond,
		2: 5000 * time.Millisecond,
		3: 9000 * time.Millisecond,
	}, transitions)
}

func TestRun_PercentFormula(t *testing.T) {
	run, err := NewRun(stagesMs(2000, 3000, 4000, 2000))
	require.NoError(t, err)

	run.Advance(2500 * time.Millisecond)
	p := run.Progress()
	assert.Equal(t, 1, p.StageIndex)
	assert.Equal(t, "keyframes", p.StageID)
	assert.InDelta(t, 100*2500.0/11000.0, p.Percent, 1e-9)
}

func TestRun_LargeStepCrossesStages(t *testing.T) {
	run, err := NewRun(stagesMs(100, 100, 100))
	require.NoError(t, err)

	finished := run.Advance(250 * time.Millisecond)
	require.Len(t, finished, 2)
	assert.Equal(t, 2, run.Progress().StageIndex)
	assert.False(t, run.Done())

	finished = run.Advance(time.Hour)
	require.Len(t, finished, 1)
	assert.True(t, run.Done())
	assert.Equal(t, 2, run.Progress().StageIndex)
	assert.Equal(t, 100.0, run.Progress().Percent)
}

func TestRun_AdvanceAfterDoneIsNoop(t *testing.T) {
	run, err := NewRun(stagesMs(100))
	require.NoError(t, err)

	run.Advance(100 * time.Millisecond)
	require.True(t, run.Done())
	assert.Nil(t, run.Advance(100*time.Millisecond))
	assert.Equal(t, 100*time.Millisecond, run.Progress().Elapsed)
}

func TestRun_IgnoresNonPositiveSteps(t *testing.T) {
	run, err := NewRun(stagesMs(100))
	require.NoError(t, err)

	assert.Nil(t, run.Advance(0))
	assert.Nil(t, run.Advance(-time.Second))
	assert.Zero(t, run.Progress().Percent)
}

func TestRun_StagesIsCopy(t *testing.T) {
	in := stagesMs(100, 200)
	run, err := NewRun(in)
	require.NoError(t, err)

	in[0].Duration = time.Hour
	got := run.Stages()
	got[1].Duration = time.Hour

	assert.Equal(t, 300*time.Millisecond, run.Total())
	assert.Equal(t, 100*time.Millisecond, run.Stages()[0].Duration)
	assert.Equal(t, 200*time.Millisecond, run.Stages()[1].Duration)
}
