package simulator

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vid2scene/api/internal/model"
)

type recorder struct {
	mu        sync.Mutex
	progress  []Progress
	stages    []string
	completed int32
	done      chan struct{}
	once      sync.Once
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnProgress: func(_ Handle, p Progress) {
			r.mu.Lock()
			r.progress = append(r.progress, p)
			r.mu.Unlock()
		},
		OnStageComplete: func(_ Handle, st model.ProcessingStage) {
			r.mu.Lock()
			r.stages = append(r.stages, st.ID)
			r.mu.Unlock()
		},
		OnComplete: func(Handle) {
			atomic.AddInt32(&r.completed, 1)
			r.once.Do(func() { close(r.done) })
		},
	}
}

func (r *recorder) snapshot() ([]Progress, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Progress(nil), r.progress...), append([]string(nil), r.stages...)
}

func fastSimulator() *Simulator {
	return New(Config{TickInterval: 5 * time.Millisecond, GraceDelay: 20 * time.Millisecond})
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, DefaultTickInterval, s.tick)
	assert.Equal(t, DefaultGraceDelay, s.grace)

	s = New(Config{GraceDelay: -1})
	assert.Zero(t, s.grace)
}

func TestSimulator_CompletesOnceAfterTotal(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sim := fastSimulator()
	defer sim.Close()

	rec := newRecorder()
	stages := stagesMs(20, 30, 40, 20)
	total := model.TotalDuration(stages)

	started := time.Now()
	h, err := sim.Start(stages, rec.callbacks())
	require.NoError(t, err)
	assert.NotZero(t, h)

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback never fired")
	}
	elapsed := time.Since(started)
	assert.GreaterOrEqual(t, elapsed, total+20*time.Millisecond)

	// Give a stray second completion a chance to show up.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rec.completed))

	progress, stageIDs := rec.snapshot()
	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i].Percent, progress[i-1].Percent)
	}
	assert.Equal(t, 100.0, progress[len(progress)-1].Percent)
	assert.Equal(t, []string{"upload", "keyframes", "reconstruction", "optimization"}, stageIDs)

	_, active := sim.Active()
	assert.False(t, active)
	assert.Equal(t, Progress{}, sim.Snapshot())
}

func TestSimulator_CancelResets(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sim := fastSimulator()
	defer sim.Close()

	rec := newRecorder()
	h, err := sim.Start(stagesMs(1000, 1000), rec.callbacks())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sim.Snapshot().Percent > 0
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, sim.Cancel(h))
	snap := sim.Snapshot()
	assert.Equal(t, 0, snap.StageIndex)
	assert.Equal(t, 0.0, snap.Percent)

	// Idempotent.
	assert.False(t, sim.Cancel(h))
	assert.False(t, sim.Cancel(h+100))

	sim.Wait()
	assert.Equal(t, int32(0), atomic.LoadInt32(&rec.completed))
}

func TestSimulator_CancelIdleIsNoop(t *testing.T) {
	sim := fastSimulator()

	assert.False(t, sim.Cancel(0))
	assert.False(t, sim.Cancel(1))
	sim.Stop()
	assert.Equal(t, Progress{}, sim.Snapshot())
}

func TestSimulator_CancelDuringGrace(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sim := New(Config{TickInterval: 5 * time.Millisecond, GraceDelay: time.Second})
	defer sim.Close()

	rec := newRecorder()
	h, err := sim.Start(stagesMs(10), rec.callbacks())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sim.Snapshot().Percent == 100
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, sim.Cancel(h))
	sim.Wait()
	assert.Equal(t, int32(0), atomic.LoadInt32(&rec.completed))
}

func TestSimulator_RestartCancelsPrevious(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sim := fastSimulator()
	defer sim.Close()

	first := newRecorder()
	h1, err := sim.Start(stagesMs(200), first.callbacks())
	require.NoError(t, err)

	second := newRecorder()
	h2, err := sim.Start(stagesMs(20), second.callbacks())
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	active, ok := sim.Active()
	require.True(t, ok)
	assert.Equal(t, h2, active)

	select {
	case <-second.done:
	case <-time.After(5 * time.Second):
		t.Fatal("second run never completed")
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first.completed))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second.completed))
	assert.False(t, sim.Cancel(h1))
}

func TestSimulator_StartRejectsEmptyStages(t *testing.T) {
	sim := fastSimulator()

	h, err := sim.Start(nil, Callbacks{})
	assert.ErrorIs(t, err, ErrNoStages)
	assert.Zero(t, h)

	_, ok := sim.Active()
	assert.False(t, ok)
}

func TestSimulator_CallbackMayCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sim := fastSimulator()
	defer sim.Close()

	var ticks int32
	h, err := sim.Start(stagesMs(1000), Callbacks{
		OnProgress: func(h Handle, _ Progress) {
			if atomic.AddInt32(&ticks, 1) == 3 {
				sim.Cancel(h)
			}
		},
	})
	require.NoError(t, err)

	sim.Wait()
	assert.Equal(t, int32(3), atomic.LoadInt32(&ticks))
	assert.False(t, sim.Cancel(h))
}
