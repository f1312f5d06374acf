package simulator

import (
	"sync"
	"time"

	"github.com/vid2scene/api/internal/model"
)

// Default timing
const (
	DefaultTickInterval = 50 * time.Millisecond
	DefaultGraceDelay   = 500 * time.Millisecond
)

// Handle identifies one run. The zero Handle never names a run.
type Handle uint64

// Callbacks receive run events. They are invoked from the run's goroutine
// without the simulator lock held, so they may call Start, Cancel and
// Snapshot but never Wait or Close. An event can race a concurrent Cancel;
// consumers that care must compare the handle with the one they hold.
type Callbacks struct {
	OnProgress      func(Handle, Progress)
	OnStageComplete func(Handle, model.ProcessingStage)
	OnComplete      func(Handle)
}

// Config holds simulator timing. Zero values select the defaults; a
// negative GraceDelay fires completion on the tick that reaches 100%.
type Config struct {
	TickInterval time.Duration
	GraceDelay   time.Duration
}

// Simulator drives at most one Run at a time off a ticker
type Simulator struct {
	tick  time.Duration
	grace time.Duration

	mu     sync.Mutex
	last   Handle
	active *activeRun

	wg sync.WaitGroup
}

type activeRun struct {
	handle Handle
	run    *Run
	cb     Callbacks
	stop   chan struct{}
}

// New creates a Simulator, filling zero timings with the defaults
func New(cfg Config) *Simulator {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.GraceDelay < 0 {
		cfg.GraceDelay = 0
	} else if cfg.GraceDelay == 0 {
		cfg.GraceDelay = DefaultGraceDelay
	}
	return &Simulator{tick: cfg.TickInterval, grace: cfg.GraceDelay}
}

// Start cancels any active run and begins a new one over stages
func (s *Simulator) Start(stages []model.ProcessingStage, cb Callbacks) (Handle, error) {
	run, err := NewRun(stages)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.cancelLocked()
	s.last++
	ar := &activeRun{
		handle: s.last,
		run:    run,
		cb:     cb,
		stop:   make(chan struct{}),
	}
	s.active = ar
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(ar)
	return ar.handle, nil
}

// Cancel stops the run named by h. It returns false, doing nothing, when
// h is not the active run.
func (s *Simulator) Cancel(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.handle != h {
		return false
	}
	s.cancelLocked()
	return true
}

// Stop cancels whatever run is active
func (s *Simulator) Stop() {
	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()
}

func (s *Simulator) cancelLocked() {
	if s.active == nil {
		return
	}
	close(s.active.stop)
	s.active = nil
}

// Snapshot returns the active run's progress, or the zero Progress when idle
func (s *Simulator) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return Progress{}
	}
	return s.active.run.Progress()
}

// Active returns the handle of the running simulation, if any
func (s *Simulator) Active() (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return 0, false
	}
	return s.active.handle, true
}

// Wait blocks until every run goroutine has exited
func (s *Simulator) Wait() {
	s.wg.Wait()
}

// Close cancels the active run and waits for its goroutine
func (s *Simulator) Close() {
	s.Stop()
	s.Wait()
}

func (s *Simulator) loop(ar *activeRun) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ar.stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if s.active != ar {
			s.mu.Unlock()
			return
		}
		finished := ar.run.Advance(s.tick)
		snap := ar.run.Progress()
		done := ar.run.Done()
		s.mu.Unlock()

		if ar.cb.OnStageComplete != nil {
			for _, st := range finished {
				ar.cb.OnStageComplete(ar.handle, st)
			}
		}
		if ar.cb.OnProgress != nil {
			ar.cb.OnProgress(ar.handle, snap)
		}
		if done {
			break
		}
	}

	// Hold at 100% so the final frame can render before completion fires.
	timer := time.NewTimer(s.grace)
	defer timer.Stop()
	select {
	case <-ar.stop:
		return
	case <-timer.C:
	}

	s.mu.Lock()
	if s.active != ar {
		s.mu.Unlock()
		return
	}
	s.active = nil
	s.mu.Unlock()

	if ar.cb.OnComplete != nil {
		ar.cb.OnComplete(ar.handle)
	}
}
