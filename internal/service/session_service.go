package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vid2scene/api/internal/dataset"
	"github.com/vid2scene/api/internal/logging"
	"github.com/vid2scene/api/internal/metrics"
	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/session"
	"github.com/vid2scene/api/internal/simulator"
	"github.com/vid2scene/api/internal/validation"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionOptions configures every session the service opens
type SessionOptions struct {
	Stages    []model.ProcessingStage
	Gate      *validation.Gate
	Source    dataset.Source
	Simulator simulator.Config
	Notifier  session.Notifier
	Logger    logging.Logger
	Storage   *UploadService
}

type entry struct {
	ctrl *session.Controller
	sim  *simulator.Simulator
}

// SessionService keeps the in-memory registry of live sessions. Each
// session owns its own simulator so at most one run is active per session.
type SessionService struct {
	opts SessionOptions

	mu       sync.RWMutex
	sessions map[string]*entry
}

func NewSessionService(opts SessionOptions) *SessionService {
	if opts.Stages == nil {
		opts.Stages = model.DefaultStages()
	}
	if opts.Gate == nil {
		opts.Gate = validation.NewGate(0)
	}
	if opts.Source == nil {
		opts.Source = dataset.EmbeddedSource{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &SessionService{
		opts:     opts,
		sessions: make(map[string]*entry),
	}
}

// Stages returns the stage table sessions run through
func (s *SessionService) Stages() []model.ProcessingStage {
	return s.opts.Stages
}

// Create opens a session in idle mode and preloads its dataset
func (s *SessionService) Create(ctx context.Context) (*session.Controller, error) {
	id := uuid.New().String()
	sim := simulator.New(s.opts.Simulator)

	release := func(model.FileRef) {}
	if s.opts.Storage != nil {
		release = s.opts.Storage.Release
	}

	ctrl := session.New(session.Config{
		ID:             id,
		Stages:         s.opts.Stages,
		Gate:           s.opts.Gate,
		Source:         s.opts.Source,
		Runner:         sim,
		Logger:         s.opts.Logger,
		Notifier:       s.opts.Notifier,
		OnFileReleased: release,
	})
	ctrl.Preload(ctx)

	s.mu.Lock()
	s.sessions[id] = &entry{ctrl: ctrl, sim: sim}
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	s.opts.Logger.Log(logging.LevelInfo, "Session created", logging.Fields{logging.FieldSessionID: id})
	return ctrl, nil
}

// Get returns the session with the given id
func (s *SessionService) Get(id string) (*session.Controller, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.ctrl, nil
}

// Remove closes a session and drops it from the registry
func (s *SessionService) Remove(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.ctrl.Close()
	e.sim.Close()
	metrics.ActiveSessions.Set(float64(count))
	s.opts.Logger.Log(logging.LevelInfo, "Session closed", logging.Fields{logging.FieldSessionID: id})
	return nil
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Expire removes sessions that have not changed for maxIdle. Sessions that
// are processing are kept.
func (s *SessionService) Expire(now time.Time, maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	var stale []string
	s.mu.RLock()
	for id, e := range s.sessions {
		if e.ctrl.Mode() == model.ModeProcessing {
			continue
		}
		if now.Sub(e.ctrl.UpdatedAt()) >= maxIdle {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if s.Remove(id) == nil {
			removed++
		}
	}
	return removed
}

// Close shuts every session down
func (s *SessionService) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range all {
		e.ctrl.Close()
		e.sim.Close()
	}
	metrics.ActiveSessions.Set(0)
}
