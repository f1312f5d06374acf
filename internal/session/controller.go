// Package session owns the per-session upload/processing/results state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vid2scene/api/internal/dataset"
	"github.com/vid2scene/api/internal/logging"
	"github.com/vid2scene/api/internal/metrics"
	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/simulator"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrRejected          = errors.New("upload rejected")
)

// Validator is the upload gate
type Validator interface {
	Validate(model.UploadCandidate) model.ValidationResult
}

// Runner is the progress simulator
type Runner interface {
	Start(stages []model.ProcessingStage, cb simulator.Callbacks) (simulator.Handle, error)
	Cancel(h simulator.Handle) bool
}

// Config wires a Controller to its collaborators
type Config struct {
	ID       string
	Stages   []model.ProcessingStage
	Gate     Validator
	Source   dataset.Source
	Runner   Runner
	Logger   logging.Logger
	Notifier Notifier

	// OnFileReleased is called with a previously retained upload once a
	// newer upload replaces it or the session closes.
	OnFileReleased func(model.FileRef)

	Now func() time.Time
}

// Controller is the session state machine. All methods are safe for
// concurrent use.
type Controller struct {
	id       string
	stages   []model.ProcessingStage
	gate     Validator
	source   dataset.Source
	runner   Runner
	log      logging.Logger
	notifier Notifier
	release  func(model.FileRef)
	now      func() time.Time

	mu        sync.Mutex
	mode      model.SessionMode
	file      *model.FileRef
	dataset   *model.ReconstructionDataset
	ready     bool
	handle    simulator.Handle
	progress  simulator.Progress
	gen       uint64
	closed    bool
	createdAt time.Time
	updatedAt time.Time
}

// New builds a Controller in the idle mode. It does not load anything;
// call Preload for the best-effort startup fetch.
func New(cfg Config) *Controller {
	if cfg.Stages == nil {
		cfg.Stages = model.DefaultStages()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	if cfg.Source == nil {
		cfg.Source = dataset.EmbeddedSource{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.OnFileReleased == nil {
		cfg.OnFileReleased = func(model.FileRef) {}
	}

	now := cfg.Now()
	return &Controller{
		id:        cfg.ID,
		stages:    cfg.Stages,
		gate:      cfg.Gate,
		source:    cfg.Source,
		runner:    cfg.Runner,
		log:       cfg.Logger,
		notifier:  cfg.Notifier,
		release:   cfg.OnFileReleased,
		now:       cfg.Now,
		mode:      model.ModeIdle,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session id
func (c *Controller) ID() string {
	return c.id
}

// Stages returns the stage table processing runs through
func (c *Controller) Stages() []model.ProcessingStage {
	out := make([]model.ProcessingStage, len(c.stages))
	copy(out, c.stages)
	return out
}

// Preload fetches the dataset once at startup. Failure leaves the dataset
// empty and is only logged.
func (c *Controller) Preload(ctx context.Context) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	ds, err := c.load(ctx)
	if err != nil {
		return
	}

	c.mu.Lock()
	if c.gen == gen && c.mode == model.ModeIdle && !c.closed {
		c.dataset = ds
		c.touch()
	}
	c.mu.Unlock()
}

// Submit validates a candidate and, when it passes, accepts it. A rejected
// candidate returns ErrRejected and leaves the mode untouched.
func (c *Controller) Submit(ctx context.Context, cand model.UploadCandidate, ref model.FileRef) (model.ValidationResult, error) {
	result := c.gate.Validate(cand)
	if !result.Valid {
		c.Reject(cand, result)
		return result, fmt.Errorf("%w: %s", ErrRejected, result.Reason)
	}
	return result, c.Accept(ctx, cand, ref)
}

// Reject records a validation failure. The mode does not change.
func (c *Controller) Reject(cand model.UploadCandidate, result model.ValidationResult) {
	c.log.Log(logging.LevelWarn, "File validation failed", logging.Fields{
		logging.FieldSessionID: c.id,
		logging.FieldFileName:  cand.Name,
		logging.FieldFileSize:  cand.Size,
		logging.FieldFileType:  cand.MediaType,
		logging.FieldReason:    result.Reason,
	})
	metrics.UploadsTotal.WithLabelValues(metrics.UploadRejected).Inc()
	metrics.RejectionsTotal.WithLabelValues(result.Reason).Inc()
	c.notifier.Rejected(c.id, result.Reason)
}

// CanAccept reports whether an upload would be taken in the current mode
func (c *Controller) CanAccept() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acceptableLocked()
}

func (c *Controller) acceptableLocked() error {
	if c.closed {
		return fmt.Errorf("%w: session closed", ErrInvalidTransition)
	}
	switch c.mode {
	case model.ModeIdle, model.ModeViewingResults:
		return nil
	default:
		return fmt.Errorf("%w: cannot accept an upload while %s", ErrInvalidTransition, c.mode)
	}
}

// Accept takes an upload the gate already passed: the file is retained,
// any dataset is discarded and a simulation run starts.
func (c *Controller) Accept(ctx context.Context, cand model.UploadCandidate, ref model.FileRef) error {
	c.mu.Lock()
	if err := c.acceptableLocked(); err != nil {
		c.mu.Unlock()
		metrics.UploadsTotal.WithLabelValues(metrics.UploadRefused).Inc()
		return err
	}

	prevMode := c.mode
	prevFile := c.file
	prevDataset := c.dataset
	prevReady := c.ready

	var events []func()
	events = append(events, c.setModeLocked(model.ModeUploading))
	c.file = &ref
	c.dataset = nil
	c.ready = false
	c.progress = simulator.Progress{}
	c.gen++
	gen := c.gen

	h, err := c.runner.Start(c.stages, c.callbacks(gen))
	if err != nil {
		c.mode = prevMode
		c.file = prevFile
		c.dataset = prevDataset
		c.ready = prevReady
		c.mu.Unlock()
		logging.Error(c.log, "Failed to start processing", err, logging.Fields{logging.FieldSessionID: c.id})
		c.notifier.Failed(c.id, model.WSErrorProcessingFailed, "processing could not be started")
		return fmt.Errorf("failed to start processing: %w", err)
	}
	c.handle = h
	events = append(events, c.setModeLocked(model.ModeProcessing))
	c.mu.Unlock()

	for _, ev := range events {
		ev()
	}
	if prevFile != nil && prevFile.Path != ref.Path {
		c.release(*prevFile)
	}

	metrics.UploadsTotal.WithLabelValues(metrics.UploadAccepted).Inc()
	logging.UserAction(c.log, "video_upload_started", logging.Fields{
		logging.FieldSessionID: c.id,
		logging.FieldFileName:  cand.Name,
		logging.FieldFileSize:  cand.Size,
		logging.FieldFileType:  cand.MediaType,
	})
	return nil
}

func (c *Controller) callbacks(gen uint64) simulator.Callbacks {
	return simulator.Callbacks{
		OnProgress: func(h simulator.Handle, p simulator.Progress) {
			if !c.current(h, gen, func() { c.progress = p }) {
				return
			}
			c.notifier.Progress(c.id, p)
		},
		OnStageComplete: func(h simulator.Handle, st model.ProcessingStage) {
			if !c.current(h, gen, nil) {
				return
			}
			metrics.StageCompletionsTotal.WithLabelValues(st.ID).Inc()
			logging.ProcessingStep(c.log, st.ID, c.id, nil)
			c.notifier.StageCompleted(c.id, st)
		},
		OnComplete: func(h simulator.Handle) {
			c.complete(h, gen)
		},
	}
}

// current runs fn under the lock when h is still this session's run
func (c *Controller) current(h simulator.Handle, gen uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != h || c.gen != gen || c.mode != model.ModeProcessing {
		return false
	}
	if fn != nil {
		fn()
		c.touch()
	}
	return true
}

func (c *Controller) complete(h simulator.Handle, gen uint64) {
	c.mu.Lock()
	if c.handle != h || c.gen != gen || c.mode != model.ModeProcessing {
		c.mu.Unlock()
		return
	}
	c.runner.Cancel(h)
	c.handle = 0
	c.ready = true
	c.progress.Percent = 100
	ev := c.setModeLocked(model.ModeComplete)
	var fileName string
	if c.file != nil {
		fileName = c.file.Name
	}
	c.mu.Unlock()

	ev()
	c.notifier.Completed(c.id)
	metrics.SimulationRunsTotal.WithLabelValues(string(model.RunOutcomeCompleted)).Inc()
	logging.ProcessingStep(c.log, "completed", c.id, logging.Fields{logging.FieldProgress: 100})
	logging.UserAction(c.log, "video_processing_completed", logging.Fields{
		logging.FieldSessionID: c.id,
		logging.FieldFileName:  fileName,
	})
}

// Cancel aborts an active processing run and returns to idle
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != model.ModeProcessing {
		mode := c.mode
		c.mu.Unlock()
		return fmt.Errorf("%w: nothing to cancel while %s", ErrInvalidTransition, mode)
	}
	c.runner.Cancel(c.handle)
	c.handle = 0
	c.progress = simulator.Progress{}
	ev := c.setModeLocked(model.ModeIdle)
	c.mu.Unlock()

	ev()
	metrics.SimulationRunsTotal.WithLabelValues(string(model.RunOutcomeCanceled)).Inc()
	logging.UserAction(c.log, "video_processing_canceled", logging.Fields{logging.FieldSessionID: c.id})
	return nil
}

// ConfirmResults moves a completed session to viewing results and loads
// the dataset. A load failure is logged and leaves the dataset empty; it is
// not returned.
func (c *Controller) ConfirmResults(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != model.ModeComplete {
		mode := c.mode
		c.mu.Unlock()
		return fmt.Errorf("%w: results are not ready while %s", ErrInvalidTransition, mode)
	}
	ev := c.setModeLocked(model.ModeViewingResults)
	gen := c.gen
	c.mu.Unlock()

	ev()
	logging.UserAction(c.log, "continue_to_scene", logging.Fields{logging.FieldSessionID: c.id})

	ds, err := c.load(ctx)
	if err != nil {
		return nil
	}

	c.mu.Lock()
	if c.gen == gen && c.mode == model.ModeViewingResults {
		c.dataset = ds
		c.touch()
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) load(ctx context.Context) (*model.ReconstructionDataset, error) {
	c.log.Log(logging.LevelInfo, "Loading mock reconstruction data", logging.Fields{logging.FieldSessionID: c.id})

	ds, err := c.source.Load(ctx)
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(metrics.LoadFailure).Inc()
		logging.Error(c.log, "Failed to load mock data", err, logging.Fields{logging.FieldSessionID: c.id})
		return nil, err
	}

	metrics.DatasetLoadsTotal.WithLabelValues(metrics.LoadSuccess).Inc()
	c.log.Log(logging.LevelInfo, "Mock reconstruction data loaded successfully", logging.Fields{
		logging.FieldSessionID: c.id,
		"keyframes":            len(ds.Keyframes),
		"camera_points":        len(ds.CameraPaths),
	})
	return ds, nil
}

// Mode returns the current mode
func (c *Controller) Mode() model.SessionMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Dataset returns the loaded dataset, or nil. Callers must treat it as
// read-only.
func (c *Controller) Dataset() *model.ReconstructionDataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataset
}

// File returns the retained upload, if any
func (c *Controller) File() (model.FileRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return model.FileRef{}, false
	}
	return *c.file, true
}

// Status returns a snapshot of the session
func (c *Controller) Status() model.SessionStatusResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := model.SessionStatusResponse{
		SessionID:  c.id,
		Mode:       c.mode,
		Progress:   c.progress.Percent,
		StageIndex: c.progress.StageIndex,
		StageID:    c.progress.StageID,
		Ready:      c.ready,
		HasDataset: c.dataset != nil,
		CreatedAt:  c.createdAt,
		UpdatedAt:  c.updatedAt,
	}
	if c.file != nil {
		f := *c.file
		status.File = &f
	}
	if c.dataset != nil {
		meta := c.dataset.SceneMetadata
		status.Metadata = &meta
	}
	return status
}

// UpdatedAt returns the time of the last state change
func (c *Controller) UpdatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

// Close stops any run and releases the retained file. Further uploads are
// refused.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.handle != 0 {
		c.runner.Cancel(c.handle)
		c.handle = 0
	}
	file := c.file
	c.file = nil
	c.mu.Unlock()

	if file != nil {
		c.release(*file)
	}
}

// setModeLocked switches mode and returns the notification to send once
// the lock is released.
func (c *Controller) setModeLocked(mode model.SessionMode) func() {
	old := c.mode
	c.mode = mode
	c.touch()
	return func() {
		c.log.Log(logging.LevelDebug, "Session mode changed", logging.Fields{
			logging.FieldSessionID: c.id,
			logging.FieldOldMode:   string(old),
			logging.FieldNewMode:   string(mode),
		})
		c.notifier.ModeChanged(c.id, mode)
	}
}

func (c *Controller) touch() {
	c.updatedAt = c.now()
}
