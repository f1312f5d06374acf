package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vid2scene/api/internal/logging"
	"github.com/vid2scene/api/internal/metrics"
	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/session"
	"github.com/vid2scene/api/internal/validation"
)

// UploadService validates uploads and keeps accepted files on local disk so
// they can be played back.
type UploadService struct {
	dir  string
	gate *validation.Gate
	log  logging.Logger
}

func NewUploadService(dir string, gate *validation.Gate, log logging.Logger) *UploadService {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "vid2scene-uploads")
	}
	if gate == nil {
		gate = validation.NewGate(0)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &UploadService{dir: dir, gate: gate, log: log}
}

// Dir returns the storage directory
func (s *UploadService) Dir() string {
	return s.dir
}

// MaxSize returns the gate's size limit in bytes
func (s *UploadService) MaxSize() int64 {
	return s.gate.MaxSize()
}

// Submit runs a candidate through the gate and, if it passes and the
// session can take it, stores the content and starts processing.
func (s *UploadService) Submit(ctx context.Context, ctrl *session.Controller, cand model.UploadCandidate, content io.Reader) (model.ValidationResult, *model.FileRef, error) {
	result := s.gate.Validate(cand)
	if !result.Valid {
		ctrl.Reject(cand, result)
		return result, nil, fmt.Errorf("%w: %s", session.ErrRejected, result.Reason)
	}

	if err := ctrl.CanAccept(); err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadRefused).Inc()
		return result, nil, err
	}

	ref, err := s.Store(ctx, ctrl.ID(), cand, content)
	if err != nil {
		return result, nil, err
	}

	if err := ctrl.Accept(ctx, cand, ref); err != nil {
		s.Release(ref)
		return result, nil, err
	}
	return result, &ref, nil
}

// Store writes content to a new file in the storage directory
func (s *UploadService) Store(ctx context.Context, sessionID string, cand model.UploadCandidate, content io.Reader) (model.FileRef, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return model.FileRef{}, fmt.Errorf("failed to create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(cand.Name))
	f, err := os.CreateTemp(s.dir, sessionID+"-*"+ext)
	if err != nil {
		return model.FileRef{}, fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return model.FileRef{}, fmt.Errorf("failed to store upload: %w", err)
	}

	s.log.Log(logging.LevelDebug, "Upload stored", logging.Fields{
		logging.FieldSessionID: sessionID,
		logging.FieldFileName:  cand.Name,
		logging.FieldFileSize:  written,
		logging.FieldPath:      f.Name(),
	})

	return model.FileRef{
		Name:       cand.Name,
		Size:       written,
		MediaType:  cand.MediaType,
		Path:       f.Name(),
		UploadedAt: time.Now(),
	}, nil
}

// Release deletes a stored upload. Missing files are ignored.
func (s *UploadService) Release(ref model.FileRef) {
	if ref.Path == "" {
		return
	}
	if err := os.Remove(ref.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Error(s.log, "Failed to remove upload", err, logging.Fields{logging.FieldPath: ref.Path})
	}
}
