package service

import (
	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/projection"
	"github.com/vid2scene/api/internal/session"
)

// ExportService projects a session's dataset into export formats
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// Payload returns the export view of the session's dataset. A session with
// no dataset yields empty sequences.
func (s *ExportService) Payload(ctrl *session.Controller) model.ExportPayload {
	return projection.Project(ctrl.Dataset())
}

// CameraPaths returns the camera_paths.json document
func (s *ExportService) CameraPaths(ctrl *session.Controller) ([]byte, error) {
	return projection.CameraPathJSON(s.Payload(ctrl))
}

// Artifact returns the scene artifact locator, if one is loaded
func (s *ExportService) Artifact(ctrl *session.Controller) (string, bool) {
	p := s.Payload(ctrl)
	if p.ArtifactRef == nil {
		return "", false
	}
	return *p.ArtifactRef, true
}

// Scene summarizes the loaded scene
func (s *ExportService) Scene(ctrl *session.Controller) model.SceneSummary {
	return projection.Summarize(ctrl.Dataset())
}
