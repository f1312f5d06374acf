// Package projection derives view and export payloads from a loaded dataset.
// Every function accepts a nil dataset.
package projection

import (
	"encoding/json"

	"github.com/vid2scene/api/internal/model"
)

// DefaultFPS is used for frame timing when the metadata carries none
const DefaultFPS = 30.0

// Project builds the export payload. A nil dataset yields empty sequences
// and no artifact reference.
func Project(ds *model.ReconstructionDataset) model.ExportPayload {
	payload := model.ExportPayload{
		CameraPath: []model.CameraSample{},
		Keyframes:  []int{},
	}
	if ds == nil {
		return payload
	}

	if ds.Artifact != "" {
		ref := ds.Artifact
		payload.ArtifactRef = &ref
	}
	payload.CameraPath = append(payload.CameraPath, ds.CameraPaths...)
	payload.Keyframes = append(payload.Keyframes, ds.Keyframes...)
	return payload
}

// CameraPathJSON serializes exactly the camera-path sequence with two-space
// indentation and frame, position, rotation key order.
func CameraPathJSON(payload model.ExportPayload) ([]byte, error) {
	path := payload.CameraPath
	if path == nil {
		path = []model.CameraSample{}
	}
	return json.MarshalIndent(path, "", "  ")
}

// FrameToTime converts a frame index to seconds
func FrameToTime(frame int, fps float64) float64 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return float64(frame) / fps
}

// TimeToFrame converts seconds to the frame being shown at that time
func TimeToFrame(seconds, fps float64) int {
	if fps <= 0 {
		fps = DefaultFPS
	}
	f := seconds * fps
	if f < 0 {
		return 0
	}
	return int(f)
}

// Summarize builds the scene information view
func Summarize(ds *model.ReconstructionDataset) model.SceneSummary {
	summary := model.SceneSummary{KeyframeTimes: []float64{}}
	if ds == nil {
		return summary
	}

	meta := ds.SceneMetadata
	summary.Available = true
	summary.Metadata = &meta
	summary.KeyframeCount = len(ds.Keyframes)
	summary.CameraPoints = len(ds.CameraPaths)
	for _, f := range ds.Keyframes {
		summary.KeyframeTimes = append(summary.KeyframeTimes, FrameToTime(f, meta.FPS))
	}
	if ds.Artifact != "" {
		ref := ds.Artifact
		summary.ArtifactRef = &ref
	}
	return summary
}
