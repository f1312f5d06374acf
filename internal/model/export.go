package model

// ExportPayload is the normalized export/view projection of a dataset
type ExportPayload struct {
	ArtifactRef *string        `json:"artifactRef,omitempty"`
	CameraPath  []CameraSample `json:"cameraPath"`
	Keyframes   []int          `json:"keyframes"`
}

// SceneSummary backs the scene information panel
type SceneSummary struct {
	Available     bool           `json:"available"`
	Metadata      *SceneMetadata `json:"metadata,omitempty"`
	KeyframeCount int            `json:"keyframeCount"`
	CameraPoints  int            `json:"cameraPoints"`
	KeyframeTimes []float64      `json:"keyframeTimes"`
	ArtifactRef   *string        `json:"artifactRef,omitempty"`
}

// Default export file names
const (
	ArtifactFileName    = "reconstructed_scene.glb"
	CameraPathsFileName = "camera_paths.json"
)
