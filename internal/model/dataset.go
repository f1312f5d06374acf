package model

// Vec3 is a 3D position or rotation
type Vec3 [3]float64

// ReconstructionDataset is the (mocked) output of processing
type ReconstructionDataset struct {
	Artifact      string         `json:"artifact" validate:"required"`
	Keyframes     []int          `json:"keyframes" validate:"dive,gte=0"`
	CameraPaths   []CameraSample `json:"camera_paths" validate:"dive"`
	SceneMetadata SceneMetadata  `json:"scene_metadata"`
}

// CameraSample is a single point on the camera trajectory.
// Field order is the key order of the camera-path export.
type CameraSample struct {
	Frame    int  `json:"frame" validate:"gte=0"`
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
}

// SceneMetadata describes the source video
type SceneMetadata struct {
	TotalFrames int     `json:"total_frames" validate:"gt=0"`
	Duration    float64 `json:"duration" validate:"gte=0"`
	FPS         float64 `json:"fps" validate:"gt=0"`
	Resolution  string  `json:"resolution" validate:"required"`
}
