package model

import "time"

// UploadCandidate is a file the user is trying to submit
type UploadCandidate struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MediaType string `json:"mediaType"`
}

// ValidationResult is the decision of the upload gate
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// FileRef points at an accepted upload retained for playback
type FileRef struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MediaType  string    `json:"mediaType"`
	Path       string    `json:"-"`
	UploadedAt time.Time `json:"uploadedAt"`
}
