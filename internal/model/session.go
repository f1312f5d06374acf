package model

import "time"

// SessionStatusResponse is the snapshot of a session
type SessionStatusResponse struct {
	SessionID  string         `json:"sessionId"`
	Mode       SessionMode    `json:"mode"`
	Progress   float64        `json:"progress"`
	StageIndex int            `json:"stageIndex"`
	StageID    string         `json:"stageId,omitempty"`
	Ready      bool           `json:"ready"`
	File       *FileRef       `json:"file,omitempty"`
	HasDataset bool           `json:"hasDataset"`
	Metadata   *SceneMetadata `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// SessionCreateResponse is returned when a session is opened
type SessionCreateResponse struct {
	SessionID string      `json:"sessionId"`
	Mode      SessionMode `json:"mode"`
	CreatedAt time.Time   `json:"createdAt"`
}

// UploadResponse is returned when an upload is accepted
type UploadResponse struct {
	SessionID string           `json:"sessionId"`
	Mode      SessionMode      `json:"mode"`
	File      FileRef          `json:"file"`
	Stages    []StageResponse  `json:"stages"`
	Result    ValidationResult `json:"validation"`
}
