package model

// WebSocket message types
const (
	WSMessageTypeStatus   = "status"
	WSMessageTypeMode     = "mode"
	WSMessageTypeProgress = "progress"
	WSMessageTypeStage    = "stage"
	WSMessageTypeComplete = "complete"
	WSMessageTypeRejected = "rejected"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WebSocket error codes
const (
	WSErrorProcessingFailed = "PROCESSING_FAILED"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSModeMessage announces a session mode transition
type WSModeMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Mode      SessionMode `json:"mode"`
}

// WSProgressMessage represents a progress update
type WSProgressMessage struct {
	Type       string  `json:"type"`
	SessionID  string  `json:"sessionId"`
	Progress   float64 `json:"progress"`
	StageIndex int     `json:"stageIndex"`
	StageID    string  `json:"stageId,omitempty"`
}

// WSStageMessage announces a finished stage
type WSStageMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	StageID   string `json:"stageId"`
}

// WSCompleteMessage represents run completion
type WSCompleteMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// WSRejectedMessage carries a validation rejection
type WSRejectedMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason"`
}

// WSErrorMessage represents an error
type WSErrorMessage struct {
	Type      string  `json:"type"`
	SessionID string  `json:"sessionId"`
	Error     WSError `json:"error"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WSStatusMessage carries the session snapshot sent when a client connects
type WSStatusMessage struct {
	Type   string                `json:"type"`
	Status SessionStatusResponse `json:"status"`
}
