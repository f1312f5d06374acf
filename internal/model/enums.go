package model

// SessionMode is the user-visible mode of a session
type SessionMode string

const (
	ModeIdle           SessionMode = "idle"
	ModeUploading      SessionMode = "uploading"
	ModeProcessing     SessionMode = "processing"
	ModeComplete       SessionMode = "complete"
	ModeViewingResults SessionMode = "viewing_results"
)

// Media types accepted by the upload gate
const (
	MediaTypeMP4       = "video/mp4"
	MediaTypeWebM      = "video/webm"
	MediaTypeQuickTime = "video/quicktime"
	MediaTypeAVI       = "video/x-msvideo"
	MediaTypeWMV       = "video/x-ms-wmv"
)

var AllowedVideoTypes = []string{
	MediaTypeMP4, MediaTypeWebM, MediaTypeQuickTime, MediaTypeAVI, MediaTypeWMV,
}

// Run outcomes
type RunOutcome string

const (
	RunOutcomeCompleted RunOutcome = "completed"
	RunOutcomeCanceled  RunOutcome = "canceled"
)
