package logging

// Canonical field names
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldAction    = "action"
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldErrorID   = "error_id"
	FieldError     = "error"

	FieldFileName = "file_name"
	FieldFileSize = "file_size"
	FieldFileType = "file_type"
	FieldReason   = "reason"

	FieldStage    = "stage"
	FieldProgress = "progress"
	FieldOldMode  = "old_mode"
	FieldNewMode  = "new_mode"
	FieldPath     = "path"
)
