package logging

import "fmt"

func merge(fields Fields, extra Fields) Fields {
	out := make(Fields, len(fields)+len(extra))
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// UserAction logs an action the user performed
func UserAction(l Logger, action string, fields Fields) {
	l.Log(LevelInfo, "User action: "+action, merge(fields, Fields{FieldAction: action}))
}

// ProcessingStep logs a step of the simulated pipeline
func ProcessingStep(l Logger, step, sessionID string, fields Fields) {
	l.Log(LevelInfo, "Processing step: "+step, merge(fields, Fields{
		FieldSessionID: sessionID,
		FieldAction:    "processing",
		FieldStage:     step,
	}))
}

// Error logs a failure with its cause
func Error(l Logger, message string, err error, fields Fields) {
	extra := Fields{}
	if err != nil {
		extra[FieldError] = err.Error()
	}
	l.Log(LevelError, message, merge(fields, extra))
}

// ComponentError logs a fault raised inside a component
func ComponentError(l Logger, component string, err error, fields Fields) {
	Error(l, fmt.Sprintf("Component error in %s", component), err, merge(fields, Fields{
		FieldComponent: component,
	}))
}
