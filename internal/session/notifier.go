package session

import (
	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/simulator"
)

// Notifier pushes session events to subscribers. Calls must not block.
type Notifier interface {
	ModeChanged(sessionID string, mode model.SessionMode)
	Progress(sessionID string, p simulator.Progress)
	StageCompleted(sessionID string, stage model.ProcessingStage)
	Completed(sessionID string)
	Rejected(sessionID, reason string)
	Failed(sessionID, code, message string)
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) ModeChanged(string, model.SessionMode) {}
func (NopNotifier) Progress(string, simulator.Progress) {}
func (NopNotifier) StageCompleted(string, model.ProcessingStage) {}
func (NopNotifier) Completed(string) {}
func (NopNotifier) Rejected(string, string) {}
func (NopNotifier) Failed(string, string, string) {}
