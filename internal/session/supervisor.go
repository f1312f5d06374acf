package session

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vid2scene/api/internal/logging"
	"github.com/vid2scene/api/internal/metrics"
)

// IncidentActions are the recovery options offered with an incident
var IncidentActions = []string{"retry", "reload", "home"}

// IncidentError is a recovered fault inside a supervised operation
type IncidentError struct {
	ID        string
	Operation string
	Message   string
}

func (e *IncidentError) Error() string {
	return fmt.Sprintf("incident %s in %s: %s", e.ID, e.Operation, e.Message)
}

// NewIncidentID returns an id of the form error_<unix-ms>_<9 chars>
func NewIncidentID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("error_%d_%s", time.Now().UnixMilli(), suffix)
}

// Supervisor turns panics in controller operations into incidents so one
// faulty request does not take down the process.
type Supervisor struct {
	log   logging.Logger
	newID func() string
}

func NewSupervisor(log logging.Logger) *Supervisor {
	if log == nil {
		log = logging.Nop()
	}
	return &Supervisor{log: log, newID: NewIncidentID}
}

// Do runs fn. A panic is recovered and returned as *IncidentError.
func (s *Supervisor) Do(op string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		incident := &IncidentError{ID: s.newID(), Operation: op, Message: fmt.Sprint(r)}
		metrics.IncidentsTotal.WithLabelValues(op).Inc()
		logging.ComponentError(s.log, "Supervisor", errors.New(incident.Message), logging.Fields{
			logging.FieldErrorID: incident.ID,
			"operation":          op,
			"stack":              string(debug.Stack()),
		})
		err = incident
	}()
	return fn()
}

// Call is Do for operations that produce a value
func Call[T any](s *Supervisor, op string, fn func() (T, error)) (T, error) {
	var out T
	err := s.Do(op, func() error {
		v, err := fn()
		out = v
		return err
	})
	return out, err
}
