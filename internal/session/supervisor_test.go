package session

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vid2scene/api/internal/logging"
)

func TestNewIncidentID_Format(t *testing.T) {
	re := regexp.MustCompile(`^error_\d+_[0-9a-f]{9}$`)
	a, b := NewIncidentID(), NewIncidentID()
	assert.Regexp(t, re, a)
	assert.NotEqual(t, a, b)
}

func TestSupervisor_PassesThroughErrors(t *testing.T) {
	s := NewSupervisor(logging.Nop())

	assert.NoError(t, s.Do("status", func() error { return nil }))

	want := errors.New("boom")
	assert.ErrorIs(t, s.Do("status", func() error { return want }), want)
}

func TestSupervisor_RecoversPanic(t *testing.T) {
	log := logging.NewRecorder()
	s := NewSupervisor(log)

	err := s.Do("upload", func() error { panic("nil dataset") })

	var incident *IncidentError
	require.ErrorAs(t, err, &incident)
	assert.Equal(t, "upload", incident.Operation)
	assert.Equal(t, "nil dataset", incident.Message)
	assert.NotEmpty(t, incident.ID)

	entries := log.Find("Component error in Supervisor")
	require.Len(t, entries, 1)
	assert.Equal(t, incident.ID, entries[0].Fields[logging.FieldErrorID])
	assert.Equal(t, logging.LevelError, entries[0].Level)

	// the supervisor keeps working after an incident
	assert.NoError(t, s.Do("upload", func() error { return nil }))
}

func TestCall_ReturnsValue(t *testing.T) {
	s := NewSupervisor(nil)

	v, err := Call(s, "status", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = Call(s, "status", func() (int, error) { panic("x") })
	assert.Zero(t, v)
	var incident *IncidentError
	assert.ErrorAs(t, err, &incident)
}
