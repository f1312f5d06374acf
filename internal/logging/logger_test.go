package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroLogger_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Output: &buf, Service: "test", Sync: true})

	l.Log(LevelWarn, "upload rejected", Fields{FieldReason: "too big", FieldFileSize: 42})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "upload rejected", entry["message"])
	assert.Equal(t, "test", entry[FieldService])
	assert.Equal(t, "too big", entry[FieldReason])
	assert.EqualValues(t, 42, entry[FieldFileSize])
}

func TestZeroLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf, Sync: true})

	l.Log(LevelInfo, "hidden", nil)
	assert.Zero(t, buf.Len())

	l.Log(LevelError, "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestZeroLogger_DiodeFlushesOnClose(t *testing.T) {
	var buf syncBuffer
	l := New(Config{Output: &buf})

	l.Log(LevelInfo, "async entry", nil)
	require.NoError(t, l.Close())

	assert.Contains(t, buf.String(), "async entry")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Sync: true}).WithComponent("simulator")

	l.Log(LevelInfo, "tick", nil)
	assert.Contains(t, buf.String(), `"component":"simulator"`)
}

func TestHelpers(t *testing.T) {
	rec := NewRecorder()

	UserAction(rec, "video_upload_started", Fields{FieldFileName: "a.mp4"})
	ProcessingStep(rec, "completed", "s-1", Fields{FieldProgress: 100})
	ComponentError(rec, "supervisor", errors.New("boom"), Fields{FieldErrorID: "error_1"})

	entries := rec.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, "User action: video_upload_started", entries[0].Message)
	assert.Equal(t, "video_upload_started", entries[0].Fields[FieldAction])
	assert.Equal(t, "a.mp4", entries[0].Fields[FieldFileName])

	assert.Equal(t, "Processing step: completed", entries[1].Message)
	assert.Equal(t, "s-1", entries[1].Fields[FieldSessionID])

	assert.Equal(t, LevelError, entries[2].Level)
	assert.Equal(t, "Component error in supervisor", entries[2].Message)
	assert.Equal(t, "boom", entries[2].Fields[FieldError])
	assert.Equal(t, "error_1", entries[2].Fields[FieldErrorID])
}
