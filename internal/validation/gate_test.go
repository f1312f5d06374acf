package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vid2scene/api/internal/model"
)

func TestGate_Validate(t *testing.T) {
	gate := NewGate(0)

	tests := []struct {
		name       string
		candidate  model.UploadCandidate
		wantValid  bool
		wantReason string
	}{
		{
			name:      "mp4 accepted",
			candidate: model.UploadCandidate{Name: "walk.mp4", Size: 10 * 1024 * 1024, MediaType: "video/mp4"},
			wantValid: true,
		},
		{
			name:      "webm at limit accepted",
			candidate: model.UploadCandidate{Name: "a.webm", Size: MaxVideoSize, MediaType: "video/webm"},
			wantValid: true,
		},
		{
			name:      "one byte accepted",
			candidate: model.UploadCandidate{Name: "a.wmv", Size: 1, MediaType: "video/x-ms-wmv"},
			wantValid: true,
		},
		{
			name:       "audio rejected",
			candidate:  model.UploadCandidate{Name: "a.mp3", Size: 1024, MediaType: "audio/mpeg"},
			wantReason: ReasonUnsupportedType,
		},
		{
			name:       "missing type rejected",
			candidate:  model.UploadCandidate{Name: "a", Size: 1024},
			wantReason: ReasonUnsupportedType,
		},
		{
			name:       "oversized rejected",
			candidate:  model.UploadCandidate{Name: "big.mp4", Size: MaxVideoSize + 1, MediaType: "video/mp4"},
			wantReason: "File size must be less than 100MB",
		},
		{
			name:       "empty rejected",
			candidate:  model.UploadCandidate{Name: "empty.mov", Size: 0, MediaType: "video/quicktime"},
			wantReason: ReasonEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.Validate(tt.candidate)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.Empty(t, got.Reason)
				return
			}
			assert.NotEmpty(t, got.Reason)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestGate_TypeCheckedBeforeSize(t *testing.T) {
	gate := NewGate(0)

	got := gate.Validate(model.UploadCandidate{Size: 0, MediaType: "image/png"})
	assert.False(t, got.Valid)
	assert.Equal(t, ReasonUnsupportedType, got.Reason)
}

func TestGate_CustomLimit(t *testing.T) {
	gate := NewGate(5 * 1024 * 1024)

	assert.Equal(t, int64(5*1024*1024), gate.MaxSize())
	got := gate.Validate(model.UploadCandidate{Size: 6 * 1024 * 1024, MediaType: "video/mp4"})
	assert.False(t, got.Valid)
	assert.Equal(t, "File size must be less than 5MB", got.Reason)
}
