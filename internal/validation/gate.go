// Package validation decides whether an uploaded file is accepted.
package validation

import (
	"fmt"

	"github.com/vid2scene/api/internal/model"
)

// MaxVideoSize is the largest accepted upload (100 MiB)
const MaxVideoSize int64 = 100 * 1024 * 1024

// Rejection reasons, surfaced to the user verbatim
const (
	ReasonUnsupportedType = "Only MP4, WebM, QuickTime, AVI, and WMV video files are supported"
	ReasonEmptyFile       = "File appears to be empty"
)

// Gate checks upload candidates against a fixed policy
type Gate struct {
	maxSize int64
	allowed map[string]bool
}

// NewGate builds a gate for the default video allow-list.
// A non-positive maxSize selects MaxVideoSize.
func NewGate(maxSize int64) *Gate {
	if maxSize <= 0 {
		maxSize = MaxVideoSize
	}
	allowed := make(map[string]bool, len(model.AllowedVideoTypes))
	for _, t := range model.AllowedVideoTypes {
		allowed[t] = true
	}
	return &Gate{maxSize: maxSize, allowed: allowed}
}

// MaxSize returns the size limit in bytes
func (g *Gate) MaxSize() int64 {
	return g.maxSize
}

// Validate checks type, size limit and emptiness, in that order
func (g *Gate) Validate(c model.UploadCandidate) model.ValidationResult {
	if !g.allowed[c.MediaType] {
		return model.ValidationResult{Valid: false, Reason: ReasonUnsupportedType}
	}

	if c.Size > g.maxSize {
		return model.ValidationResult{Valid: false, Reason: SizeLimitReason(g.maxSize)}
	}

	if c.Size == 0 {
		return model.ValidationResult{Valid: false, Reason: ReasonEmptyFile}
	}

	return model.ValidationResult{Valid: true}
}

// SizeLimitReason formats the oversized-file message for a limit
func SizeLimitReason(maxSize int64) string {
	mb := (maxSize + 512*1024) / (1024 * 1024)
	return fmt.Sprintf("File size must be less than %dMB", mb)
}
