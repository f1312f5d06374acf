package model

import "time"

// ProcessingStage is one named step of the simulated pipeline
type ProcessingStage struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    time.Duration `json:"-"`
}

// StageResponse is the wire form of a ProcessingStage
type StageResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DurationMs  int64  `json:"durationMs"`
}

// DefaultStages returns the fixed stage table.
// A fresh slice is returned on every call.
func DefaultStages() []ProcessingStage {
	return []ProcessingStage{
		{
			ID:          "upload",
			Title:       "Processing Video",
			Description: "Analyzing video frames and extracting metadata",
			Duration:    2000 * time.Millisecond,
		},
		{
			ID:          "keyframes",
			Title:       "Extracting Keyframes",
			Description: "Identifying optimal frames for 3D reconstruction",
			Duration:    3000 * time.Millisecond,
		},
		{
			ID:          "reconstruction",
			Title:       "3D Reconstruction",
			Description: "Generating 3D scene using neural radiance fields",
			Duration:    4000 * time.Millisecond,
		},
		{
			ID:          "optimization",
			Title:       "Scene Optimization",
			Description: "Optimizing geometry and preparing for export",
			Duration:    2000 * time.Millisecond,
		},
	}
}

// TotalDuration sums the nominal durations of the stages
func TotalDuration(stages []ProcessingStage) time.Duration {
	var total time.Duration
	for _, s := range stages {
		total += s.Duration
	}
	return total
}

// ToStageResponses converts stages to their wire form
func ToStageResponses(stages []ProcessingStage) []StageResponse {
	out := make([]StageResponse, 0, len(stages))
	for _, s := range stages {
		out = append(out, StageResponse{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			DurationMs:  s.Duration.Milliseconds(),
		})
	}
	return out
}
