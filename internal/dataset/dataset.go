// Package dataset loads the mock reconstruction document.
package dataset

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/vid2scene/api/internal/model"
)

// ErrInvalidDataset wraps every decode or validation failure
var ErrInvalidDataset = errors.New("invalid reconstruction dataset")

//go:embed mock_response.json
var mockResponse []byte

// Source yields a reconstruction dataset
type Source interface {
	Load(ctx context.Context) (*model.ReconstructionDataset, error)
}

// FileSource reads the dataset from a JSON document on disk
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and validates the document
func (s *FileSource) Load(ctx context.Context) (*model.ReconstructionDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", s.path, err)
	}
	return Decode(data)
}

// EmbeddedSource serves the mock document compiled into the binary
type EmbeddedSource struct{}

// Load decodes the embedded document
func (EmbeddedSource) Load(ctx context.Context) (*model.ReconstructionDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(mockResponse)
}

// MockDocument returns a copy of the embedded mock document
func MockDocument() []byte {
	out := make([]byte, len(mockResponse))
	copy(out, mockResponse)
	return out
}

// NewSource picks a FileSource for a non-empty path, the embedded mock otherwise
func NewSource(path string) Source {
	if path == "" {
		return EmbeddedSource{}
	}
	return NewFileSource(path)
}

// Decode parses and validates a dataset document
func Decode(data []byte) (*model.ReconstructionDataset, error) {
	var ds model.ReconstructionDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if err := Validate(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
