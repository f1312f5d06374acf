package dataset

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/vid2scene/api/internal/model"
)

const (
	tagFrameRange = "framerange"
	tagOrdered    = "ordered"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(datasetStructLevel, model.ReconstructionDataset{})
	return v
}

// datasetStructLevel enforces that every frame index lies in
// [0, total_frames) and that sequences are ascending.
func datasetStructLevel(sl validator.StructLevel) {
	ds := sl.Current().Interface().(model.ReconstructionDataset)
	total := ds.SceneMetadata.TotalFrames

	for i, f := range ds.Keyframes {
		if f < 0 || f >= total {
			sl.ReportError(ds.Keyframes, "Keyframes", "keyframes", tagFrameRange, fmt.Sprint(total))
			break
		}
		if i > 0 && f <= ds.Keyframes[i-1] {
			sl.ReportError(ds.Keyframes, "Keyframes", "keyframes", tagOrdered, "")
			break
		}
	}

	for i, c := range ds.CameraPaths {
		if c.Frame < 0 || c.Frame >= total {
			sl.ReportError(ds.CameraPaths, "CameraPaths", "camera_paths", tagFrameRange, fmt.Sprint(total))
			break
		}
		if i > 0 && c.Frame < ds.CameraPaths[i-1].Frame {
			sl.ReportError(ds.CameraPaths, "CameraPaths", "camera_paths", tagOrdered, "")
			break
		}
	}
}

// Validate checks a decoded dataset
func Validate(ds *model.ReconstructionDataset) error {
	if ds == nil {
		return fmt.Errorf("%w: nil dataset", ErrInvalidDataset)
	}
	if err := validate.Struct(ds); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return nil
}

// Problems maps failing fields to the rule they broke
func Problems(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Namespace()] = e.Tag()
	}
	return out
}
