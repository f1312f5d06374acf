package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vid2scene/api/internal/dataset"
	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/projection"
)

func loadDataset(ctx context.Context, path string) (*model.ReconstructionDataset, error) {
	return dataset.NewSource(path).Load(ctx)
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a mock reconstruction document and summarize it",
		Long:  "Validate a mock reconstruction document. Without a file the built-in document is checked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			ds, err := loadDataset(cmd.Context(), path)
			if err != nil {
				if problems := dataset.Problems(err); len(problems) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), renderProblems(problems))
				}
				return err
			}

			summary := projection.Summarize(ds)
			rows := [][]string{
				{"Artifact", ds.Artifact},
				{"Resolution", ds.SceneMetadata.Resolution},
				{"Total frames", strconv.Itoa(ds.SceneMetadata.TotalFrames)},
				{"FPS", strconv.FormatFloat(ds.SceneMetadata.FPS, 'f', -1, 64)},
				{"Duration (s)", strconv.FormatFloat(ds.SceneMetadata.Duration, 'f', -1, 64)},
				{"Keyframes", strconv.Itoa(summary.KeyframeCount)},
				{"Camera points", strconv.Itoa(summary.CameraPoints)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func renderProblems(problems map[string]string) string {
	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, problems[k]})
	}
	return renderTable([]string{"Field", "Rule"}, rows, nil)
}

func newCameraPathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "camera-paths [file]",
		Short: "Print the camera_paths.json export of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			ds, err := loadDataset(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("cannot export: %w", err)
			}

			doc, err := projection.CameraPathJSON(projection.Project(ds))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return nil
		},
	}
}
