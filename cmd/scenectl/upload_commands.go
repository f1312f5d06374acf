package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/validation"
)

// videoTypes maps file extensions to the media types the gate knows, so the
// result does not depend on the host's mime tables.
var videoTypes = map[string]string{
	".mp4":  model.MediaTypeMP4,
	".m4v":  model.MediaTypeMP4,
	".webm": model.MediaTypeWebM,
	".mov":  model.MediaTypeQuickTime,
	".qt":   model.MediaTypeQuickTime,
	".avi":  model.MediaTypeAVI,
	".wmv":  model.MediaTypeWMV,
}

func mediaTypeFor(name string) string {
	return videoTypes[strings.ToLower(filepath.Ext(name))]
}

func newValidateCommand() *cobra.Command {
	var mediaType string
	var maxSizeMB int

	cmd := &cobra.Command{
		Use:   "validate <video>",
		Short: "Run a local file through the upload validation gate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}

			typ := mediaType
			if typ == "" {
				typ = mediaTypeFor(args[0])
			}

			gate := validation.NewGate(int64(maxSizeMB) << 20)
			result := gate.Validate(model.UploadCandidate{
				Name:      info.Name(),
				Size:      info.Size(),
				MediaType: typ,
			})

			status := "accepted"
			if !result.Valid {
				status = "rejected"
			}
			rows := [][]string{
				{"File", info.Name()},
				{"Type", typ},
				{"Size (bytes)", strconv.FormatInt(info.Size(), 10)},
				{"Result", status},
			}
			if result.Reason != "" {
				rows = append(rows, []string{"Reason", result.Reason})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))

			if !result.Valid {
				return fmt.Errorf("upload rejected: %s", result.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mediaType, "type", "", "Media type to check (defaults to one derived from the extension)")
	cmd.Flags().IntVar(&maxSizeMB, "max-size-mb", 100, "Upload size limit in MB")
	return cmd
}

func newStagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the simulated processing stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages := model.DefaultStages()
			rows := make([][]string, 0, len(stages)+1)
			for i, st := range stages {
				rows = append(rows, []string{strconv.Itoa(i + 1), st.ID, st.Title, st.Duration.String()})
			}
			rows = append(rows, []string{"", "", "Total", model.TotalDuration(stages).String()})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "ID", "Title", "Duration"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
