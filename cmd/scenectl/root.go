package main

import "github.com/spf13/cobra"

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "scenectl",
		Short:         "Inspect mock reconstruction documents and upload candidates",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newCameraPathsCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newStagesCommand())

	return rootCmd
}
