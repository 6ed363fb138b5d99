package main

import (
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// NewRootCmd creates the root ragdesk command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ragdesk",
		Short:         "ragdesk - local document question answering",
		Long:          "ragdesk chunks and embeds your documents, retrieves the fragments closest to a question and answers with a local Ollama model.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file path (default ~/.config/ragdesk/config.yaml)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newQueryCmd(),
		newAskCmd(),
		newListCmd(),
		newDeleteCmd(),
		newExportCmd(),
		newImportCmd(),
		newStatusCmd(),
		newModelsCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ragdesk version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte("ragdesk " + version + " (commit: " + commit + ")\n"))
			return err
		},
	}
}
