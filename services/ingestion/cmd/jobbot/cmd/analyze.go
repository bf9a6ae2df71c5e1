package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <platform> <job-id>",
	Short: "Has the configured chat model break down a job's requirements.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := rt.Service.Analyze(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return output(analysis, func(w io.Writer) {
			io.WriteString(w, text.Bold.Sprintf("%s (%s)", analysis.JobID, analysis.Model)+"\n\n")
			io.WriteString(w, analysis.Analysis+"\n")
		})
	},
}
