package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(detailCmd)
}

var detailCmd = &cobra.Command{
	Use:   "detail <platform> <job-id>",
	Short: "Prints the full posting of one job.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := rt.Service.Detail(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return output(job, func(w io.Writer) { renderJob(w, job) })
	},
}
