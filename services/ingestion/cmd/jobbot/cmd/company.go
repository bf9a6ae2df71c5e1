package cmd

import (
	"io"

	"jobbots/services/ingestion/internal/models"

	"github.com/spf13/cobra"
)

var companyOpts struct {
	page     int
	pageSize int
}

func init() {
	companyCmd.Flags().IntVar(&companyOpts.page, "page", models.DefaultPage, "result page")
	companyCmd.Flags().IntVar(&companyOpts.pageSize, "page-size", models.DefaultPageSize, "results per page")
	rootCmd.AddCommand(companyCmd)
}

var companyCmd = &cobra.Command{
	Use:   "company <platform> <company-id>",
	Short: "Lists the jobs a company has posted.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := rt.Service.CompanyJobs(cmd.Context(), args[0], models.CompanyJobsOptions{
			CompanyID: args[1],
			Page:      companyOpts.page,
			PageSize:  companyOpts.pageSize,
		})
		if err != nil {
			return err
		}
		return output(jobs, func(w io.Writer) { renderJobs(w, jobs) })
	},
}
