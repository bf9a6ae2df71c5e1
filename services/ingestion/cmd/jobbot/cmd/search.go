package cmd

import (
	"io"

	"jobbots/services/ingestion/internal/models"
	"jobbots/services/ingestion/internal/service"

	"github.com/spf13/cobra"
)

var searchOpts struct {
	platform    string
	city        string
	experience  string
	education   string
	salaryRange string
	page        int
	pageSize    int
}

func init() {
	flags := searchCmd.Flags()
	flags.StringVarP(&searchOpts.platform, "platform", "p", service.PlatformAll, "boss, ganji or all")
	flags.StringVarP(&searchOpts.city, "city", "c", "", "city, e.g. beijing or shanghai")
	flags.StringVar(&searchOpts.experience, "experience", "", "experience filter")
	flags.StringVar(&searchOpts.education, "education", "", "education filter")
	flags.StringVar(&searchOpts.salaryRange, "salary-range", "", "salary range filter")
	flags.IntVar(&searchOpts.page, "page", models.DefaultPage, "result page")
	flags.IntVar(&searchOpts.pageSize, "page-size", models.DefaultPageSize, "results per page and platform")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Searches job postings by keyword.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := rt.Service.Search(cmd.Context(), searchOpts.platform, models.SearchOptions{
			Keyword:     args[0],
			City:        searchOpts.city,
			Experience:  searchOpts.experience,
			Education:   searchOpts.education,
			SalaryRange: searchOpts.salaryRange,
			Page:        searchOpts.page,
			PageSize:    searchOpts.pageSize,
		})
		if err != nil {
			return err
		}
		return output(jobs, func(w io.Writer) { renderJobs(w, jobs) })
	},
}
