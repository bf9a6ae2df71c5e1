package cmd

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"jobbots/services/ingestion/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func renderJobs(w io.Writer, jobs []models.JobInfo) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Title", "Company", "Salary", "Location", "Experience", "Education", "Source"})
	for _, j := range jobs {
		t.AppendRow(table.Row{
			j.JobID,
			j.Title,
			j.Company,
			j.Salary,
			j.Location,
			models.Deref(j.Experience),
			models.Deref(j.Education),
			j.Source,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 30},
		{Number: 3, WidthMax: 24},
	})
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(jobs)})
	t.Render()
}

func renderJob(w io.Writer, j *models.JobInfo) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"ID", j.JobID},
		{"Title", j.Title},
		{"Company", j.Company},
		{"Salary", j.Salary},
		{"Location", j.Location},
		{"Experience", models.Deref(j.Experience)},
		{"Education", models.Deref(j.Education)},
		{"Company type", models.Deref(j.CompanyType)},
		{"Company size", models.Deref(j.CompanySize)},
		{"Tags", strings.Join(j.Tags, ", ")},
		{"URL", j.URL},
		{"Source", j.Source},
		{"Updated", j.UpdateTime},
	})
	t.Render()

	if desc := models.Deref(j.Description); desc != "" {
		io.WriteString(w, "\n"+text.WrapSoft(desc, 80)+"\n")
	}
}

func output(v interface{}, render func(io.Writer)) error {
	if jsonOutput {
		return printJSON(os.Stdout, v)
	}
	render(os.Stdout)
	return nil
}
