package report

import (
	"strings"
	"text/template"

	"github.com/ternarybob/jobhunter/internal/models"
	"github.com/ternarybob/jobhunter/internal/services/scorer"
)

const reportTemplateText = `# Job Search Report

Run ` + "`{{.RunID}}`" + ` finished with status **{{.Status}}**.

| Metric | Value |
| --- | --- |
| Companies found | {{.CompaniesFound}} |
| Jobs scraped | {{.JobsScraped}} |
| Jobs processed | {{.JobsProcessed}} |
| Jobs scored | {{.JobsScored}} |
| Total tokens | {{.TotalTokens}} |
| Total cost (USD) | {{printf "%.4f" .TotalCostUSD}} |
{{if .TopJobs}}
## Top Matches

| Rank | Score | Company | Title | Location | Salary | Recommendation |
| --- | --- | --- | --- | --- | --- | --- |
{{range .TopJobs}}| {{.Rank}} | {{.Fit.Score}} | {{cell .Job.CompanyName}} | {{cell .Job.Title}} | {{cell .Job.Location}} | {{salary .Job}} | {{.Fit.Recommendation}} |
{{end}}
{{range .TopJobs}}### {{.Rank}}. {{cell .Job.Title}} at {{cell .Job.CompanyName}}

{{.Fit.Summary}}
{{if .Fit.SkillOverlap}}
Matching skills: {{join .Fit.SkillOverlap}}
{{end}}{{if .Fit.SkillGaps}}Gaps: {{join .Fit.SkillGaps}}
{{end}}{{if .Job.ApplyURL}}Apply: {{.Job.ApplyURL}}
{{end}}
{{end}}{{else}}
No jobs cleared the score threshold this run.
{{end}}{{if .Errors}}
## Issues ({{len .Errors}})

{{range .Errors}}- {{.Stage}}/{{.Kind}}{{if .Company}} ({{.Company}}){{end}}: {{.Message}}
{{end}}{{end}}`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"salary": func(job models.NormalizedJob) string {
		return scorer.FormatSalaryRange(job.SalaryMin, job.SalaryMax, job.Currency)
	},
	"cell": markdownCell,
	"join": func(values []string) string {
		return strings.Join(values, ", ")
	},
}).Parse(reportTemplateText))

// RenderMarkdown produces the markdown run report shared by the md artifact,
// the PDF and the notification mail body.
func RenderMarkdown(result *models.RunResult) (string, error) {
	var b strings.Builder
	if err := reportTemplate.Execute(&b, result); err != nil {
		return "", err
	}
	return b.String(), nil
}

var cellReplacer = strings.NewReplacer("|", "\\|", "\n", " ", "\r", " ")

// markdownCell makes free text safe inside a markdown table row.
func markdownCell(value string) string {
	return cellReplacer.Replace(strings.TrimSpace(value))
}
