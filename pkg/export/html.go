package export

import (
	"html/template"
	"io"

	"github.com/kilianp07/rolloutplan/core/palette"
	"github.com/kilianp07/rolloutplan/core/rollout"
)

var htmlTpl = template.Must(template.New("plan").Funcs(template.FuncMap{
	"hex":  func(c palette.Color) string { return c.Hex() },
	"days": func() []int {
		out := make([]int, rollout.DaysPerWeek)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Doc.ProjectName}} Rollout Plan</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #0f172a; }
h1, h2 { text-align: center; text-transform: uppercase; font-weight: normal; }
h3 { text-align: center; text-decoration: underline; text-transform: uppercase; }
.dates { text-align: center; color: #475569; font-size: 0.9em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 0.5em; }
th, td { border: 1px solid #000; height: 1.6em; }
td.activity { width: 28%; padding: 0 0.4em; }
ul.legend { list-style: none; padding: 0; }
ul.legend span { display: inline-block; width: 1em; height: 1em; margin-right: 0.5em; vertical-align: middle; }
.week { page-break-inside: avoid; margin-bottom: 2em; }
.footer { text-align: center; font-size: 0.85em; font-style: italic; margin-top: 2em; }
</style>
</head>
<body>
{{if and .Doc.ShowCompanyName .Doc.CompanyName}}<h1>{{.Doc.CompanyName}}</h1>{{end}}
<h1>{{.Doc.ProjectName}}</h1>
<h2>Rollout Plan</h2>
{{range .Doc.Weeks}}<div class="week">
<h3>{{.Title}}</h3>
{{with index $.Doc.DateRanges .WeekNumber}}<p class="dates">{{.}}</p>{{end}}
<table>
<tr><th>Activity</th>{{range days}}<th>Day {{.}}</th>{{end}}</tr>
{{range .Rows}}<tr><td class="activity">{{.Activity}}</td>{{range .Cells}}{{if .Painted}}<td style="background-color: {{hex .Style.Color}}"></td>{{else}}<td></td>{{end}}{{end}}</tr>
{{end}}</table>
<ul class="legend">
{{range .Legends}}<li><span style="background-color: {{hex .Color}}"></span>{{.Label}}</li>
{{end}}</ul>
</div>
{{end}}<p class="footer">NB: Above dates are tentative and are subject to change in unavoidable circumstances</p>
</body>
</html>
`))

// WriteHTML renders a printable document of the plan.
func WriteHTML(w io.Writer, doc Document) error {
	return htmlTpl.Execute(w, struct{ Doc Document }{Doc: doc})
}
