package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kilianp07/rolloutplan/core/palette"
	"github.com/kilianp07/rolloutplan/core/rollout"
)

const (
	activityWidth = 24
	dayWidth      = 7
)

// WriteText renders each week as a coloured grid followed by its legend.
// Colours are emitted only when w is a terminal that supports them.
func WriteText(w io.Writer, doc Document) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	title := r.NewStyle().Bold(true).Underline(true)
	muted := r.NewStyle().Faint(true)
	label := r.NewStyle().Width(activityWidth)
	day := r.NewStyle().Width(dayWidth).Align(lipgloss.Center)

	var b strings.Builder
	if doc.ShowCompanyName && doc.CompanyName != "" {
		b.WriteString(heading.Render(strings.ToUpper(doc.CompanyName)) + "\n")
	}
	if doc.ProjectName != "" {
		b.WriteString(heading.Render(strings.ToUpper(doc.ProjectName)) + "\n")
	}
	b.WriteString(heading.Render("ROLLOUT PLAN") + "\n")

	for _, wk := range doc.Weeks {
		b.WriteString("\n" + title.Render(wk.Title) + "\n")
		if dr := doc.DateRanges[wk.WeekNumber]; dr != "" {
			b.WriteString(muted.Render(dr) + "\n")
		}
		cols := []string{label.Render("Activity")}
		for d := 1; d <= rollout.DaysPerWeek; d++ {
			cols = append(cols, day.Render(fmt.Sprintf("Day %d", d)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...) + "\n")
		for _, row := range wk.Rows {
			cols = cols[:0]
			cols = append(cols, label.Render(row.Activity))
			for _, c := range row.Cells {
				st, ok := c.Get()
				if !ok {
					cols = append(cols, day.Render("."))
					continue
				}
				cols = append(cols, swatch(day, st.Color).Render("##"))
			}
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...) + "\n")
		}
		for _, l := range wk.Legends {
			b.WriteString(swatch(r.NewStyle(), l.Color).Render("  ") + " " + l.Label + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func swatch(base lipgloss.Style, c palette.Color) lipgloss.Style {
	return base.Background(lipgloss.Color(c.Hex())).Foreground(lipgloss.Color(c.Hex()))
}
