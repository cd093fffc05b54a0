package rollout

import (
	"encoding/json"

	"github.com/kilianp07/rolloutplan/core/palette"
)

// DaysPerWeek is the number of working-day columns in every row.
const DaysPerWeek = 6

// Activity labels, in display order.
const (
	ActivityPhysical = "Physical Installation"
	ActivitySoftware = "Software Installation"
	ActivityTraining = "Training & Testing"
	ActivityDryRun   = "Dry run"
	ActivityGoLive   = "Go live"
	ActivityMonitor  = "Monitoring"
	ActivityHandover = "Handover"
)

// CellStyle is the paint of one day cell.
type CellStyle struct {
	Color   palette.Color `json:"background_color" yaml:"background_color"`
	ColSpan int           `json:"col_span,omitempty" yaml:"col_span,omitempty"`
}

// Cell is an optional CellStyle. The zero value is an unpainted cell.
type Cell struct {
	Painted bool
	Style   CellStyle
}

// Paint returns a cell painted with c.
func Paint(c palette.Color) Cell { return Cell{Painted: true, Style: CellStyle{Color: c}} }

// Get returns the style and whether the cell is painted.
func (c Cell) Get() (CellStyle, bool) { return c.Style, c.Painted }

// MarshalJSON encodes an empty cell as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Painted {
		return []byte("null"), nil
	}
	return json.Marshal(c.Style)
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = Cell{}
		return nil
	}
	var s CellStyle
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = Cell{Painted: true, Style: s}
	return nil
}

// MarshalYAML encodes an empty cell as null.
func (c Cell) MarshalYAML() (any, error) {
	if !c.Painted {
		return nil, nil
	}
	return c.Style, nil
}

// Row is one activity lane of a week.
type Row struct {
	Activity string            `json:"activity" yaml:"activity"`
	Cells    [DaysPerWeek]Cell `json:"cells" yaml:"cells"`
}

// paint fills the 1-based inclusive day range [first, last] with c.
func (r *Row) paint(c palette.Color, first, last int) {
	for d := first; d <= last; d++ {
		r.Cells[d-1] = Paint(c)
	}
}

// LegendItem explains one painted span.
type LegendItem struct {
	Color palette.Color `json:"color" yaml:"color"`
	Label string        `json:"label" yaml:"label"`
}

// WeekData is one week of the plan. Rows and Legends are in display order.
type WeekData struct {
	WeekNumber       int          `json:"week_number" yaml:"week_number"`
	Title            string       `json:"title" yaml:"title"`
	BranchesInvolved []int        `json:"branches_involved" yaml:"branches_involved"`
	Rows             []Row        `json:"rows" yaml:"rows"`
	Legends          []LegendItem `json:"legends" yaml:"legends"`
}

// Clone returns a deep copy of w.
func (w WeekData) Clone() WeekData {
	out := w
	out.BranchesInvolved = append([]int(nil), w.BranchesInvolved...)
	out.Rows = append([]Row(nil), w.Rows...)
	out.Legends = append([]LegendItem(nil), w.Legends...)
	return out
}

// Masked returns a copy of w where cells painted with a hidden colour are
// cleared. Legends are kept so hidden colours can be toggled back on.
func (w WeekData) Masked(hidden map[palette.Color]bool) WeekData {
	out := w.Clone()
	if len(hidden) == 0 {
		return out
	}
	for i := range out.Rows {
		for d, c := range out.Rows[i].Cells {
			if c.Painted && hidden[c.Style.Color] {
				out.Rows[i].Cells[d] = Cell{}
			}
		}
	}
	return out
}

// Colors returns the distinct legend colours of the week in legend order.
func (w WeekData) Colors() []palette.Color {
	seen := map[palette.Color]bool{}
	var out []palette.Color
	for _, l := range w.Legends {
		if !seen[l.Color] {
			seen[l.Color] = true
			out = append(out, l.Color)
		}
	}
	return out
}
