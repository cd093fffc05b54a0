package session

import (
	"errors"
	"sort"
	"time"

	"github.com/kilianp07/rolloutplan/core/palette"
	"github.com/kilianp07/rolloutplan/core/rollout"
)

var (
	// ErrNotFound is returned for unknown session IDs.
	ErrNotFound = errors.New("session not found")
	// ErrUnknownWeek is returned when a week number is outside the plan.
	ErrUnknownWeek = errors.New("unknown week")
	// ErrUnknownColor is returned when toggling a colour the week does not use.
	ErrUnknownColor = errors.New("colour not used in week")
)

// Header is the document heading shown above the plan.
type Header struct {
	CompanyName     string `json:"company_name"`
	ProjectName     string `json:"project_name"`
	ShowCompanyName bool   `json:"show_company_name"`
}

// Settings are the user-editable inputs of a session.
type Settings struct {
	Header
	Branches int `json:"branches"`
}

// View is a copy of a session safe to hand out. Weeks have hidden colours
// masked.
type View struct {
	ID         string                  `json:"id"`
	Header     Header                  `json:"header"`
	Branches   int                     `json:"branches"`
	Weeks      []rollout.WeekData      `json:"weeks"`
	DateRanges map[int]string          `json:"date_ranges"`
	Hidden     map[int][]palette.Color `json:"hidden_colors"`
	Summary    rollout.Summary         `json:"summary"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// PlanGenerated is published every time a session (re)generates its plan.
type PlanGenerated struct {
	SessionID string
	Branches  int
	Weeks     int
	// Pruned lists the week numbers whose annotations were dropped, fully or
	// in part.
	Pruned   []int
	Duration time.Duration
	At       time.Time
}

type state struct {
	id        string
	header    Header
	branches  int
	weeks     []rollout.WeekData
	dates     map[int]string
	hidden    map[int]map[palette.Color]bool
	updatedAt time.Time
}

func (s *state) week(n int) (rollout.WeekData, bool) {
	if n < 1 || n > len(s.weeks) {
		return rollout.WeekData{}, false
	}
	return s.weeks[n-1], true
}

// prune drops annotations for weeks beyond the current plan and hidden
// colours that a surviving week no longer paints.
func (s *state) prune() []int {
	gone := map[int]bool{}
	for n := range s.dates {
		if n > len(s.weeks) {
			delete(s.dates, n)
			gone[n] = true
		}
	}
	for n, set := range s.hidden {
		w, ok := s.week(n)
		if !ok {
			delete(s.hidden, n)
			gone[n] = true
			continue
		}
		used := map[palette.Color]bool{}
		for _, c := range w.Colors() {
			used[c] = true
		}
		for c := range set {
			if !used[c] {
				delete(set, c)
				gone[n] = true
			}
		}
		if len(set) == 0 {
			delete(s.hidden, n)
		}
	}
	out := make([]int, 0, len(gone))
	for n := range gone {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (s *state) view() View {
	v := View{
		ID:         s.id,
		Header:     s.header,
		Branches:   s.branches,
		Weeks:      make([]rollout.WeekData, len(s.weeks)),
		DateRanges: make(map[int]string, len(s.dates)),
		Hidden:     make(map[int][]palette.Color, len(s.hidden)),
		Summary:    rollout.Summarize(s.weeks),
		UpdatedAt:  s.updatedAt,
	}
	for i, w := range s.weeks {
		v.Weeks[i] = w.Masked(s.hidden[w.WeekNumber])
	}
	for n, d := range s.dates {
		v.DateRanges[n] = d
	}
	for n, set := range s.hidden {
		colors := make([]palette.Color, 0, len(set))
		for c := range set {
			colors = append(colors, c)
		}
		sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })
		v.Hidden[n] = colors
	}
	return v
}
