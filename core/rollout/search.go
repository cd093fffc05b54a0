package rollout

import "strings"

// Search keeps the weeks whose title, row activities, legend labels or date
// range contain term, ignoring case. A blank term keeps every week.
func Search(weeks []WeekData, term string, dateRanges map[int]string) []WeekData {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return weeks
	}
	var out []WeekData
	for _, w := range weeks {
		if matches(w, term, dateRanges[w.WeekNumber]) {
			out = append(out, w)
		}
	}
	return out
}

func matches(w WeekData, term, dateRange string) bool {
	if strings.Contains(strings.ToLower(w.Title), term) {
		return true
	}
	for _, r := range w.Rows {
		if strings.Contains(strings.ToLower(r.Activity), term) {
			return true
		}
	}
	for _, l := range w.Legends {
		if strings.Contains(strings.ToLower(l.Label), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(dateRange), term)
}

// Summary describes a generated plan.
type Summary struct {
	Weeks    int `json:"weeks"`
	Branches int `json:"branches"`
	Rows     int `json:"rows"`
}

// Summarize counts weeks, distinct branches and rows of a plan.
func Summarize(weeks []WeekData) Summary {
	seen := map[int]bool{}
	s := Summary{Weeks: len(weeks)}
	for _, w := range weeks {
		s.Rows += len(w.Rows)
		for _, b := range w.BranchesInvolved {
			seen[b] = true
		}
	}
	s.Branches = len(seen)
	return s
}
