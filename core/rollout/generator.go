package rollout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kilianp07/rolloutplan/core/palette"
)

// Generate builds the rollout plan for numBranches branches. The count is
// clamped to 0..MaxBranches; input surfaces reject out-of-range values earlier
// with ValidateBranches.
func Generate(numBranches int) []WeekData {
	numBranches = max(0, min(numBranches, MaxBranches))
	total := TotalWeeks(numBranches)
	weeks := make([]WeekData, 0, total)
	for w := 1; w <= total; w++ {
		install := BatchBranches(w, numBranches)
		finalize := BatchBranches(w-1, numBranches)
		weeks = append(weeks, buildWeek(w, install, finalize))
	}
	return weeks
}

type weekBuilder struct {
	rows    []Row
	legends []LegendItem
}

func (b *weekBuilder) legend(c palette.Color, label string) {
	b.legends = append(b.legends, LegendItem{Color: c, Label: label})
}

// single appends a row painted with one span and its legend entry.
func (b *weekBuilder) single(activity string, c palette.Color, first, last int, label string) {
	row := Row{Activity: activity}
	row.paint(c, first, last)
	b.rows = append(b.rows, row)
	b.legend(c, label)
}

func buildWeek(w int, install, finalize []int) WeekData {
	hq := w == 1
	b := &weekBuilder{}

	if len(install) > 0 {
		row := Row{Activity: ActivityPhysical}
		last := 3
		if hq {
			last = 2
		}
		row.paint(palette.Physical1, 1, last)
		b.legend(palette.Physical1, fmt.Sprintf("Physical installation for Branch %d", install[0]))
		if len(install) > 1 {
			row.paint(palette.Physical2, 4, 6)
			b.legend(palette.Physical2, fmt.Sprintf("Physical installation for Branch %d", install[1]))
		}
		b.rows = append(b.rows, row)
	}

	switch {
	case hq:
		b.single(ActivitySoftware, palette.Software, 1, 2, "Software installation for both QSYS & CX on client server")
		b.single(ActivityTraining, palette.Training, 3, 3, "Testing and training the HQ team")
		b.single(ActivityDryRun, palette.DryRunHQ, 4, 4, "Dry run the system")
	case len(finalize) > 0:
		who := joinInts(finalize, " & ")
		b.single(ActivityTraining, palette.Training, 1, 2, "Training & testing for branch "+who)
		b.single(ActivityDryRun, palette.DryRunStd, 1, 1, "Dry run the system for branch "+who)
		b.single(ActivityGoLive, palette.GoLive, 2, 2, "Go live for branch "+who)
		b.single(ActivityMonitor, palette.Monitoring, 2, 6, "Monitoring for branch "+who)
		b.single(ActivityHandover, palette.Handover, 5, 6, "System handover for branch "+who)
	}

	involved := make([]int, 0, len(finalize)+len(install))
	involved = append(involved, finalize...)
	involved = append(involved, install...)

	return WeekData{
		WeekNumber:       w,
		Title:            weekTitle(w, hq, involved),
		BranchesInvolved: involved,
		Rows:             b.rows,
		Legends:          b.legends,
	}
}

func weekTitle(w int, hq bool, involved []int) string {
	title := fmt.Sprintf("WEEK %d ", w)
	if len(involved) == 0 {
		if hq {
			title += "HQ"
		}
		return title
	}
	sorted := append([]int(nil), involved...)
	sort.Ints(sorted)
	if hq {
		return title + "HQ, BRANCH " + JoinBranches(sorted)
	}
	return title + "BRANCH " + JoinBranches(sorted)
}

// JoinBranches renders branch numbers for a title: "3", "3 & 4",
// "1,2 & 3".
func JoinBranches(nums []int) string {
	switch len(nums) {
	case 0:
		return ""
	case 1:
		return strconv.Itoa(nums[0])
	}
	last := len(nums) - 1
	return joinInts(nums[:last], ",") + " & " + strconv.Itoa(nums[last])
}

func joinInts(nums []int, sep string) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}
