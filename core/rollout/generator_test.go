package rollout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rolloutplan/core/palette"
)

func painted(r Row) []int {
	var days []int
	for i, c := range r.Cells {
		if c.Painted {
			days = append(days, i+1)
		}
	}
	return days
}

func activities(w WeekData) []string {
	out := make([]string, len(w.Rows))
	for i, r := range w.Rows {
		out[i] = r.Activity
	}
	return out
}

func TestTotalWeeks(t *testing.T) {
	for n := 0; n <= MaxBranches; n++ {
		weeks := Generate(n)
		require.Len(t, weeks, (n+1)/2+1, "n=%d", n)
		for i, w := range weeks {
			assert.Equal(t, i+1, w.WeekNumber)
			if n > 0 {
				assert.NotEmpty(t, w.BranchesInvolved, "n=%d week=%d", n, w.WeekNumber)
			}
			for _, r := range w.Rows {
				assert.Len(t, r.Cells, DaysPerWeek)
			}
		}
	}
}

func TestGenerateZeroBranches(t *testing.T) {
	weeks := Generate(0)
	require.Len(t, weeks, 1)
	w := weeks[0]
	assert.Equal(t, "WEEK 1 HQ", w.Title)
	assert.Empty(t, w.BranchesInvolved)
	assert.Equal(t, []string{ActivitySoftware, ActivityTraining, ActivityDryRun}, activities(w))
	assert.Equal(t, []LegendItem{
		{Color: palette.Software, Label: "Software installation for both QSYS & CX on client server"},
		{Color: palette.Training, Label: "Testing and training the HQ team"},
		{Color: palette.DryRunHQ, Label: "Dry run the system"},
	}, w.Legends)
	assert.Equal(t, []int{1, 2}, painted(w.Rows[0]))
	assert.Equal(t, []int{3}, painted(w.Rows[1]))
	assert.Equal(t, []int{4}, painted(w.Rows[2]))
}

func TestGenerateNegativeIsZero(t *testing.T) {
	assert.Equal(t, Generate(0), Generate(-5))
	assert.Equal(t, Generate(0), Generate(math.MinInt))
}

func TestGenerateClampsLargeInput(t *testing.T) {
	assert.Equal(t, MaxBranches/2+1, TotalWeeks(MaxBranches))
	assert.Equal(t, math.MaxInt/2+1, TotalBatches(math.MaxInt))
	assert.NotPanics(t, func() {
		assert.Equal(t, Generate(MaxBranches), Generate(math.MaxInt))
	})
	assert.Equal(t, Generate(MaxBranches), Generate(MaxBranches+1))
}

func TestGenerateOneBranch(t *testing.T) {
	weeks := Generate(1)
	require.Len(t, weeks, 2)

	first := weeks[0]
	assert.Equal(t, "WEEK 1 HQ, BRANCH 1", first.Title)
	require.Equal(t, ActivityPhysical, first.Rows[0].Activity)
	assert.Equal(t, []int{1, 2}, painted(first.Rows[0]))
	assert.Equal(t, palette.Physical1, first.Rows[0].Cells[0].Style.Color)
	assert.Equal(t, "Physical installation for Branch 1", first.Legends[0].Label)
	assert.Len(t, first.Legends, 4)

	second := weeks[1]
	assert.Equal(t, "WEEK 2 BRANCH 1", second.Title)
	assert.Equal(t, []int{1}, second.BranchesInvolved)
	assert.Equal(t, []string{ActivityTraining, ActivityDryRun, ActivityGoLive, ActivityMonitor, ActivityHandover}, activities(second))
	assert.Equal(t, "Go live for branch 1", second.Legends[2].Label)
}

func TestGenerateTenBranches(t *testing.T) {
	weeks := Generate(10)
	require.Len(t, weeks, 6)

	first := weeks[0]
	assert.Equal(t, "WEEK 1 HQ, BRANCH 1 & 2", first.Title)
	assert.Equal(t, []int{1, 2}, first.BranchesInvolved)
	assert.Equal(t, []string{ActivityPhysical, ActivitySoftware, ActivityTraining, ActivityDryRun}, activities(first))
	assert.Equal(t, []int{1, 2, 4, 5, 6}, painted(first.Rows[0]))
	assert.Equal(t, palette.Physical2, first.Rows[0].Cells[3].Style.Color)
	assert.False(t, first.Rows[0].Cells[2].Painted)

	mid := weeks[2]
	assert.Equal(t, "WEEK 3 BRANCH 3,4,5 & 6", mid.Title)
	assert.Equal(t, []int{3, 4, 5, 6}, mid.BranchesInvolved)
	assert.Equal(t, []string{ActivityPhysical, ActivityTraining, ActivityDryRun, ActivityGoLive, ActivityMonitor, ActivityHandover}, activities(mid))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, painted(mid.Rows[0]))
	assert.Equal(t, []int{1, 2}, painted(mid.Rows[1]))
	assert.Equal(t, []int{1}, painted(mid.Rows[2]))
	assert.Equal(t, []int{2}, painted(mid.Rows[3]))
	assert.Equal(t, []int{2, 3, 4, 5, 6}, painted(mid.Rows[4]))
	assert.Equal(t, []int{5, 6}, painted(mid.Rows[5]))
	assert.Equal(t, []LegendItem{
		{Color: palette.Physical1, Label: "Physical installation for Branch 5"},
		{Color: palette.Physical2, Label: "Physical installation for Branch 6"},
		{Color: palette.Training, Label: "Training & testing for branch 3 & 4"},
		{Color: palette.DryRunStd, Label: "Dry run the system for branch 3 & 4"},
		{Color: palette.GoLive, Label: "Go live for branch 3 & 4"},
		{Color: palette.Monitoring, Label: "Monitoring for branch 3 & 4"},
		{Color: palette.Handover, Label: "System handover for branch 3 & 4"},
	}, mid.Legends)

	last := weeks[5]
	assert.Equal(t, "WEEK 6 BRANCH 9 & 10", last.Title)
	assert.Equal(t, []int{9, 10}, last.BranchesInvolved)
	assert.NotContains(t, activities(last), ActivityPhysical)
}

func TestEachBranchInstalledThenFinalized(t *testing.T) {
	n := 13
	weeks := Generate(n)
	installed := map[int]int{}
	finalized := map[int]int{}
	for _, w := range weeks {
		for _, l := range w.Legends {
			for b := 1; b <= n; b++ {
				if l.Label == "Physical installation for Branch "+itoa(b) {
					installed[b] = w.WeekNumber
				}
			}
		}
		for _, b := range w.BranchesInvolved {
			if _, ok := installed[b]; ok && installed[b] != w.WeekNumber {
				finalized[b] = w.WeekNumber
			}
		}
	}
	for b := 1; b <= n; b++ {
		assert.Equal(t, Batch(b), installed[b], "branch %d", b)
		assert.Equal(t, installed[b]+1, finalized[b], "branch %d", b)
	}
}

func itoa(n int) string { return JoinBranches([]int{n}) }

func TestGenerateIsIdempotent(t *testing.T) {
	a := Generate(7)
	b := Generate(7)
	assert.Equal(t, a, b)
	a[0].Rows[0].Cells[0] = Cell{}
	a[0].BranchesInvolved[0] = 99
	assert.NotEqual(t, a, Generate(7))
	assert.Equal(t, b, Generate(7))
}

func TestJoinBranches(t *testing.T) {
	assert.Equal(t, "", JoinBranches(nil))
	assert.Equal(t, "7", JoinBranches([]int{7}))
	assert.Equal(t, "3 & 4", JoinBranches([]int{3, 4}))
	assert.Equal(t, "1,2,3 & 4", JoinBranches([]int{1, 2, 3, 4}))
}

func TestBatchHelpers(t *testing.T) {
	assert.Equal(t, 0, Batch(0))
	assert.Equal(t, 1, Batch(1))
	assert.Equal(t, 1, Batch(2))
	assert.Equal(t, 2, Batch(3))
	assert.Equal(t, []int{5}, BatchBranches(3, 5))
	assert.Nil(t, BatchBranches(0, 5))
	assert.Nil(t, BatchBranches(4, 5))
	assert.Equal(t, 1, TotalWeeks(-3))
}
