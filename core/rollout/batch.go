package rollout

// BatchSize is the number of branches installed together in one week.
const BatchSize = 2

// Batch returns the 1-based batch a branch belongs to: ceil(branch/2).
func Batch(branch int) int {
	if branch < 1 {
		return 0
	}
	return (branch-1)/BatchSize + 1
}

// TotalBatches returns ceil(numBranches/2).
func TotalBatches(numBranches int) int {
	if numBranches < 1 {
		return 0
	}
	return Batch(numBranches)
}

// TotalWeeks returns the plan length: one week per batch plus the week that
// finalizes the last batch.
func TotalWeeks(numBranches int) int { return TotalBatches(numBranches) + 1 }

// BatchBranches lists the branches of batch k that exist when numBranches
// branches are planned. Out-of-range batches yield nil.
func BatchBranches(k, numBranches int) []int {
	if k < 1 || k > TotalBatches(numBranches) {
		return nil
	}
	var out []int
	for b := (k-1)*BatchSize + 1; b <= k*BatchSize && b <= numBranches; b++ {
		out = append(out, b)
	}
	return out
}
