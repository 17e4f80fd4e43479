package loader

// WorkRange is the half-open index interval [Start, End) owned by one worker.
type WorkRange struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r WorkRange) Len() int {
	return r.End - r.Start
}

// Partition splits [0, total) into workers contiguous, disjoint ranges that
// together cover every index. Each range holds ceil(total/workers) indices
// except at the tail, which may be shorter or empty when total is not
// divisible by workers.
func Partition(total, workers int) []WorkRange {
	if workers < 1 {
		return nil
	}
	if total < 0 {
		total = 0
	}

	chunk := (total + workers - 1) / workers
	ranges := make([]WorkRange, workers)
	for i := range ranges {
		start := min(i*chunk, total)
		ranges[i] = WorkRange{Start: start, End: min(start+chunk, total)}
	}
	return ranges
}
