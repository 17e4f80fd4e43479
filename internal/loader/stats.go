package loader

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/sirupsen/logrus"
)

// Latency histogram bounds in microseconds: 1µs to 1h, 3 significant figures.
const (
	histMin     = 1
	histMax     = 3_600_000_000
	histSigFigs = 3
)

// WorkerStats is owned by a single worker and only read once it has finished.
type WorkerStats struct {
	WorkerID  int
	Range     WorkRange
	Attempted int64
	Created   int64
	Failed    int64
	Triggered int64

	latency *hdrhistogram.Histogram
}

func newWorkerStats(workerID int, r WorkRange) *WorkerStats {
	return &WorkerStats{
		WorkerID: workerID,
		Range:    r,
		latency:  hdrhistogram.New(histMin, histMax, histSigFigs),
	}
}

func (s *WorkerStats) record(d time.Duration, created bool) {
	s.Attempted++
	if created {
		s.Created++
	} else {
		s.Failed++
	}

	us := d.Microseconds()
	if us < histMin {
		us = histMin
	}
	if us > histMax {
		us = histMax
	}
	s.latency.RecordValue(us)
}

// Summary aggregates all workers of a run.
type Summary struct {
	Workers   int
	Attempted int64
	Created   int64
	Failed    int64
	Triggered int64
	Mean      time.Duration
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	Max       time.Duration
	Elapsed   time.Duration
}

// Summarize merges per-worker stats. Nil entries are skipped.
func Summarize(stats []*WorkerStats, elapsed time.Duration) Summary {
	merged := hdrhistogram.New(histMin, histMax, histSigFigs)
	sum := Summary{Elapsed: elapsed}

	for _, s := range stats {
		if s == nil {
			continue
		}
		sum.Workers++
		sum.Attempted += s.Attempted
		sum.Created += s.Created
		sum.Failed += s.Failed
		sum.Triggered += s.Triggered
		merged.Merge(s.latency)
	}

	if merged.TotalCount() > 0 {
		sum.Mean = time.Duration(merged.Mean()) * time.Microsecond
		sum.P50 = time.Duration(merged.ValueAtQuantile(50)) * time.Microsecond
		sum.P95 = time.Duration(merged.ValueAtQuantile(95)) * time.Microsecond
		sum.P99 = time.Duration(merged.ValueAtQuantile(99)) * time.Microsecond
		sum.Max = time.Duration(merged.Max()) * time.Microsecond
	}
	return sum
}

// Fields renders the summary for structured logging.
func (s Summary) Fields() logrus.Fields {
	return logrus.Fields{
		"workers":   s.Workers,
		"attempted": s.Attempted,
		"created":   s.Created,
		"failed":    s.Failed,
		"triggered": s.Triggered,
		"mean":      s.Mean.String(),
		"p50":       s.P50.String(),
		"p95":       s.P95.String(),
		"p99":       s.P99.String(),
		"max":       s.Max.String(),
		"elapsed":   s.Elapsed.String(),
	}
}
