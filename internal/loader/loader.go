package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kruize/kruize-load/internal/http"
	"github.com/kruize/kruize-load/internal/logging"
	"github.com/kruize/kruize-load/internal/output"
)

// Kruize endpoints.
const (
	PathCreateMetricProfile     = "/createMetricProfile"
	PathCreateExperiment        = "/createExperiment"
	PathGenerateRecommendations = "/generateRecommendations"
)

// Errors that stop a run before any worker starts.
var (
	ErrProfileRead   = errors.New("error reading metrics profile")
	ErrTemplateRead  = errors.New("error reading experiment template")
	ErrProfileCreate = errors.New("error creating metrics profile")
)

// Options configures a Loader.
type Options struct {
	Threads                int
	TotalExperiments       int
	MetricsProfilePath     string
	ExperimentTemplatePath string

	// Console defaults to an uncolored stdout console
	Console *output.Console
	// Logger defaults to a discarding logger
	Logger *logrus.Entry
}

// Loader runs one batch experiment load.
type Loader struct {
	client  *http.Client
	console *output.Console
	log     *logrus.Entry

	threads      int
	total        int
	profilePath  string
	templatePath string

	triggers sync.WaitGroup
}

// New creates a Loader sending requests through client.
func New(client *http.Client, opts Options) *Loader {
	if opts.Console == nil {
		opts.Console = output.NewConsole(nil, true)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Loader{
		client:       client,
		console:      opts.Console,
		log:          opts.Logger,
		threads:      opts.Threads,
		total:        opts.TotalExperiments,
		profilePath:  opts.MetricsProfilePath,
		templatePath: opts.ExperimentTemplatePath,
	}
}

// Run loads both input documents, creates the metrics profile and then
// creates every experiment across the worker pool. It blocks until all
// workers and their recommendation triggers are done.
func (l *Loader) Run(ctx context.Context) (Summary, error) {
	if l.threads < 1 {
		return Summary{}, fmt.Errorf("threads must be at least 1, got %d", l.threads)
	}

	profile, err := LoadDocument(l.profilePath)
	if err != nil {
		l.reportReadError(l.profilePath, err)
		l.console.Fail("Error reading metrics profile")
		return Summary{}, fmt.Errorf("%w: %v", ErrProfileRead, err)
	}

	template, err := LoadTemplate(l.templatePath)
	if err != nil {
		l.reportReadError(l.templatePath, err)
		l.console.Fail("Error reading experiment template")
		return Summary{}, fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}

	if !l.SubmitMetricsProfile(ctx, profile) {
		l.console.Fail("Error creating Metrics Profile")
		return Summary{}, ErrProfileCreate
	}

	ranges := Partition(l.total, l.threads)
	stats := make([]*WorkerStats, len(ranges))
	start := time.Now()

	l.log.WithFields(logrus.Fields{
		"workers": len(ranges),
		"total":   l.total,
	}).Info("starting workers")

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats[i] = l.runWorker(ctx, i+1, template, r)
		}()
	}
	wg.Wait()
	l.triggers.Wait()

	summary := Summarize(stats, time.Since(start))
	l.log.WithFields(summary.Fields()).Info("run finished")

	if err := ctx.Err(); err != nil {
		l.console.Fail("Run interrupted: %v", err)
		return summary, err
	}

	l.console.OK("All experiments created successfully!")
	return summary, nil
}

func (l *Loader) reportReadError(path string, err error) {
	l.console.ItemFail("Error reading %s: %v", path, err)
	l.log.WithError(err).WithField("path", path).Error("cannot load input document")
}

// runWorker creates the experiments of r in ascending order. A failed
// experiment is reported and skipped; the worker always finishes its range
// unless ctx is cancelled.
func (l *Loader) runWorker(ctx context.Context, workerID int, template *Template, r WorkRange) *WorkerStats {
	stats := newWorkerStats(workerID, r)
	log := l.log.WithFields(logrus.Fields{"worker": workerID, "start": r.Start, "end": r.End})
	log.Debug("worker started")

	for i := r.Start; i < r.End; i++ {
		if ctx.Err() != nil {
			log.WithField("index", i).Warn("worker stopped: context cancelled")
			break
		}

		exp, err := template.Instance(workerID, i)
		if err != nil {
			name := NamesFor(workerID, i).Experiment
			l.console.ItemFail("Error building Experiment %s: %v", name, err)
			log.WithError(err).WithField("experiment", name).Error("cannot build experiment")
			stats.Failed++
			continue
		}

		began := time.Now()
		created := l.SubmitExperiment(ctx, exp)
		stats.record(time.Since(began), created)

		if created {
			l.TriggerRecommendation(ctx, exp.Experiment)
			stats.Triggered++
		}
	}

	log.WithFields(logrus.Fields{
		"created": stats.Created,
		"failed":  stats.Failed,
	}).Debug("worker finished")
	return stats
}

// SubmitMetricsProfile sends the metrics profile verbatim.
func (l *Loader) SubmitMetricsProfile(ctx context.Context, profile json.RawMessage) bool {
	return l.post(ctx, PathCreateMetricProfile, profile, "Metric Profile")
}

// SubmitExperiment creates one experiment. The endpoint expects an array.
func (l *Loader) SubmitExperiment(ctx context.Context, exp *Experiment) bool {
	return l.post(ctx, PathCreateExperiment, []interface{}{exp.Body}, "Experiment "+exp.Experiment)
}

// TriggerRecommendation asks the service to generate recommendations for
// name without waiting for, inspecting or reporting the outcome.
func (l *Loader) TriggerRecommendation(ctx context.Context, name string) {
	l.triggers.Add(1)
	go func() {
		defer l.triggers.Done()
		defer func() { _ = recover() }()

		_, _ = l.client.PostJSON(ctx, PathGenerateRecommendations, map[string]string{
			"experiment_name": name,
		})
	}()
	l.console.ItemNotice("Triggered recommendation for %s", name)
}

func (l *Loader) post(ctx context.Context, path string, body interface{}, name string) bool {
	log := l.log.WithFields(logrus.Fields{"path": path, "target": name})

	resp, err := l.client.PostJSON(ctx, path, body)
	if err != nil {
		l.console.ItemFail("Error sending request to %s: %v", name, err)
		log.WithError(err).Error("request failed")
		return false
	}

	if !resp.IsSuccess() {
		l.console.ItemFail("Failed to create %s (Status: %d): %s", name, resp.StatusCode, resp.BodyString())
		log.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"message": resp.Message(),
		}).Warn("request rejected")
		return false
	}

	l.console.ItemOK("Successfully created %s", name)
	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"latency": resp.ResponseTime.String(),
	}).Debug("request succeeded")
	return true
}
