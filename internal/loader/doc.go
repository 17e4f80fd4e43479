// Package loader creates a metrics profile and then a large batch of Kruize
// experiments against a running service.
//
// The index range [0, total) is split into one contiguous WorkRange per
// worker. Workers run in parallel, share no mutable state and never stop
// because another worker failed. Within a worker indices are processed in
// ascending order, one blocking request at a time. Each successfully created
// experiment gets a detached, best-effort recommendation trigger whose outcome
// is discarded.
//
// Only three failures end a run early, all before any worker starts: the
// metrics profile cannot be read, the experiment template cannot be read, or
// the metrics profile is rejected by the service.
package loader
