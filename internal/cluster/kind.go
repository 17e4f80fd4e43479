package cluster

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	kind "sigs.k8s.io/kind/pkg/cluster"
	kindlog "sigs.k8s.io/kind/pkg/log"
)

// Provider creates and deletes named clusters.
type Provider interface {
	Create(name string) error
	Delete(name string) error
}

// KindProvider manages clusters through the kind Go API.
type KindProvider struct {
	provider     *kind.Provider
	waitForReady time.Duration
}

// NewKindProvider returns a provider that logs kind's progress to log.
func NewKindProvider(log *logrus.Entry, waitForReady time.Duration) *KindProvider {
	return &KindProvider{
		provider:     kind.NewProvider(kind.ProviderWithLogger(kindLogger{log: log})),
		waitForReady: waitForReady,
	}
}

// Create creates the cluster and waits for the control plane.
func (k *KindProvider) Create(name string) error {
	err := k.provider.Create(name,
		kind.CreateWithWaitForReady(k.waitForReady),
		kind.CreateWithDisplayUsage(false),
		kind.CreateWithDisplaySalutation(false),
	)
	return errors.Wrapf(err, "kind create cluster --name %s", name)
}

// Delete deletes the cluster and its kubeconfig entry.
func (k *KindProvider) Delete(name string) error {
	return errors.Wrapf(k.provider.Delete(name, ""), "kind delete cluster --name %s", name)
}

// kindLogger forwards kind's log output to logrus. kind verbosity levels
// above zero map to debug.
type kindLogger struct {
	log *logrus.Entry
}

var _ kindlog.Logger = kindLogger{}

func (l kindLogger) Warn(message string) { l.log.Warn(message) }

func (l kindLogger) Warnf(format string, args ...interface{}) { l.log.Warnf(format, args...) }

func (l kindLogger) Error(message string) { l.log.Error(message) }

func (l kindLogger) Errorf(format string, args ...interface{}) { l.log.Errorf(format, args...) }

func (l kindLogger) V(level kindlog.Level) kindlog.InfoLogger {
	lvl := logrus.InfoLevel
	if level > 0 {
		lvl = logrus.DebugLevel
	}
	return kindInfoLogger{log: l.log, level: lvl}
}

type kindInfoLogger struct {
	log   *logrus.Entry
	level logrus.Level
}

func (l kindInfoLogger) Info(message string) { l.log.Log(l.level, message) }

func (l kindInfoLogger) Infof(format string, args ...interface{}) { l.log.Logf(l.level, format, args...) }

func (l kindInfoLogger) Enabled() bool { return l.log.Logger.IsLevelEnabled(l.level) }
