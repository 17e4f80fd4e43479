package cluster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kruize/kruize-load/internal/output"
)

// Defaults for the dry-run environment.
const (
	DefaultClusterName  = "dry-run"
	DefaultRepoURL      = "https://github.com/kruize/autotune.git"
	DefaultRepoName     = "autotune"
	DefaultBranch       = "mvp_demo"
	DefaultImage        = "quay.io/bharathappali/exman:latest"
	DefaultPollInterval = 5 * time.Second
	DefaultLogFile      = "dry_run.log"
)

// Options configures an Installer.
type Options struct {
	ClusterName  string
	RepoURL      string
	RepoName     string
	Branch       string
	WorkDir      string
	PollInterval time.Duration
}

// DefaultOptions returns the options of the standard dry-run setup.
func DefaultOptions() Options {
	return Options{
		ClusterName:  DefaultClusterName,
		RepoURL:      DefaultRepoURL,
		RepoName:     DefaultRepoName,
		Branch:       DefaultBranch,
		WorkDir:      ".",
		PollInterval: DefaultPollInterval,
	}
}

// Installer drives the cluster lifecycle.
type Installer struct {
	opts     Options
	provider Provider
	console  *output.Console
	log      *logrus.Entry

	// command builds external processes; replaced in tests.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewInstaller creates an Installer.
func NewInstaller(provider Provider, opts Options, console *output.Console, log *logrus.Entry) *Installer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	return &Installer{
		opts:     opts,
		provider: provider,
		console:  console,
		log:      log,
		command:  exec.CommandContext,
	}
}

// Init creates the cluster, fetches the Autotune repository and deploys
// image into the cluster.
func (i *Installer) Init(ctx context.Context, image string) error {
	if err := i.createCluster(); err != nil {
		return err
	}

	repoDir, err := filepath.Abs(filepath.Join(i.opts.WorkDir, i.opts.RepoName))
	if err != nil {
		return errors.Wrap(err, "resolving repository path")
	}

	if err := i.cloneRepo(ctx, repoDir); err != nil {
		return err
	}

	return i.install(ctx, repoDir, image)
}

// Delete removes the cluster.
func (i *Installer) Delete(ctx context.Context) error {
	name := i.opts.ClusterName
	i.log.Infof("Deleting KinD cluster '%s'...", name)

	if err := i.provider.Delete(name); err != nil {
		i.console.Fail("Deleting KinD cluster '%s' failed", name)
		i.log.WithError(err).Error("cluster deletion failed")
		return err
	}

	i.console.OK("KinD cluster '%s' deleted", name)
	return nil
}

func (i *Installer) createCluster() error {
	name := i.opts.ClusterName
	i.log.Infof("Creating KinD cluster '%s'...", name)

	if err := i.provider.Create(name); err != nil {
		i.console.Fail("Creating KinD cluster '%s' failed", name)
		i.log.WithError(err).Error("cluster creation failed")
		return err
	}

	i.console.OK("KinD cluster '%s' created", name)
	return nil
}

func (i *Installer) cloneRepo(ctx context.Context, repoDir string) error {
	name := i.opts.RepoName

	if _, err := os.Stat(repoDir); err == nil {
		i.log.Infof("Folder '%s' already exists. Skipping clone.", name)
		i.console.OK("'%s' already exists. Skipping clone.", name)
		return nil
	}

	i.log.Infof("Cloning branch '%s' from %s...", i.opts.Branch, i.opts.RepoURL)

	cmd := i.command(ctx, "git", "clone", "-b", i.opts.Branch, i.opts.RepoURL, repoDir)
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		i.log.Info(strings.TrimSpace(string(out)))
	}
	if err != nil {
		i.console.Fail("Cloning %s branch '%s' failed", name, i.opts.Branch)
		return errors.Wrapf(err, "git clone -b %s %s", i.opts.Branch, i.opts.RepoURL)
	}

	i.console.OK("%s branch '%s' cloned", name, i.opts.Branch)
	return nil
}

func (i *Installer) install(ctx context.Context, repoDir, image string) error {
	scriptsDir := filepath.Join(repoDir, "scripts")

	if err := i.runStep(ctx, scriptsDir, "Running ./scripts/prometheus_on_kind.sh",
		filepath.Join(scriptsDir, "prometheus_on_kind.sh"), "-as"); err != nil {
		return err
	}

	return i.runStep(ctx, repoDir, fmt.Sprintf("Running deploy.sh -c minikube -i %s", image),
		filepath.Join(repoDir, "deploy.sh"), "-c", "minikube", "-m", "crc", "-i", image)
}

// runStep runs an external command in dir, printing a dot every poll
// interval until it exits. Output goes to the log file.
func (i *Installer) runStep(ctx context.Context, dir, message, name string, args ...string) error {
	i.log.Info(message)
	i.console.Print(message)

	var stdout, stderr bytes.Buffer
	cmd := i.command(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		i.console.Print("\n")
		i.console.Fail("%s failed", message)
		i.log.WithError(err).Error("cannot start command")
		return errors.Wrapf(err, "starting %s", name)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	ticker := time.NewTicker(i.opts.PollInterval)
	defer ticker.Stop()

	var err error
wait:
	for {
		select {
		case err = <-done:
			break wait
		case <-ticker.C:
			i.console.Print(".")
		}
	}

	i.console.Print(" Done.\n")

	if stdout.Len() > 0 {
		i.log.Info(stdout.String())
	}
	if stderr.Len() > 0 {
		i.log.Error(stderr.String())
	}

	if err != nil {
		i.console.Fail("%s failed", message)
		return errors.Wrapf(err, "%s", message)
	}
	return nil
}
