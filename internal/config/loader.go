// Package config holds the settings of a load run and how they are loaded.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Input document names, relative to Settings.InputDir.
const (
	MetricsProfileFile = "metrics_profile.json"
	ExperimentFile     = "create_exp.json"
)

// Defaults for a local Kruize deployment.
const (
	DefaultBaseURL          = "http://127.0.0.1:8080"
	DefaultThreads          = 4
	DefaultTotalExperiments = 100_000
	DefaultInputDir         = "inputs"
	DefaultTimeout          = "30s"
	DefaultLogFile          = "load.log"
	DefaultLogLevel         = "info"
)

// Settings configures a batch experiment load run.
//
// Example YAML:
//
//	baseUrl: "http://127.0.0.1:8080"
//	threads: 4
//	totalExperiments: 100000
//	inputDir: inputs
//	timeout: 30s
type Settings struct {
	// BaseURL of the Kruize service
	BaseURL string `yaml:"baseUrl"`

	// Threads is the number of concurrent workers
	Threads int `yaml:"threads"`

	// TotalExperiments is the number of experiments created across all workers
	TotalExperiments int `yaml:"totalExperiments"`

	// InputDir holds metrics_profile.json and create_exp.json
	InputDir string `yaml:"inputDir"`

	// Timeout per HTTP request ("30s", "2 minutes"). "0" waits forever.
	Timeout string `yaml:"timeout"`

	// LogFile is recreated on every run
	LogFile string `yaml:"logFile"`

	// LogLevel is a logrus level name
	LogLevel string `yaml:"logLevel"`

	// NoColor disables colored console output
	NoColor bool `yaml:"noColor"`
}

// Default returns the settings used when nothing else is configured.
func Default() Settings {
	return Settings{
		BaseURL:          DefaultBaseURL,
		Threads:          DefaultThreads,
		TotalExperiments: DefaultTotalExperiments,
		InputDir:         DefaultInputDir,
		Timeout:          DefaultTimeout,
		LogFile:          DefaultLogFile,
		LogLevel:         DefaultLogLevel,
	}
}

// LoadSettings reads a YAML settings file on top of Default.
func LoadSettings(path string) (Settings, error) {
	settings := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("error parsing config file: %w", err)
	}

	return settings, nil
}

// MetricsProfilePath returns the path of the metrics profile document.
func (s Settings) MetricsProfilePath() string {
	return filepath.Join(s.InputDir, MetricsProfileFile)
}

// ExperimentTemplatePath returns the path of the experiment template document.
func (s Settings) ExperimentTemplatePath() string {
	return filepath.Join(s.InputDir, ExperimentFile)
}

// RequestTimeout parses Timeout. An empty value means DefaultTimeout.
func (s Settings) RequestTimeout() (time.Duration, error) {
	if strings.TrimSpace(s.Timeout) == "" {
		return parseDurationString(DefaultTimeout)
	}
	return parseDurationString(s.Timeout)
}

// parseDurationString parses duration strings like "30s", "5m", "1 minute"
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	duration = strings.ToLower(duration)
	duration = strings.ReplaceAll(duration, " ", "")

	// longest words first so "seconds" is not rewritten as "s" + "s"
	replacements := []struct{ word, abbrev string }{
		{"seconds", "s"},
		{"second", "s"},
		{"minutes", "m"},
		{"minute", "m"},
		{"hours", "h"},
		{"hour", "h"},
	}

	for _, r := range replacements {
		duration = strings.ReplaceAll(duration, r.word, r.abbrev)
	}

	return time.ParseDuration(duration)
}
