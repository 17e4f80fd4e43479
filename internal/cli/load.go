package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kruize/kruize-load/internal/config"
	"github.com/kruize/kruize-load/internal/http"
	"github.com/kruize/kruize-load/internal/loader"
	"github.com/kruize/kruize-load/internal/logging"
	"github.com/kruize/kruize-load/internal/output"
)

// envPrefix namespaces the environment overrides, e.g. KRUIZE_LOAD_THREADS.
const envPrefix = "KRUIZE_LOAD"

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Create a metrics profile and a batch of experiments",
		Long: `Create the metrics profile from <input-dir>/metrics_profile.json, then
create --total experiments from the first entry of <input-dir>/create_exp.json
across --threads concurrent workers. Every created experiment triggers
/generateRecommendations.

Settings are resolved from defaults, then --config, then KRUIZE_LOAD_*
environment variables, then flags.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runLoad,
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "YAML settings file")
	flags.StringP("url", "u", config.DefaultBaseURL, "Kruize base URL")
	flags.IntP("threads", "n", config.DefaultThreads, "Number of concurrent workers")
	flags.IntP("total", "t", config.DefaultTotalExperiments, "Total number of experiments to create")
	flags.StringP("input-dir", "i", config.DefaultInputDir, "Directory holding metrics_profile.json and create_exp.json")
	flags.String("timeout", config.DefaultTimeout, "Per-request timeout, 0 waits forever")
	flags.String("log-file", config.DefaultLogFile, "Log file, recreated on every run")
	flags.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "Disable colored output")

	return cmd
}

// settingKeys maps flag names to the Settings fields they override.
var settingKeys = []struct {
	flag  string
	apply func(*config.Settings, *viper.Viper, string)
}{
	{"url", func(s *config.Settings, v *viper.Viper, k string) { s.BaseURL = v.GetString(k) }},
	{"threads", func(s *config.Settings, v *viper.Viper, k string) { s.Threads = v.GetInt(k) }},
	{"total", func(s *config.Settings, v *viper.Viper, k string) { s.TotalExperiments = v.GetInt(k) }},
	{"input-dir", func(s *config.Settings, v *viper.Viper, k string) { s.InputDir = v.GetString(k) }},
	{"timeout", func(s *config.Settings, v *viper.Viper, k string) { s.Timeout = v.GetString(k) }},
	{"log-file", func(s *config.Settings, v *viper.Viper, k string) { s.LogFile = v.GetString(k) }},
	{"log-level", func(s *config.Settings, v *viper.Viper, k string) { s.LogLevel = v.GetString(k) }},
	{"no-color", func(s *config.Settings, v *viper.Viper, k string) { s.NoColor = v.GetBool(k) }},
}

// resolveSettings layers defaults, the YAML file, environment and flags.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config.Settings{}, err
	}

	settings := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadSettings(path)
		if err != nil {
			return config.Settings{}, err
		}
		settings = loaded
	}

	for _, key := range settingKeys {
		if v.IsSet(key.flag) {
			key.apply(&settings, v, key.flag)
		}
	}

	return settings, settings.Validate()
}

func runLoad(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	timeout, err := settings.RequestTimeout()
	if err != nil {
		return err
	}

	log, closer, err := logging.New(settings.LogFile, settings.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	out := cmd.OutOrStdout()
	console := output.NewConsole(out, settings.NoColor || !output.ColorSupported(out))

	client := http.NewClient(
		http.WithBaseURL(settings.BaseURL),
		http.WithTimeout(timeout),
		http.WithHeader("User-Agent", "kruize-load/"+version),
	)

	log.WithField("settings", settings).Info("starting load run")

	l := loader.New(client, loader.Options{
		Threads:                settings.Threads,
		TotalExperiments:       settings.TotalExperiments,
		MetricsProfilePath:     settings.MetricsProfilePath(),
		ExperimentTemplatePath: settings.ExperimentTemplatePath(),
		Console:                console,
		Logger:                 log,
	})

	_, err = l.Run(cmd.Context())
	return err
}
