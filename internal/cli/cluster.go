package cli

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kruize/kruize-load/internal/cluster"
	"github.com/kruize/kruize-load/internal/logging"
	"github.com/kruize/kruize-load/internal/output"
)

// newProvider is replaced in tests so no container runtime is needed.
var newProvider = func(log *logrus.Entry, wait time.Duration) cluster.Provider {
	return cluster.NewKindProvider(log, wait)
}

func newClusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Manage the local kind cluster used for dry runs",
	}

	flags := cmd.PersistentFlags()
	flags.String("name", cluster.DefaultClusterName, "kind cluster name")
	flags.String("log-file", cluster.DefaultLogFile, "Log file, recreated on every run")
	flags.Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(newClusterInitCmd())
	cmd.AddCommand(newClusterDeleteCmd())
	return cmd
}

func newClusterInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Create the kind cluster and install Autotune",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, _ := cmd.Flags().GetString("image")

			installer, closer, err := newInstaller(cmd)
			if err != nil {
				return err
			}
			defer closer()

			return installer.Init(cmd.Context(), image)
		},
	}

	cmd.Flags().StringP("image", "i", cluster.DefaultImage, "Autotune image to deploy")
	cmd.Flags().String("repo", cluster.DefaultRepoURL, "Autotune repository URL")
	cmd.Flags().String("branch", cluster.DefaultBranch, "Autotune branch to clone")
	cmd.Flags().String("work-dir", ".", "Directory the repository is cloned into")
	cmd.Flags().Duration("poll-interval", cluster.DefaultPollInterval, "Progress interval while scripts run")
	cmd.Flags().Duration("wait", 0, "Wait for the control plane to be ready")
	return cmd
}

func newClusterDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "delete",
		Short:        "Delete the kind cluster",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			installer, closer, err := newInstaller(cmd)
			if err != nil {
				return err
			}
			defer closer()

			return installer.Delete(cmd.Context())
		},
	}
}

func newInstaller(cmd *cobra.Command) (*cluster.Installer, func(), error) {
	flags := cmd.Flags()
	logFile, _ := flags.GetString("log-file")
	noColor, _ := flags.GetBool("no-color")

	log, closer, err := logging.New(logFile, "info")
	if err != nil {
		return nil, nil, err
	}

	opts := cluster.DefaultOptions()
	opts.ClusterName, _ = flags.GetString("name")
	if flags.Lookup("repo") != nil {
		opts.RepoURL, _ = flags.GetString("repo")
		opts.Branch, _ = flags.GetString("branch")
		opts.WorkDir, _ = flags.GetString("work-dir")
		opts.PollInterval, _ = flags.GetDuration("poll-interval")
	}

	var wait time.Duration
	if flags.Lookup("wait") != nil {
		wait, _ = flags.GetDuration("wait")
	}

	out := cmd.OutOrStdout()
	console := output.NewConsole(out, noColor || !output.ColorSupported(out))

	installer := cluster.NewInstaller(newProvider(log, wait), opts, console, log)
	return installer, func() { closer.Close() }, nil
}
