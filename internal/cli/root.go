package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the kruize-load command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "kruize-load",
		Short:   "Load and dry-run tooling for Kruize",
		Version: version,
		Long: `kruize-load drives a running Kruize service with large batches of
experiments and manages the local kind cluster used for dry runs.`,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	root.AddCommand(newLoadCmd())
	root.AddCommand(newClusterCmd())
	return root
}

// Execute runs the root command until it finishes or the process receives
// SIGINT/SIGTERM. This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
