package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flarebyte/jsforge/cmd/jsforge/diagnose"
	"github.com/flarebyte/jsforge/cmd/jsforge/run"
	"github.com/flarebyte/jsforge/cmd/jsforge/version"
	"github.com/flarebyte/jsforge/internal/logging"
)

// NewRootCmd creates the root command for jsforge.
func NewRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "jsforge",
		Short: "Generate files from the tagged functions of a JavaScript script",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(verbose)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logging.WithLogger(ctx, l))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.FromContext(cmd.Context()).Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every generated file at debug level")

	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(run.NewCmd())
	cmd.AddCommand(diagnose.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
