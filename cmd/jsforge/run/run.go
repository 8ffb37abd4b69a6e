package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/jsforge/internal/config"
	"github.com/flarebyte/jsforge/internal/logging"
	"github.com/flarebyte/jsforge/internal/stage"
)

// EnvConfig names the environment variable used as the --config default.
const EnvConfig = "JSFORGE_CONFIG"

type options struct {
	file     string
	content  string
	config   string
	format   string
	timeout  time.Duration
	progress bool
}

// NewCmd creates the `jsforge run` command.
func NewCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "run [script] [content]",
		Short:         "Call the tagged functions of a script and write their outputs",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.file, o.content = resolveInputs(o.file, o.content, args)
			if o.config == "" {
				o.config = os.Getenv(EnvConfig)
			}
			return execute(cmd.Context(), o, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "Path to the JavaScript file")
	cmd.Flags().StringVarP(&o.content, "content", "c", "", "Path to the content file passed to every function")
	cmd.Flags().StringVar(&o.config, "config", "", "Config file (default: rc.config.* in the working directory or git root, or $"+EnvConfig+")")
	cmd.Flags().StringVar(&o.format, "format", stage.FormatText, "Report format: text|json|yaml")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Abort script execution after this duration (0 disables)")
	cmd.Flags().BoolVar(&o.progress, "progress", false, "Print stage progress to stderr")
	return cmd
}

// resolveInputs lets flags win over positional arguments.
func resolveInputs(file, content string, args []string) (string, string) {
	if file == "" && len(args) > 0 {
		file = args[0]
	}
	if content == "" && len(args) > 1 {
		content = args[1]
	}
	return file, content
}

// loadInput reads the script and content files.
func loadInput(o options) (stage.Input, error) {
	if o.file == "" {
		return stage.Input{}, errors.New("missing required input: JavaScript file (--file or first argument)")
	}
	if o.content == "" {
		return stage.Input{}, errors.New("missing required input: content file (--content or second argument)")
	}
	abs, err := filepath.Abs(o.file)
	if err != nil {
		return stage.Input{}, fmt.Errorf("failed to resolve script path: %w", err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return stage.Input{}, fmt.Errorf("failed to read script: %w", err)
	}
	content, err := os.ReadFile(o.content)
	if err != nil {
		return stage.Input{}, fmt.Errorf("failed to read content: %w", err)
	}
	return stage.Input{ScriptPath: abs, Source: string(src), Content: string(content), Format: o.format}, nil
}

func execute(ctx context.Context, o options, stdout, stderr io.Writer) error {
	if !stage.ValidFormat(o.format) {
		return fmt.Errorf("invalid --format: %q (expected text, json or yaml)", o.format)
	}
	in, err := loadInput(o)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	in.Config, err = config.LoadOrDefault(cwd, o.config)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	deps := stage.Deps{Log: logging.FromContext(ctx), Stdout: stdout}
	out, err := executePipeline(ctx, in, deps, newProgressReporter(o.progress, stderr))
	if err != nil {
		return err
	}
	return evaluateRunExit(out)
}
