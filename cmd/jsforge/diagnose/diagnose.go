package diagnose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/flarebyte/jsforge/internal/config"
	"github.com/flarebyte/jsforge/internal/logging"
	"github.com/flarebyte/jsforge/internal/stage"
)

const defaultUntil = "discover-exports"

type options struct {
	file    string
	content string
	config  string
	until   string
	dumpDir string
}

// NewCmd creates `jsforge diagnose`.
func NewCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "diagnose",
		Short:         "Run the generation stages up to a given one and print the envelope",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "Path to the JavaScript file (required)")
	cmd.Flags().StringVarP(&o.content, "content", "c", "", "Path to the content file (optional)")
	cmd.Flags().StringVar(&o.config, "config", "", "Config file (default: located like `jsforge run`)")
	cmd.Flags().StringVar(&o.until, "until", defaultUntil, "Last stage to run (inclusive)")
	cmd.Flags().StringVar(&o.dumpDir, "dump-dir", "", "Directory to write per-stage dumps (<seq>_<stage>_{in,out}.json)")
	return cmd
}

func run(ctx context.Context, o options, w io.Writer) error {
	if o.file == "" {
		return errors.New("missing required flag: --file")
	}
	stages, err := stagesUntil(o.until)
	if err != nil {
		return err
	}
	in, err := prepareInput(o)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := runStageSequence(ctx, stage.NewEnvelope(in), stages, o.dumpDir, stage.Deps{Log: logging.FromContext(ctx)})
	if err != nil {
		return err
	}
	return printEnvelope(w, out)
}

// stagesUntil returns the core stages up to and including until.
func stagesUntil(until string) ([]string, error) {
	idx := slices.Index(stage.CoreStages, until)
	if idx < 0 {
		return nil, fmt.Errorf("unknown --until stage: %s", until)
	}
	return stage.CoreStages[:idx+1], nil
}

func prepareInput(o options) (stage.Input, error) {
	abs, err := filepath.Abs(o.file)
	if err != nil {
		return stage.Input{}, fmt.Errorf("failed to resolve script path: %w", err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return stage.Input{}, fmt.Errorf("failed to read script: %w", err)
	}
	in := stage.Input{ScriptPath: abs, Source: string(src)}
	if o.content != "" {
		b, err := os.ReadFile(o.content)
		if err != nil {
			return stage.Input{}, fmt.Errorf("failed to read content: %w", err)
		}
		in.Content = string(b)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return stage.Input{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	in.Config, err = config.LoadOrDefault(cwd, o.config)
	if err != nil {
		return stage.Input{}, err
	}
	return in, nil
}

func runStageSequence(ctx context.Context, in stage.Envelope, stages []string, dumpDir string, deps stage.Deps) (stage.Envelope, error) {
	out := in
	for i, name := range stages {
		seq := i + 1
		if err := dumpStageBoundary(dumpDir, seq, name, "in", out); err != nil {
			return stage.Envelope{}, err
		}
		next, err := stage.Run(ctx, name, out, deps)
		if err != nil {
			return stage.Envelope{}, err
		}
		if err := dumpStageBoundary(dumpDir, seq, name, "out", next); err != nil {
			return stage.Envelope{}, err
		}
		out = next
	}
	out.Release()
	return out, nil
}

func dumpStageBoundary(dir string, seq int, name, suffix string, env stage.Envelope) error {
	if dir == "" {
		return nil
	}
	base := fmt.Sprintf("%03d_%s_%s.json", seq, name, suffix)
	return writeJSONFile(filepath.Join(dir, base), env)
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dump dir: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func printEnvelope(w io.Writer, env stage.Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
