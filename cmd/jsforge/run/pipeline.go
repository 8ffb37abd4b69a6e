package run

import (
	"context"
	"slices"

	"github.com/flarebyte/jsforge/internal/stage"
)

// executePipeline runs the generation stages then renders the report.
func executePipeline(ctx context.Context, in stage.Input, deps stage.Deps, p *progressReporter) (stage.Envelope, error) {
	stages := slices.Concat(stage.CoreStages, []string{"write-output"})
	out := stage.NewEnvelope(in)
	var err error
	for _, name := range stages {
		out, err = p.runStage(ctx, name, out, deps)
		if err != nil {
			return stage.Envelope{}, err
		}
	}
	out.Release()
	return out, nil
}
