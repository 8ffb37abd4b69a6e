package stage

import "context"

// CoreStages is the fixed order of a generation pass.
var CoreStages = []string{
	evaluateScriptStage,
	discoverExportsStage,
	writeSingleStage,
	writeComposedStage,
}

// RunStages executes the named stages in order. The first stage error ends
// the run.
func RunStages(ctx context.Context, in Envelope, stages []string, deps Deps) (Envelope, error) {
	out := in
	var err error
	for _, name := range stages {
		out, err = Run(ctx, name, out, deps)
		if err != nil {
			return Envelope{}, err
		}
	}
	return out, nil
}

// ExecuteExported evaluates the script, discovers its tagged functions and
// writes their outputs. The returned error is only set for fatal problems;
// per-function problems are in Envelope.Failures.
func ExecuteExported(ctx context.Context, in Input, deps Deps) (Envelope, error) {
	out, err := RunStages(ctx, NewEnvelope(in), CoreStages, deps)
	if err != nil {
		return Envelope{}, err
	}
	out.Release()
	return out, nil
}
