package stage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/flarebyte/jsforge/internal/outfile"
	"github.com/flarebyte/jsforge/internal/script"
)

const writeSingleStage = "write-single"

// writeSingleEntry invokes one single-output function and writes its
// result, recording exactly one outcome.
func writeSingleEntry(ctx context.Context, env *Envelope, e script.Entry, target string, log *zap.Logger) {
	if err := ctx.Err(); err != nil {
		env.fail(Failure{Name: e.Name, Error: err.Error(), Path: target})
		return
	}
	v, err := env.rt.Invoke(e.Name, env.input.Content)
	if err != nil {
		log.Warn("function failed", zap.String("name", e.Name), zap.Error(err))
		env.fail(Failure{Name: e.Name, Error: err.Error(), Path: target})
		return
	}
	text, err := env.rt.Text(v)
	if err != nil {
		log.Warn("function result not convertible", zap.String("name", e.Name), zap.Error(err))
		env.fail(Failure{Name: e.Name, Error: err.Error(), Path: target})
		return
	}
	if err := outfile.Write(target, text); err != nil {
		log.Warn("write failed", zap.String("name", e.Name), zap.String("path", target), zap.Error(err))
		env.fail(Failure{Name: e.Name, Error: err.Error(), Path: target})
		return
	}
	log.Debug("written", zap.String("name", e.Name), zap.String("path", target), zap.String("kind", "single"))
	env.succeed(Success{Name: e.Name, Path: target})
}

func writeSingleRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.rt == nil {
		return Envelope{}, fmt.Errorf("%s: %w", writeSingleStage, errNotEvaluated)
	}
	if in.Entries == nil {
		return in, nil
	}
	out := in
	stop := out.rt.Watch(ctx)
	defer stop()
	table := out.cfg.AliasTable()
	log := deps.logger()
	for _, e := range out.Entries.Single {
		writeSingleEntry(ctx, &out, e, singleTarget(e, table, out.dir()), log)
	}
	return out, nil
}

func init() { Register(writeSingleStage, writeSingleRunner) }
