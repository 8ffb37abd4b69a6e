package stage

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flarebyte/jsforge/internal/config"
	"github.com/flarebyte/jsforge/internal/outfile"
	"github.com/flarebyte/jsforge/internal/pathalias"
	"github.com/flarebyte/jsforge/internal/script"
)

const writeComposedStage = "write-composed"

// newID returns a random 32 character lowercase hex identifier.
func newID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// scalarTarget names the file for a composed function that returned a
// single value.
func scalarTarget(e script.Entry, dir string) string {
	name := e.Name + "_" + newID()
	if e.DeclaredLang != "" {
		name += "." + e.DeclaredLang
	}
	return filepath.Join(dir, name)
}

type composedWriter struct {
	env   *Envelope
	table pathalias.Table
	dir   string
	mode  config.ComposeMode
	log   *zap.Logger
}

func (w composedWriter) write(ctx context.Context, e script.Entry) {
	if err := ctx.Err(); err != nil {
		w.env.fail(Failure{Name: e.Name, Error: err.Error()})
		return
	}
	v, err := w.env.rt.Invoke(e.Name, w.env.input.Content)
	if err != nil {
		w.log.Warn("function failed", zap.String("name", e.Name), zap.Error(err))
		w.env.fail(Failure{Name: e.Name, Error: err.Error()})
		return
	}
	c, err := w.env.rt.Classify(v)
	if err != nil {
		w.log.Warn("unsupported result", zap.String("name", e.Name), zap.Error(err))
		w.env.fail(Failure{Name: e.Name, Error: err.Error()})
		return
	}
	if c.Kind == script.Scalar {
		w.writeOne(e.Name, scalarTarget(e, w.dir), c.Text, "scalar")
		return
	}
	if w.mode == config.ComposeAggregate {
		w.writeAggregate(e.Name, c.Pairs)
		return
	}
	if len(c.Pairs) == 0 {
		w.env.succeed(Success{Name: e.Name})
		return
	}
	for _, p := range c.Pairs {
		w.writeOne(e.Name, w.table.Resolve(p.Key, w.dir), p.Value, "pair")
	}
}

func (w composedWriter) writeOne(name, target, content, kind string) {
	if err := outfile.Write(target, content); err != nil {
		w.log.Warn("write failed", zap.String("name", name), zap.String("path", target), zap.Error(err))
		w.env.fail(Failure{Name: name, Error: err.Error(), Path: target})
		return
	}
	w.log.Debug("written", zap.String("name", name), zap.String("path", target), zap.String("kind", kind))
	w.env.succeed(Success{Name: name, Path: target})
}

// writeAggregate writes pairs in order and stops at the first failure.
// One outcome is recorded for the whole call.
func (w composedWriter) writeAggregate(name string, pairs []script.Pair) {
	for _, p := range pairs {
		target := w.table.Resolve(p.Key, w.dir)
		if err := outfile.Write(target, p.Value); err != nil {
			w.log.Warn("write failed", zap.String("name", name), zap.String("path", target), zap.Error(err))
			w.env.fail(Failure{Name: name, Error: err.Error(), Path: target})
			return
		}
		w.log.Debug("written", zap.String("name", name), zap.String("path", target), zap.String("kind", "pair"))
	}
	w.env.succeed(Success{Name: name, Count: len(pairs)})
}

func writeComposedRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.rt == nil {
		return Envelope{}, fmt.Errorf("%s: %w", writeComposedStage, errNotEvaluated)
	}
	if in.Entries == nil {
		return in, nil
	}
	out := in
	stop := out.rt.Watch(ctx)
	defer stop()
	w := composedWriter{
		env:   &out,
		table: out.cfg.AliasTable(),
		dir:   out.dir(),
		mode:  out.cfg.Compose,
		log:   deps.logger(),
	}
	for _, e := range out.Entries.Composed {
		w.write(ctx, e)
	}
	return out, nil
}

func init() { Register(writeComposedStage, writeComposedRunner) }
