package stage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/flarebyte/jsforge/internal/pathalias"
	"github.com/flarebyte/jsforge/internal/script"
)

const discoverExportsStage = "discover-exports"

var errNotEvaluated = errors.New("script not evaluated")

// synthesizedName is the file name used when a function declares no path.
func synthesizedName(name, lang string) string {
	if lang == "" {
		return name
	}
	return name + "." + lang
}

// singleTarget resolves where a single-output function writes.
func singleTarget(e script.Entry, table pathalias.Table, dir string) string {
	candidate := e.DeclaredPath
	if candidate == "" {
		candidate = filepath.Join(dir, synthesizedName(e.Name, e.DeclaredLang))
	}
	return table.Resolve(candidate, dir)
}

func planEntries(x script.Exports, table pathalias.Table, dir string) []PlannedEntry {
	plan := make([]PlannedEntry, 0, x.Len())
	for _, e := range x.Single {
		plan = append(plan, PlannedEntry{
			Name:   e.Name,
			Kind:   e.Kind().String(),
			Lang:   e.DeclaredLang,
			Target: singleTarget(e, table, dir),
		})
	}
	for _, e := range x.Composed {
		plan = append(plan, PlannedEntry{Name: e.Name, Kind: e.Kind().String(), Lang: e.DeclaredLang})
	}
	return plan
}

func discoverExportsRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.rt == nil {
		return Envelope{}, fmt.Errorf("%s: %w", discoverExportsStage, errNotEvaluated)
	}
	stop := in.rt.Watch(ctx)
	exports, err := in.rt.Discover()
	stop()
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", discoverExportsStage, err)
	}
	out := in
	out.Entries = &exports
	out.Plan = planEntries(exports, in.cfg.AliasTable(), in.dir())
	deps.logger().Debug("exports discovered",
		zap.Int("single", len(exports.Single)),
		zap.Int("composed", len(exports.Composed)))
	return out, nil
}

func init() { Register(discoverExportsStage, discoverExportsRunner) }
