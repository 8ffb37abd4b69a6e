// Package stage runs a generation pass as a fixed sequence of named stages.
// Each stage takes the Envelope produced by the previous one; a stage error
// is fatal for the whole run, while per-function problems are recorded as
// Failures and the run continues.
package stage

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// Deps carries collaborators that are not part of the envelope.
type Deps struct {
	Log    *zap.Logger
	Stdout io.Writer
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Runner executes a stage.
type Runner func(ctx context.Context, in Envelope, deps Deps) (Envelope, error)

var registry = map[string]Runner{}

// Register adds a stage runner.
func Register(name string, r Runner) {
	registry[name] = r
}

// Run executes a registered stage by name.
func Run(ctx context.Context, name string, in Envelope, deps Deps) (Envelope, error) {
	r, ok := registry[name]
	if !ok {
		return Envelope{}, ErrUnknown{name: name}
	}
	out, err := r(ctx, in, deps)
	if err != nil {
		return Envelope{}, err
	}
	if out.Meta != nil {
		out.Meta.Stage = name
	}
	return out, nil
}

// Known reports whether name is a registered stage.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// ErrUnknown is returned when a stage is not found.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown stage: " + e.name }
