package stage

import (
	"github.com/flarebyte/jsforge/internal/config"
	"github.com/flarebyte/jsforge/internal/script"
)

// Success records one file (or one composed batch) written for a function.
type Success struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Count int    `json:"count,omitempty" yaml:"count,omitempty"`
}

// Failure records a function whose call, classification or write failed.
// Path is empty when no target could be determined.
type Failure struct {
	Name  string `json:"name" yaml:"name"`
	Error string `json:"error" yaml:"error"`
	Path  string `json:"path" yaml:"path"`
}

// Input is what a run consumes.
type Input struct {
	// ScriptPath locates the script; only its directory is used, as the base
	// for relative output paths.
	ScriptPath string
	Source     string
	Content    string
	Config     config.Config
	// Format selects the write-output rendering; empty means text.
	Format     string
}

// PlannedEntry is a discovered function with its resolved target. Composed
// entries have no target until their result is known.
type PlannedEntry struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Lang   string `json:"lang,omitempty"`
	Target string `json:"target,omitempty"`
}

// OutputMeta controls the write-output stage.
type OutputMeta struct {
	Format string `json:"format,omitempty"`
}

// Meta holds run settings with deterministic JSON field order.
type Meta struct {
	Stage       string            `json:"stage,omitempty"`
	ScriptPath  string            `json:"scriptPath"`
	ScriptDir   string            `json:"scriptDir"`
	ConfigPath  string            `json:"configPath,omitempty"`
	Alias       map[string]string `json:"alias,omitempty"`
	ComposeMode string            `json:"composeMode"`
	Output      *OutputMeta       `json:"output,omitempty"`
}

// Envelope is passed from stage to stage. The outcome lists only grow and
// keep processing order.
type Envelope struct {
	Successes []Success       `json:"successes"`
	Failures  []Failure       `json:"failures"`
	Entries   *script.Exports `json:"entries,omitempty"`
	Plan      []PlannedEntry  `json:"plan,omitempty"`
	Meta      *Meta           `json:"meta,omitempty"`

	input Input
	cfg   config.Config
	rt    *script.Runtime
}

// NewEnvelope prepares the envelope for a run over in.
func NewEnvelope(in Input) Envelope {
	cfg := in.Config
	if cfg.Compose == "" {
		cfg.Compose = config.ComposeIndependent
	}
	meta := &Meta{
		ScriptPath:  in.ScriptPath,
		ScriptDir:   scriptDir(in.ScriptPath),
		ConfigPath:  cfg.Path,
		Alias:       cfg.Alias,
		ComposeMode: string(cfg.Compose),
	}
	if in.Format != "" {
		meta.Output = &OutputMeta{Format: in.Format}
	}
	return Envelope{
		Successes: []Success{},
		Failures:  []Failure{},
		Meta:      meta,
		input:     in,
		cfg:       cfg,
	}
}

// Release drops the script runtime. The envelope keeps its outcomes.
func (e *Envelope) Release() {
	e.rt = nil
}

func (e *Envelope) succeed(s Success) {
	e.Successes = append(e.Successes, s)
}

func (e *Envelope) fail(f Failure) {
	f.Error = sanitizeErrorMessage(f.Error)
	e.Failures = append(e.Failures, f)
}

func (e Envelope) dir() string {
	if e.Meta == nil {
		return scriptDir(e.input.ScriptPath)
	}
	return e.Meta.ScriptDir
}
