package stage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const writeOutputStage = "write-output"

// Output formats accepted by the write-output stage.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Report is the rendered view of a run.
type Report struct {
	Successes []Success `json:"successes" yaml:"successes"`
	Failures  []Failure `json:"failures" yaml:"failures"`
}

// ReportOf extracts the outcome lists from an envelope.
func ReportOf(env Envelope) Report {
	r := Report{Successes: env.Successes, Failures: env.Failures}
	if r.Successes == nil {
		r.Successes = []Success{}
	}
	if r.Failures == nil {
		r.Failures = []Failure{}
	}
	return r
}

// ValidFormat reports whether f names a supported output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Render writes the report in the given format.
func Render(w io.Writer, r Report, format string) error {
	switch format {
	case "", FormatText:
		return renderText(w, r)
	case FormatJSON:
		return renderJSON(w, r)
	case FormatYAML:
		return renderYAML(w, r)
	default:
		return fmt.Errorf("invalid output format: %q (expected text, json or yaml)", format)
	}
}

func renderText(w io.Writer, r Report) error {
	total := len(r.Successes) + len(r.Failures)
	if total == 0 {
		_, err := fmt.Fprintln(w, "No functions for execution found")
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Executed %d function(s):\n", total)
	for _, s := range r.Successes {
		fmt.Fprintf(&buf, "  • %s path is %s\n", s.Name, s.Path)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&buf, "  • %s => Error: %s (%s)\n", f.Name, f.Error, f.Path)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func renderJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

func renderYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func writeOutputRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	w := deps.Stdout
	if w == nil {
		w = os.Stdout
	}
	format := FormatText
	if in.Meta != nil && in.Meta.Output != nil && in.Meta.Output.Format != "" {
		format = in.Meta.Output.Format
	}
	if err := Render(w, ReportOf(in), format); err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", writeOutputStage, err)
	}
	return in, nil
}

func init() { Register(writeOutputStage, writeOutputRunner) }
