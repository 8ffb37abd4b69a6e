package run

import (
	"fmt"

	"github.com/flarebyte/jsforge/internal/stage"
)

// exitCodePartial marks a run that wrote its report but recorded at least
// one Failure. Fatal errors use main's default of 1.
const exitCodePartial = 2

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }

// evaluateRunExit turns recorded failures into exit code 2. The report has
// already been written; a run with no functions is a success.
func evaluateRunExit(env stage.Envelope) error {
	failures := len(env.Failures)
	if failures == 0 {
		return nil
	}
	total := failures + len(env.Successes)
	return runExitError{code: exitCodePartial, msg: fmt.Sprintf("%d of %d output(s) failed", failures, total)}
}
