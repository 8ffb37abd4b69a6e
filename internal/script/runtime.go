// Package script hosts the JavaScript side of a generation run. A Runtime
// wraps one goja VM and is owned by exactly one run; nothing outside this
// package sees goja values directly. Discovery, invocation and result
// classification are built on the small set of operations Runtime exposes:
// evaluate, list globals, get a global, call and test for arrays.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Runtime is an opaque handle on an evaluated script. It is not safe for
// concurrent use.
type Runtime struct {
	vm       *goja.Runtime
	isArray  goja.Callable
	ownNames goja.Callable
	log      *zap.Logger
}

// Value is a value produced by the script. It can only be inspected through
// this package.
type Value struct {
	raw goja.Value
}

// EvalError reports a script that failed to compile or threw at top level.
type EvalError struct {
	Script  string
	Message string
}

func (e *EvalError) Error() string {
	if e.Script == "" {
		return "evaluate script: " + e.Message
	}
	return fmt.Sprintf("evaluate script %s: %s", e.Script, e.Message)
}

// NewRuntime creates a fresh VM with a console bound to log. A nil logger
// discards console output.
func NewRuntime(log *zap.Logger) *Runtime {
	if log == nil {
		log = zap.NewNop()
	}
	vm := goja.New()
	r := &Runtime{vm: vm, log: log}
	// Captured before any user code runs so scripts cannot shadow them.
	arrayCtor := vm.GlobalObject().Get("Array").ToObject(vm)
	r.isArray, _ = goja.AssertFunction(arrayCtor.Get("isArray"))
	objectCtor := vm.GlobalObject().Get("Object").ToObject(vm)
	r.ownNames, _ = goja.AssertFunction(objectCtor.Get("getOwnPropertyNames"))
	r.installConsole()
	return r
}

// Evaluate runs src as a classic script. name is only used in messages and
// stack traces.
func (r *Runtime) Evaluate(name, src string) error {
	if _, err := r.vm.RunScript(name, src); err != nil {
		return &EvalError{Script: name, Message: errorMessage(r, err)}
	}
	return nil
}

// GlobalNames lists the global object's own string keys in engine order.
func (r *Runtime) GlobalNames() ([]string, error) {
	res, err := r.ownNames(goja.Undefined(), r.vm.GlobalObject())
	if err != nil {
		return nil, fmt.Errorf("list globals: %s", errorMessage(r, err))
	}
	var names []string
	if err := r.vm.ExportTo(res, &names); err != nil {
		return nil, fmt.Errorf("list globals: %w", err)
	}
	return names, nil
}

// global reads a global binding. Getter exceptions and interrupts are
// returned as errors.
func (r *Runtime) global(name string) (v goja.Value, err error) {
	err = r.try(func() {
		v = r.vm.GlobalObject().Get(name)
	})
	return v, err
}

// try runs f and returns what the script raised inside it: a
// *goja.Exception, or a *goja.InterruptedError when Watch fired. goja's own
// Try lets interrupts through as panics.
func (r *Runtime) try(f func()) (err error) {
	defer func() {
		x := recover()
		if x == nil {
			return
		}
		if e, ok := x.(error); ok {
			var intr *goja.InterruptedError
			if errors.As(e, &intr) {
				err = intr
				return
			}
		}
		panic(x)
	}()
	if exc := r.vm.Try(f); exc != nil {
		return exc
	}
	return nil
}

// isInterrupt reports whether err comes from Watch stopping the VM.
func isInterrupt(err error) bool {
	var intr *goja.InterruptedError
	return errors.As(err, &intr)
}

func (r *Runtime) isArrayRaw(v goja.Value) bool {
	if v == nil || r.isArray == nil {
		return false
	}
	res, err := r.isArray(goja.Undefined(), v)
	if err != nil {
		return false
	}
	return res.ToBoolean()
}

// Watch interrupts the VM when ctx is done. The returned stop function must
// be called before the Runtime is dropped; it waits for the watcher to exit.
func (r *Runtime) Watch(ctx context.Context) (stop func()) {
	if ctx == nil || ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			r.vm.ClearInterrupt()
		})
	}
}

func (r *Runtime) installConsole() {
	console := r.vm.NewObject()
	logAt := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, a := range call.Arguments {
				parts = append(parts, r.toString(a))
			}
			msg := strings.Join(parts, " ")
			switch level {
			case "warn":
				r.log.Warn(msg, zap.String("source", "console"))
			case "error":
				r.log.Error(msg, zap.String("source", "console"))
			default:
				r.log.Debug(msg, zap.String("source", "console"))
			}
			return goja.Undefined()
		}
	}
	for _, name := range []string{"log", "info", "debug"} {
		_ = console.Set(name, logAt("debug"))
	}
	_ = console.Set("warn", logAt("warn"))
	_ = console.Set("error", logAt("error"))
	_ = r.vm.Set("console", console)
}

// errorMessage turns a goja error into a single display message.
func errorMessage(r *Runtime, err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return exceptionMessage(r, exc)
	}
	var intr *goja.InterruptedError
	if errors.As(err, &intr) {
		if v := intr.Value(); v != nil {
			if e, ok := v.(error); ok {
				return "interrupted: " + e.Error()
			}
			return fmt.Sprintf("interrupted: %v", v)
		}
		return "interrupted"
	}
	return err.Error()
}

// exceptionMessage renders the thrown value the way String(value) would,
// falling back to goja's own formatting when that throws again.
func exceptionMessage(r *Runtime, exc *goja.Exception) string {
	val := exc.Value()
	if val == nil {
		return exc.Error()
	}
	var msg string
	if again := r.try(func() { msg = val.String() }); again != nil {
		return exc.Error()
	}
	return msg
}
