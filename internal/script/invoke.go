package script

import (
	"github.com/dop251/goja"
)

// InvokeError is a per-entry call failure: the binding is missing, not
// callable, or the call threw.
type InvokeError struct {
	Name    string
	Message string
}

func (e *InvokeError) Error() string { return e.Message }

// Invoke calls the global function name with content as its only argument
// and an undefined receiver. The result is returned unconverted.
func (r *Runtime) Invoke(name, content string) (Value, error) {
	raw, err := r.global(name)
	if err != nil {
		return Value{}, &InvokeError{Name: name, Message: errorMessage(r, err)}
	}
	fn, ok := goja.AssertFunction(raw)
	if !ok {
		return Value{}, &InvokeError{Name: name, Message: name + " is not callable"}
	}
	res, err := fn(goja.Undefined(), r.vm.ToValue(content))
	if err != nil {
		return Value{}, &InvokeError{Name: name, Message: errorMessage(r, err)}
	}
	return Value{raw: res}, nil
}
