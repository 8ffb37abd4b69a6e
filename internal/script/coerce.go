package script

import (
	"errors"
	"math"
	"strconv"

	"github.com/dop251/goja"
)

// Text converts v to a string with JavaScript String(v) rules. Strings are
// never quoted. It fails only when Watch interrupts a running toString.
func (r *Runtime) Text(v Value) (s string, err error) {
	if raised := r.try(func() { s = r.toString(v.raw) }); raised != nil {
		return "", errors.New(errorMessage(r, raised))
	}
	return s, nil
}

func (r *Runtime) toString(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	if obj, ok := v.(*goja.Object); ok {
		return r.display(obj)
	}
	switch x := v.Export().(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "Infinity"
		case math.IsInf(x, -1):
			return "-Infinity"
		}
		// goja formats finite numbers with Number.prototype.toString.
		return v.String()
	}
	return v.String()
}

// display is the engine's generic form for objects: String(obj), or
// "[object Class]" when the object's own toString throws. Interrupts are
// not caught here.
func (r *Runtime) display(obj *goja.Object) string {
	var s string
	if exc := r.vm.Try(func() { s = obj.String() }); exc != nil {
		return "[object " + obj.ClassName() + "]"
	}
	return s
}
