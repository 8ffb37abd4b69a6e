package script

import (
	"errors"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Metadata property names read from exported functions.
const (
	PathProp    = "path"
	LangProp    = "lang"
	ComposeProp = "compose"
)

// EntryKind says how an exported function's result is written.
type EntryKind int

const (
	// SingleOutput functions return the content of one file at DeclaredPath.
	SingleOutput EntryKind = iota + 1
	// Composed functions return their own path/content pairs.
	Composed
)

func (k EntryKind) String() string {
	if k == Composed {
		return "composed"
	}
	return "single"
}

// Entry is one exported function found on the global object.
type Entry struct {
	Name         string `json:"name"`
	DeclaredPath string `json:"path,omitempty"`
	DeclaredLang string `json:"lang,omitempty"`
	IsComposed   bool   `json:"compose,omitempty"`
}

// Kind returns the entry's kind.
func (e Entry) Kind() EntryKind {
	if e.IsComposed {
		return Composed
	}
	return SingleOutput
}

// Exports splits discovered entries by kind, each in global enumeration order.
type Exports struct {
	Single   []Entry `json:"single"`
	Composed []Entry `json:"composed"`
}

// Len returns the total number of entries.
func (x Exports) Len() int { return len(x.Single) + len(x.Composed) }

// ClassifyBinding inspects one global binding. It reports false for values
// that are not callable or carry neither a non-empty path nor a compose
// marker. A compose marker wins over path.
func (r *Runtime) ClassifyBinding(name string, binding Value) (Entry, bool) {
	e, ok, err := r.inspect(name, binding.raw)
	if err != nil {
		return Entry{}, false
	}
	return e, ok
}

func (r *Runtime) inspect(name string, v goja.Value) (e Entry, ok bool, err error) {
	err = r.try(func() {
		e, ok = classifyBinding(name, v)
	})
	return e, ok, err
}

func classifyBinding(name string, v goja.Value) (Entry, bool) {
	if _, callable := goja.AssertFunction(v); !callable {
		return Entry{}, false
	}
	fn := v.(*goja.Object)
	e := Entry{
		Name:         name,
		DeclaredPath: stringProp(fn, PathProp),
		DeclaredLang: stringProp(fn, LangProp),
		IsComposed:   hasProp(fn, ComposeProp),
	}
	if !e.IsComposed && e.DeclaredPath == "" {
		return Entry{}, false
	}
	return e, true
}

// stringProp returns a primitive string property or "".
func stringProp(obj *goja.Object, name string) string {
	v := obj.Get(name)
	if v == nil {
		return ""
	}
	if _, isObj := v.(*goja.Object); isObj {
		return ""
	}
	s, _ := v.Export().(string)
	return s
}

// hasProp reports whether name is set to anything but null or undefined.
func hasProp(obj *goja.Object, name string) bool {
	v := obj.Get(name)
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

// Discover walks the global object and returns every exported function.
// Builtins and untagged callables are skipped; a binding whose metadata
// reads throw is skipped as well. An interrupt stops discovery with an
// error.
func (r *Runtime) Discover() (Exports, error) {
	names, err := r.GlobalNames()
	if err != nil {
		return Exports{}, err
	}
	var out Exports
	for _, name := range names {
		if IsBuiltin(name) {
			continue
		}
		var (
			e  Entry
			ok bool
		)
		raw, err := r.global(name)
		if err == nil {
			e, ok, err = r.inspect(name, raw)
		}
		if err != nil {
			if isInterrupt(err) {
				return Exports{}, errors.New(errorMessage(r, err))
			}
			r.log.Debug("skip global: metadata read threw", zap.String("name", name), zap.String("error", errorMessage(r, err)))
			continue
		}
		if !ok {
			continue
		}
		if e.IsComposed {
			out.Composed = append(out.Composed, e)
		} else {
			out.Single = append(out.Single, e)
		}
	}
	return out, nil
}
