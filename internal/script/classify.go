package script

import (
	"fmt"
	"strconv"

	"github.com/dop251/goja"
)

// Kind tags a Classified result.
type Kind int

const (
	// PairList holds ordered key/content pairs.
	PairList Kind = iota + 1
	// Scalar holds one string.
	Scalar
)

func (k Kind) String() string {
	switch k {
	case PairList:
		return "pairs"
	case Scalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Pair is one key/content pair of a composed result.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Classified is the canonical shape of a composed function's return value.
type Classified struct {
	Kind  Kind
	Pairs []Pair
	Text  string
}

// ClassifyError reports a return value whose shape is not supported.
type ClassifyError struct {
	Message string
}

func (e *ClassifyError) Error() string { return e.Message }

// Classify converts a returned value:
//   - arrays become pairs, each element being a [key, value] array or an
//     object whose own properties are pairs;
//   - other non-null objects become one pair per own property;
//   - everything else becomes a Scalar holding String(v).
//
// A getter or toString that throws, or an interrupt from Watch, yields a
// ClassifyError.
func (r *Runtime) Classify(v Value) (out Classified, err error) {
	if raised := r.try(func() {
		out, err = r.classify(v.raw)
	}); raised != nil {
		return Classified{}, &ClassifyError{Message: errorMessage(r, raised)}
	}
	return out, err
}

func (r *Runtime) classify(v goja.Value) (Classified, error) {
	if r.isArrayRaw(v) {
		pairs, err := r.arrayPairs(v.(*goja.Object))
		if err != nil {
			return Classified{}, err
		}
		return Classified{Kind: PairList, Pairs: pairs}, nil
	}
	if obj, ok := plainObject(v); ok {
		return Classified{Kind: PairList, Pairs: r.objectPairs(obj, nil)}, nil
	}
	return Classified{Kind: Scalar, Text: r.toString(v)}, nil
}

func (r *Runtime) arrayPairs(arr *goja.Object) ([]Pair, error) {
	n := arr.Get("length").ToInteger()
	pairs := make([]Pair, 0, min(n, 1024))
	for i := int64(0); i < n; i++ {
		item := arr.Get(strconv.FormatInt(i, 10))
		if r.isArrayRaw(item) {
			el := item.(*goja.Object)
			pairs = append(pairs, Pair{
				Key:   r.toString(el.Get("0")),
				Value: r.toString(el.Get("1")),
			})
			continue
		}
		if obj, ok := plainObject(item); ok {
			pairs = r.objectPairs(obj, pairs)
			continue
		}
		return nil, &ClassifyError{Message: fmt.Sprintf("element %d is neither an array nor an object", i)}
	}
	return pairs, nil
}

// objectPairs appends one pair per own enumerable string key, in
// property order. Symbol keys and non-enumerable keys are not listed by
// Keys.
func (r *Runtime) objectPairs(obj *goja.Object, pairs []Pair) []Pair {
	for _, k := range obj.Keys() {
		pairs = append(pairs, Pair{Key: k, Value: r.toString(obj.Get(k))})
	}
	return pairs
}

// plainObject reports whether v is a non-null, non-callable object.
func plainObject(v goja.Value) (*goja.Object, bool) {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		return nil, false
	}
	if _, callable := goja.AssertFunction(obj); callable {
		return nil, false
	}
	return obj, true
}
