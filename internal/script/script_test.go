package script

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEvaluated(t *testing.T, src string) *Runtime {
	t.Helper()
	rt := NewRuntime(zap.NewNop())
	require.NoError(t, rt.Evaluate("test.js", src))
	return rt
}

func textOf(t *testing.T, rt *Runtime, v Value) string {
	t.Helper()
	s, err := rt.Text(v)
	require.NoError(t, err)
	return s
}

func invokeUnder(t *testing.T, rt *Runtime, name string, timeout time.Duration) (Value, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	stop := rt.Watch(ctx)
	v, err := rt.Invoke(name, "")
	require.NoError(t, err)
	return v, func() {
		stop()
		cancel()
	}
}

const discoverySrc = `
function a(c) { return c }
a.path = "@/a.txt";
function b(c) { return [] }
b.compose = true;
function untagged(c) { return c }
function emptyPath() {}
emptyPath.path = "";
function numericPath() {}
numericPath.path = 42;
function f() {}
f.path = "gen/f.go";
f.lang = "go";
function g() {}
g.path = "g.txt";
g.compose = false;
var notFn = { path: "x.txt" };
`

func TestDiscover_SplitsSingleAndComposed(t *testing.T) {
	rt := newEvaluated(t, discoverySrc)
	got, err := rt.Discover()
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Name: "a", DeclaredPath: "@/a.txt"},
		{Name: "f", DeclaredPath: "gen/f.go", DeclaredLang: "go"},
	}, got.Single)
	require.Equal(t, []Entry{
		{Name: "b", IsComposed: true},
		{Name: "g", DeclaredPath: "g.txt", IsComposed: true},
	}, got.Composed)
	require.Equal(t, 4, got.Len())
}

func TestDiscover_NeverIncludesBuiltins(t *testing.T) {
	rt := newEvaluated(t, `
Object.path = "o.txt";
Array.compose = true;
parseInt.path = "p.txt";
JSON.path = "j.txt";
console.log.path = "c.txt";
function mine() {}
mine.path = "m.txt";
`)
	got, err := rt.Discover()
	require.NoError(t, err)
	require.Empty(t, got.Composed)
	require.Len(t, got.Single, 1)
	require.Equal(t, "mine", got.Single[0].Name)
	for _, e := range got.Single {
		require.False(t, IsBuiltin(e.Name))
	}
}

func TestDiscover_EmptyScript(t *testing.T) {
	rt := newEvaluated(t, `var x = 1;`)
	got, err := rt.Discover()
	require.NoError(t, err)
	require.Zero(t, got.Len())
}

func TestDiscover_SkipsThrowingGetters(t *testing.T) {
	rt := newEvaluated(t, `
function ok() {}
ok.path = "ok.txt";
function bad() {}
Object.defineProperty(bad, "path", { get: function () { throw new Error("nope") } });
`)
	got, err := rt.Discover()
	require.NoError(t, err)
	require.Len(t, got.Single, 1)
	require.Equal(t, "ok", got.Single[0].Name)
}

func TestClassifyBinding(t *testing.T) {
	rt := newEvaluated(t, `
function tagged() {}
tagged.path = "t.txt";
tagged.compose = null;
function thrower() {}
Object.defineProperty(thrower, "path", { get: function () { throw new Error("x") } });
var plain = { path: "p.txt" };
`)
	get := func(name string) Value {
		v, err := rt.global(name)
		require.NoError(t, err)
		return Value{raw: v}
	}
	e, ok := rt.ClassifyBinding("tagged", get("tagged"))
	require.True(t, ok)
	require.Equal(t, Entry{Name: "tagged", DeclaredPath: "t.txt"}, e)
	require.Equal(t, SingleOutput, e.Kind())

	_, ok = rt.ClassifyBinding("thrower", get("thrower"))
	require.False(t, ok)
	_, ok = rt.ClassifyBinding("plain", get("plain"))
	require.False(t, ok)
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"Object", "Array", "Math", "JSON", "globalThis", "console", "Uint8Array", "Promise"} {
		require.True(t, IsBuiltin(name), name)
	}
	for _, name := range []string{"generate", "path", "maker", ""} {
		require.False(t, IsBuiltin(name), name)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	rt := NewRuntime(nil)
	err := rt.Evaluate("broken.js", "function (")
	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	require.Equal(t, "broken.js", evalErr.Script)

	rt = NewRuntime(nil)
	err = rt.Evaluate("throws.js", `throw new Error("top level")`)
	require.True(t, errors.As(err, &evalErr))
	require.Contains(t, err.Error(), "top level")
}

func TestInvoke(t *testing.T) {
	rt := newEvaluated(t, `
function echo(c) { return c }
function count() { return arguments.length }
function receiver() { "use strict"; return typeof this }
function boom() { throw new Error("boom") }
function raw() { throw "plain failure" }
var data = 3;
`)
	v, err := rt.Invoke("echo", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", textOf(t, rt, v))

	v, err = rt.Invoke("count", "x")
	require.NoError(t, err)
	require.Equal(t, "1", textOf(t, rt, v))

	v, err = rt.Invoke("receiver", "x")
	require.NoError(t, err)
	require.Equal(t, "undefined", textOf(t, rt, v))

	cases := map[string]string{
		"boom":    "Error: boom",
		"raw":     "plain failure",
		"data":    "data is not callable",
		"missing": "missing is not callable",
	}
	for name, want := range cases {
		_, err := rt.Invoke(name, "x")
		var invErr *InvokeError
		require.True(t, errors.As(err, &invErr), name)
		require.Equal(t, name, invErr.Name)
		require.Equal(t, want, invErr.Message)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want Classified
	}{
		{"pairs array", `[["k1","v1"],["k2","v2"]]`, Classified{Kind: PairList, Pairs: []Pair{{"k1", "v1"}, {"k2", "v2"}}}},
		{"object", `({k1: "v1"})`, Classified{Kind: PairList, Pairs: []Pair{{"k1", "v1"}}}},
		{"array of objects", `[{a: "1", b: "2"}, {c: "3"}]`, Classified{Kind: PairList, Pairs: []Pair{{"a", "1"}, {"b", "2"}, {"c", "3"}}}},
		{"mixed elements", `[["a", 1], {b: null, c: undefined}]`, Classified{Kind: PairList, Pairs: []Pair{{"a", "1"}, {"b", "null"}, {"c", "undefined"}}}},
		{"short pair", `[["only"]]`, Classified{Kind: PairList, Pairs: []Pair{{"only", "undefined"}}}},
		{"empty array", `[]`, Classified{Kind: PairList, Pairs: []Pair{}}},
		{"nan", `NaN`, Classified{Kind: Scalar, Text: "NaN"}},
		{"null", `null`, Classified{Kind: Scalar, Text: "null"}},
		{"undefined", `undefined`, Classified{Kind: Scalar, Text: "undefined"}},
		{"true", `true`, Classified{Kind: Scalar, Text: "true"}},
		{"int", `42`, Classified{Kind: Scalar, Text: "42"}},
		{"float", `1.5`, Classified{Kind: Scalar, Text: "1.5"}},
		{"float sum", `0.1 + 0.2`, Classified{Kind: Scalar, Text: "0.30000000000000004"}},
		{"infinity", `1 / 0`, Classified{Kind: Scalar, Text: "Infinity"}},
		{"negative infinity", `-1 / 0`, Classified{Kind: Scalar, Text: "-Infinity"}},
		{"string", `"plain \"text\""`, Classified{Kind: Scalar, Text: `plain "text"`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := newEvaluated(t, "function gen() { return "+tc.expr+" }")
			v, err := rt.Invoke("gen", "")
			require.NoError(t, err)
			got, err := rt.Classify(v)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_OwnEnumerableStringKeysOnly(t *testing.T) {
	rt := newEvaluated(t, `function gen() {
	var o = {a: "1"};
	o[Symbol("s")] = "x";
	Object.defineProperty(o, "hidden", {value: "x"});
	o.b = "2";
	return o;
}`)
	v, err := rt.Invoke("gen", "")
	require.NoError(t, err)
	got, err := rt.Classify(v)
	require.NoError(t, err)
	require.Equal(t, []Pair{{"a", "1"}, {"b", "2"}}, got.Pairs)
}

func TestClassify_FunctionIsScalar(t *testing.T) {
	rt := newEvaluated(t, `function gen() { return function () { return 1 } }`)
	v, err := rt.Invoke("gen", "")
	require.NoError(t, err)
	got, err := rt.Classify(v)
	require.NoError(t, err)
	require.Equal(t, Scalar, got.Kind)
	require.Contains(t, got.Text, "return 1")
}

func TestClassify_UnsupportedElement(t *testing.T) {
	for _, expr := range []string{`[1]`, `[["a","b"], "str"]`, `[null]`} {
		rt := newEvaluated(t, "function gen() { return "+expr+" }")
		v, err := rt.Invoke("gen", "")
		require.NoError(t, err)
		_, err = rt.Classify(v)
		var clsErr *ClassifyError
		require.True(t, errors.As(err, &clsErr), expr)
		require.Contains(t, clsErr.Message, "neither an array nor an object")
	}
}

func TestClassify_ThrowingGetter(t *testing.T) {
	rt := newEvaluated(t, `function gen() { return Object.defineProperty({}, "k", { enumerable: true, get: function () { throw new Error("getter") } }) }`)
	v, err := rt.Invoke("gen", "")
	require.NoError(t, err)
	_, err = rt.Classify(v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "getter")
}

func TestWatch_InterruptsLongCall(t *testing.T) {
	rt := newEvaluated(t, `function spin() { for (;;) {} }`)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	stop := rt.Watch(ctx)
	_, err := rt.Invoke("spin", "")
	stop()
	var invErr *InvokeError
	require.True(t, errors.As(err, &invErr))
	require.Contains(t, invErr.Message, "interrupted")
}

func TestWatch_NoDeadlineIsNoop(t *testing.T) {
	rt := newEvaluated(t, `function f() { return 1 }`)
	stop := rt.Watch(context.Background())
	_, err := rt.Invoke("f", "")
	stop()
	require.NoError(t, err)
}

func TestClassify_InterruptedGetter(t *testing.T) {
	rt := newEvaluated(t, `function gen() { return Object.defineProperty({}, "k", { enumerable: true, get: function () { for (;;) {} } }) }`)
	v, done := invokeUnder(t, rt, "gen", 100*time.Millisecond)
	defer done()
	_, err := rt.Classify(v)
	var clsErr *ClassifyError
	require.True(t, errors.As(err, &clsErr))
	require.Contains(t, clsErr.Message, "interrupted")
}

func TestText_InterruptedToString(t *testing.T) {
	rt := newEvaluated(t, `function gen() { return { toString: function () { for (;;) {} } } }`)
	v, done := invokeUnder(t, rt, "gen", 100*time.Millisecond)
	defer done()
	_, err := rt.Text(v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "interrupted")
}

func TestText_ThrowingToStringFallsBack(t *testing.T) {
	rt := newEvaluated(t, `function gen() { return { toString: function () { throw new Error("no") } } }`)
	v, err := rt.Invoke("gen", "")
	require.NoError(t, err)
	require.Equal(t, "[object Object]", textOf(t, rt, v))
}

func TestDiscover_InterruptedAccessorStops(t *testing.T) {
	rt := newEvaluated(t, `
function early() {}
early.path = "e.txt";
Object.defineProperty(globalThis, "slow", { enumerable: true, get: function () { for (;;) {} } });
`)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	stop := rt.Watch(ctx)
	start := time.Now()
	_, err := rt.Discover()
	stop()
	require.Error(t, err)
	require.Contains(t, err.Error(), "interrupted")
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestGlobalNames_DeclarationOrder(t *testing.T) {
	rt := newEvaluated(t, `function zeta() {} function alpha() {}`)
	names, err := rt.GlobalNames()
	require.NoError(t, err)
	var mine []string
	for _, n := range names {
		if !IsBuiltin(n) {
			mine = append(mine, n)
		}
	}
	require.Equal(t, []string{"zeta", "alpha"}, mine)
}

func TestConsole_RoutesToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rt := NewRuntime(zap.New(core))
	require.NoError(t, rt.Evaluate("c.js", `console.log("a", 1); console.warn("careful")`))
	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "a 1", entries[0].Message)
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, "careful", entries[1].Message)
}
