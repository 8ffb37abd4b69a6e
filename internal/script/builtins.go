package script

// builtinNames are globals the environment provides before any user code runs.
var builtinNames = map[string]struct{}{
	// value properties
	"globalThis": {}, "undefined": {}, "NaN": {}, "Infinity": {},
	// functions
	"eval": {}, "isFinite": {}, "isNaN": {}, "parseFloat": {}, "parseInt": {},
	"decodeURI": {}, "decodeURIComponent": {}, "encodeURI": {}, "encodeURIComponent": {},
	"escape": {}, "unescape": {},
	// constructors
	"Object": {}, "Function": {}, "Array": {}, "String": {}, "Number": {},
	"Boolean": {}, "Symbol": {}, "BigInt": {}, "Date": {}, "RegExp": {},
	"Promise": {}, "Proxy": {}, "Map": {}, "Set": {}, "WeakMap": {},
	"WeakSet": {}, "WeakRef": {}, "FinalizationRegistry": {},
	"ArrayBuffer": {}, "SharedArrayBuffer": {}, "DataView": {},
	"Int8Array": {}, "Uint8Array": {}, "Uint8ClampedArray": {},
	"Int16Array": {}, "Uint16Array": {}, "Int32Array": {}, "Uint32Array": {},
	"Float32Array": {}, "Float64Array": {}, "BigInt64Array": {}, "BigUint64Array": {},
	// errors
	"Error": {}, "AggregateError": {}, "EvalError": {}, "RangeError": {},
	"ReferenceError": {}, "SyntaxError": {}, "TypeError": {}, "URIError": {},
	// namespaces
	"Math": {}, "JSON": {}, "Reflect": {}, "Atomics": {}, "Intl": {},
	"console": {},
}

// IsBuiltin reports whether name is intrinsic to the scripting environment.
// Such names are never treated as exported entries.
func IsBuiltin(name string) bool {
	_, ok := builtinNames[name]
	return ok
}
