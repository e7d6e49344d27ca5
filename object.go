// object.go: runtime values
//
// Value is a tagged union. The tag says which Go type Data holds:
//
//	VTNull         nil
//	VTInteger      *big.Int
//	VTFloat        *big.Rat
//	VTBoolean      bool
//	VTString       string
//	VTVector       *Vector           (mutable through push)
//	VTTuple        []Value
//	VTMap          *MapObject
//	VTFn           *Fn               (interpreted function)
//	VTNativeFn     *NativeFn         (host function)
//	VTModule       *Module           (imported source module)
//	VTNativeModule *NativeModule     (host name->value table)
//	VTDynModule    *DynLibraryModule (shared library)
//	VTHostObject   *HostObject       (opaque payload + methods)
//
// Big numbers are never mutated after they are wrapped in a Value; every
// operator allocates its result.
package gl

import (
	"math/big"
	"strings"
)

type ValueTag int

const (
	VTNull ValueTag = iota
	VTInteger
	VTFloat
	VTBoolean
	VTString
	VTVector
	VTTuple
	VTMap
	VTFn
	VTNativeFn
	VTModule
	VTNativeModule
	VTDynModule
	VTHostObject
)

type Value struct {
	Tag  ValueTag
	Data any
}

var Null = Value{Tag: VTNull}

func Bool(b bool) Value           { return Value{Tag: VTBoolean, Data: b} }
func Int(n int64) Value           { return Value{Tag: VTInteger, Data: big.NewInt(n)} }
func BigInt(n *big.Int) Value     { return Value{Tag: VTInteger, Data: n} }
func Float(r *big.Rat) Value      { return Value{Tag: VTFloat, Data: r} }
func Str(s string) Value          { return Value{Tag: VTString, Data: s} }
func Vec(xs []Value) Value        { return Value{Tag: VTVector, Data: &Vector{Elems: xs}} }
func TupleOf(xs []Value) Value    { return Value{Tag: VTTuple, Data: xs} }
func MapValue(m *MapObject) Value { return Value{Tag: VTMap, Data: m} }

// Vector is the payload of VTVector.
type Vector struct {
	Elems []Value
}

// Fn is an interpreted function. It captures no environment: free names are
// looked up through the scope stack at call time. Functions defined while an
// imported module was evaluating remember that module's scope, which is put
// under the call scope so module-level names stay reachable.
type Fn struct {
	Name   string
	Params []string
	Body   *Block
	Module string // module name for traceback frames

	scope    ScopeID
	hasScope bool
}

// NativeFunc is the signature of every host-implemented callable.
type NativeFunc func(ip *Interpreter, args []Value) (Value, error)

// NativeFn wraps a host callable. Arity -1 means variadic.
type NativeFn struct {
	Name  string
	Arity int
	Call  NativeFunc
}

func NativeFnValue(name string, arity int, call NativeFunc) Value {
	return Value{Tag: VTNativeFn, Data: &NativeFn{Name: name, Arity: arity, Call: call}}
}

// Module is an imported source module. Its bindings live in a pinned scope.
type Module struct {
	Name  string
	Path  string
	Scope ScopeID
}

type NativeModule struct {
	Name    string
	Members map[string]Value
}

// HostMethod implements a method of a HostObject.
type HostMethod func(ip *Interpreter, payload any, args []Value) (Value, error)

// HostObject is an opaque host value. Its members can only be called.
type HostObject struct {
	Name    string
	Payload any
	Methods map[string]HostMethod
}

// TypeName is the language-level type name used in error messages.
func (v Value) TypeName() string {
	switch v.Tag {
	case VTNull:
		return "Null"
	case VTInteger:
		return "Integer"
	case VTFloat:
		return "Float"
	case VTBoolean:
		return "Boolean"
	case VTString:
		return "String"
	case VTVector:
		return "Vec"
	case VTTuple:
		return "Tuple"
	case VTMap:
		return "HashMap"
	case VTFn, VTNativeFn:
		return "Fn"
	case VTModule, VTNativeModule, VTDynModule:
		return "Module"
	case VTHostObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// String renders v the way the REPL echoes it: strings are quoted.
func (v Value) String() string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

// Display renders v the way print shows it: a top-level string is written
// bare, anything nested is quoted.
func Display(v Value) string {
	if v.Tag == VTString {
		return v.Data.(string)
	}
	return v.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.Tag {
	case VTNull:
		b.WriteString("null")
	case VTInteger:
		b.WriteString(v.Data.(*big.Int).String())
	case VTFloat:
		b.WriteString(formatRat(v.Data.(*big.Rat)))
	case VTBoolean:
		if v.Data.(bool) {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case VTString:
		b.WriteString(quoteString(v.Data.(string)))
	case VTVector:
		b.WriteByte('[')
		writeValues(b, v.Data.(*Vector).Elems)
		b.WriteByte(']')
	case VTTuple:
		b.WriteByte('(')
		writeValues(b, v.Data.([]Value))
		b.WriteByte(')')
	case VTMap:
		m := v.Data.(*MapObject)
		b.WriteByte('{')
		for i := range m.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, m.keys[i])
			b.WriteString(": ")
			writeValue(b, m.vals[i])
		}
		b.WriteByte('}')
	case VTFn:
		f := v.Data.(*Fn)
		b.WriteString("<function ")
		if f.Name != "" {
			b.WriteString(f.Name + " ")
		}
		b.WriteString("(" + strings.Join(f.Params, ", ") + ")>")
	case VTNativeFn:
		f := v.Data.(*NativeFn)
		if f.Name == "" {
			b.WriteString("<anonymous>")
			return
		}
		b.WriteString("<built-in function " + f.Name + ">")
	case VTModule:
		b.WriteString("<module '" + v.Data.(*Module).Name + "'>")
	case VTNativeModule:
		b.WriteString("<module '" + v.Data.(*NativeModule).Name + "' (built-in)>")
	case VTDynModule:
		m := v.Data.(*DynLibraryModule)
		b.WriteString("<dynmodule '" + m.Name + "' from '" + m.Path + "'>")
	case VTHostObject:
		b.WriteString("<object " + v.Data.(*HostObject).Name + ">")
	default:
		b.WriteString("<unknown>")
	}
}

func writeValues(b *strings.Builder, xs []Value) {
	for i, x := range xs {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, x)
	}
}
