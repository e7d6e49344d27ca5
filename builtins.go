package gl

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"unicode/utf8"
)

// RegisterNative binds a host function in the global scope. Arity -1 means
// the function checks its own arguments.
func (ip *Interpreter) RegisterNative(name string, arity int, fn NativeFunc) {
	ip.SetGlobal(name, NativeFnValue(name, arity, fn))
}

func registerBuiltins(ip *Interpreter) {
	registerIOBuiltins(ip)
	registerCollectionBuiltins(ip)
	registerIntrospectionBuiltins(ip)
}

// ---- io built-ins ------------------------------------------------------

func registerIOBuiltins(ip *Interpreter) {
	// print(...values) -> Null
	ip.RegisterNative("print", -1, func(ip *Interpreter, args []Value) (Value, error) {
		fmt.Fprint(ip.stdout, joinDisplay(args, " "))
		return Null, nil
	})

	// println(...values) -> Null
	ip.RegisterNative("println", -1, func(ip *Interpreter, args []Value) (Value, error) {
		fmt.Fprintln(ip.stdout, joinDisplay(args, " "))
		return Null, nil
	})

	// input(prompt?) -> String
	ip.RegisterNative("input", -1, func(ip *Interpreter, args []Value) (Value, error) {
		if len(args) > 1 {
			return Null, NewRuntimeException(ExceptType, "input() takes at most 1 argument but %d were given", len(args))
		}
		prompt := ""
		if len(args) == 1 {
			prompt = Display(args[0])
		}
		line, err := ip.stdin.ReadLine(prompt)
		switch {
		case err == nil:
			return Str(line), nil
		case errors.Is(err, io.EOF):
			return Null, NewRuntimeException(ExceptEOF, "EOF when reading a line")
		case errors.Is(err, ErrInterrupted):
			return Null, NewRuntimeException(ExceptKeyboardInterrupt, "")
		}
		return Null, NewRuntimeException(ExceptType, "input: %v", err)
	})
}

// ---- collection built-ins ----------------------------------------------

func registerCollectionBuiltins(ip *Interpreter) {
	// len(x: String | Vec | Tuple | HashMap) -> Integer
	ip.RegisterNative("len", 1, func(_ *Interpreter, args []Value) (Value, error) {
		x := args[0]
		switch x.Tag {
		case VTString:
			return Int(int64(utf8.RuneCountInString(x.Data.(string)))), nil
		case VTVector:
			return Int(int64(len(x.Data.(*Vector).Elems))), nil
		case VTTuple:
			return Int(int64(len(x.Data.([]Value)))), nil
		case VTMap:
			return Int(int64(x.Data.(*MapObject).Len())), nil
		}
		return Null, NewRuntimeException(ExceptType, "object of type '%s' has no len()", x.TypeName())
	})

	// push(v: Vec, x) -> Null
	ip.RegisterNative("push", 2, func(_ *Interpreter, args []Value) (Value, error) {
		if args[0].Tag != VTVector {
			return Null, NewRuntimeException(ExceptType, "push() argument 1 must be Vec, not '%s'", args[0].TypeName())
		}
		v := args[0].Data.(*Vector)
		v.Elems = append(v.Elems, args[1])
		return Null, nil
	})

	// insert(m: HashMap, k, v) -> Null
	ip.RegisterNative("insert", 3, func(_ *Interpreter, args []Value) (Value, error) {
		if args[0].Tag != VTMap {
			return Null, NewRuntimeException(ExceptType, "insert() argument 1 must be HashMap, not '%s'", args[0].TypeName())
		}
		return Null, args[0].Data.(*MapObject).Set(args[1], args[2])
	})

	// vec(...values) -> Vec
	ip.RegisterNative("vec", -1, func(_ *Interpreter, args []Value) (Value, error) {
		return Vec(append([]Value(nil), args...)), nil
	})

	// hashmap() -> HashMap
	ip.RegisterNative("hashmap", 0, func(_ *Interpreter, _ []Value) (Value, error) {
		return MapValue(NewMap()), nil
	})
}

// ---- introspection -----------------------------------------------------

func registerIntrospectionBuiltins(ip *Interpreter) {
	// type(x) -> String
	ip.RegisterNative("type", 1, func(_ *Interpreter, args []Value) (Value, error) {
		return Str(args[0].TypeName()), nil
	})

	// str(x) -> String
	ip.RegisterNative("str", 1, func(_ *Interpreter, args []Value) (Value, error) {
		return Str(Display(args[0])), nil
	})
}

// intArg extracts an Integer argument for native functions.
func intArg(fn string, i int, v Value) (*big.Int, error) {
	if v.Tag != VTInteger {
		return nil, NewRuntimeException(ExceptType, "%s() argument %d must be Integer, not '%s'", fn, i+1, v.TypeName())
	}
	return v.Data.(*big.Int), nil
}
