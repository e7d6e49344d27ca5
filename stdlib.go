package gl

import (
	"bufio"
	"io"
	"math/big"
	"os"
	"strings"
)

// maxExponent bounds pow() so a typo cannot allocate unbounded memory.
const maxExponent = 1 << 16

func registerNativeModules(ip *Interpreter) {
	ip.SetGlobal("math", nativeModule("math", map[string]Value{
		"abs": NativeFnValue("abs", 1, mathAbs),
		"min": NativeFnValue("min", -1, func(_ *Interpreter, args []Value) (Value, error) { return extremum("min", args, -1) }),
		"max": NativeFnValue("max", -1, func(_ *Interpreter, args []Value) (Value, error) { return extremum("max", args, 1) }),
		"pow": NativeFnValue("pow", 2, mathPow),
	}))
	ip.SetGlobal("io", nativeModule("io", map[string]Value{
		"open": NativeFnValue("open", 1, ioOpen),
	}))
}

func nativeModule(name string, members map[string]Value) Value {
	return Value{Tag: VTNativeModule, Data: &NativeModule{Name: name, Members: members}}
}

// ---- math --------------------------------------------------------------

func mathAbs(_ *Interpreter, args []Value) (Value, error) {
	n, ok := toNumber(args[0])
	if !ok {
		return Null, NewRuntimeException(ExceptType, "bad operand type for abs(): '%s'", args[0].TypeName())
	}
	if n.r != nil {
		return Float(new(big.Rat).Abs(n.r)), nil
	}
	return BigInt(new(big.Int).Abs(n.i)), nil
}

// extremum returns the argument that compares as want against all others.
// Ties keep the first.
func extremum(name string, args []Value, want int) (Value, error) {
	if len(args) == 0 {
		return Null, NewRuntimeException(ExceptType, "%s expected at least 1 argument, got 0", name)
	}
	best := args[0]
	for _, v := range args[1:] {
		c, err := Compare(name, v, best)
		if err != nil {
			return Null, err
		}
		if c == want {
			best = v
		}
	}
	return best, nil
}

// mathPow raises base to an Integer exponent. A negative exponent yields a
// Float.
func mathPow(_ *Interpreter, args []Value) (Value, error) {
	base, ok := toNumber(args[0])
	if !ok {
		return Null, unsupported("pow()", args[0], args[1])
	}
	exp, err := intArg("pow", 1, args[1])
	if err != nil {
		return Null, err
	}
	if !exp.IsInt64() || exp.Int64() > maxExponent || exp.Int64() < -maxExponent {
		return Null, NewRuntimeException(ExceptType, "pow() exponent too large")
	}
	e := exp.Int64()
	neg := e < 0
	if neg {
		e = -e
	}
	if base.r == nil && !neg {
		return BigInt(new(big.Int).Exp(base.i, big.NewInt(e), nil)), nil
	}
	r := base.rat()
	num := new(big.Int).Exp(r.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(r.Denom(), big.NewInt(e), nil)
	if neg {
		if num.Sign() == 0 {
			return Null, NewRuntimeException(ExceptType, "division by zero")
		}
		num, den = den, num
	}
	return Float(new(big.Rat).SetFrac(num, den)), nil
}

// ---- io ----------------------------------------------------------------

type fileHandle struct {
	path   string
	f      *os.File
	r      *bufio.Reader
	closed bool
}

func ioOpen(_ *Interpreter, args []Value) (Value, error) {
	if args[0].Tag != VTString {
		return Null, NewRuntimeException(ExceptType, "open() argument must be String, not '%s'", args[0].TypeName())
	}
	path := args[0].Data.(string)
	f, err := os.Open(path)
	if err != nil {
		return Null, NewRuntimeException(ExceptType, "open: %v", err)
	}
	h := &fileHandle{path: path, f: f, r: bufio.NewReader(f)}
	return Value{Tag: VTHostObject, Data: &HostObject{Name: "File", Payload: h, Methods: fileMethods}}, nil
}

var fileMethods = map[string]HostMethod{
	"read": func(_ *Interpreter, payload any, args []Value) (Value, error) {
		h, err := openHandle("read", payload, args)
		if err != nil {
			return Null, err
		}
		b, err := io.ReadAll(h.r)
		if err != nil {
			return Null, NewRuntimeException(ExceptType, "read %s: %v", h.path, err)
		}
		return Str(string(b)), nil
	},
	"lines": func(_ *Interpreter, payload any, args []Value) (Value, error) {
		h, err := openHandle("lines", payload, args)
		if err != nil {
			return Null, err
		}
		var out []Value
		sc := bufio.NewScanner(h.r)
		for sc.Scan() {
			out = append(out, Str(strings.TrimSuffix(sc.Text(), "\r")))
		}
		if err := sc.Err(); err != nil {
			return Null, NewRuntimeException(ExceptType, "read %s: %v", h.path, err)
		}
		return Vec(out), nil
	},
	"close": func(_ *Interpreter, payload any, args []Value) (Value, error) {
		h, err := openHandle("close", payload, args)
		if err != nil {
			return Null, err
		}
		h.closed = true
		if err := h.f.Close(); err != nil {
			return Null, NewRuntimeException(ExceptType, "close %s: %v", h.path, err)
		}
		return Null, nil
	},
}

func openHandle(method string, payload any, args []Value) (*fileHandle, error) {
	if len(args) != 0 {
		return nil, NewRuntimeException(ExceptType, "%s() takes 0 positional arguments but %d were given", method, len(args))
	}
	h := payload.(*fileHandle)
	if h.closed {
		return nil, NewRuntimeException(ExceptType, "I/O operation on closed file")
	}
	return h, nil
}
