// ops.go: operators on runtime values
//
// Arithmetic and ordering are defined on Integer, Float and Boolean in any
// combination. Boolean coerces to 0/1; Integer widens to Float when the other
// side is a Float; two Booleans produce an Integer. String adds to String and
// multiplies by an Integer. Everything else is a Type error naming the
// operator and both operand types.
//
// Equality never fails: numbers compare by value across kinds, other values
// structurally, functions and modules by identity.
package gl

import (
	"math/big"
	"strings"
)

// maxRepeatLen caps the length of a string produced by repetition.
const maxRepeatLen = 1 << 28

// number is a coerced numeric operand; r != nil marks a Float.
type number struct {
	i *big.Int
	r *big.Rat
}

func toNumber(v Value) (number, bool) {
	switch v.Tag {
	case VTInteger:
		return number{i: v.Data.(*big.Int)}, true
	case VTFloat:
		return number{r: v.Data.(*big.Rat)}, true
	case VTBoolean:
		return number{i: boolInt(v.Data.(bool))}, true
	}
	return number{}, false
}

func (n number) rat() *big.Rat {
	if n.r != nil {
		return n.r
	}
	return ratFromInt(n.i)
}

func unsupported(op string, a, b Value) error {
	return NewRuntimeException(ExceptType, "unsupported operand type(s) for %s: '%s' and '%s'", op, a.TypeName(), b.TypeName())
}

// BinaryOp applies an infix operator by its source symbol.
func BinaryOp(op string, a, b Value) (Value, error) {
	switch op {
	case "+":
		return Add(a, b)
	case "-":
		return Sub(a, b)
	case "*":
		return Mul(a, b)
	case "/":
		return Div(a, b)
	case "==":
		return Bool(Equal(a, b)), nil
	case "!=":
		return Bool(!Equal(a, b)), nil
	case "<", "<=", ">", ">=":
		c, err := Compare(op, a, b)
		if err != nil {
			return Null, err
		}
		switch op {
		case "<":
			return Bool(c < 0), nil
		case "<=":
			return Bool(c <= 0), nil
		case ">":
			return Bool(c > 0), nil
		default:
			return Bool(c >= 0), nil
		}
	}
	return Null, NewRuntimeException(ExceptInvalidSyntax, "unknown operator %s", op)
}

func Add(a, b Value) (Value, error) {
	if a.Tag == VTString && b.Tag == VTString {
		return Str(a.Data.(string) + b.Data.(string)), nil
	}
	return arith("+", a, b)
}

func Sub(a, b Value) (Value, error) { return arith("-", a, b) }

func Mul(a, b Value) (Value, error) {
	if a.Tag == VTString && b.Tag == VTInteger {
		return repeat(a.Data.(string), b.Data.(*big.Int))
	}
	return arith("*", a, b)
}

func Div(a, b Value) (Value, error) { return arith("/", a, b) }

func repeat(s string, count *big.Int) (Value, error) {
	if count.Sign() <= 0 || s == "" {
		return Str(""), nil
	}
	if !count.IsInt64() || count.Int64() > int64(maxRepeatLen/len(s)) {
		return Null, NewRuntimeException(ExceptType, "repeated string is too long")
	}
	return Str(strings.Repeat(s, int(count.Int64()))), nil
}

func arith(op string, a, b Value) (Value, error) {
	x, okx := toNumber(a)
	y, oky := toNumber(b)
	if !okx || !oky {
		return Null, unsupported(op, a, b)
	}

	if x.r == nil && y.r == nil {
		z := new(big.Int)
		switch op {
		case "+":
			z.Add(x.i, y.i)
		case "-":
			z.Sub(x.i, y.i)
		case "*":
			z.Mul(x.i, y.i)
		case "/":
			if y.i.Sign() == 0 {
				return Null, NewRuntimeException(ExceptType, "division by zero")
			}
			z.Quo(x.i, y.i)
		}
		return BigInt(z), nil
	}

	xr, yr := x.rat(), y.rat()
	z := new(big.Rat)
	switch op {
	case "+":
		z.Add(xr, yr)
	case "-":
		z.Sub(xr, yr)
	case "*":
		z.Mul(xr, yr)
	case "/":
		if yr.Sign() == 0 {
			return Null, NewRuntimeException(ExceptType, "division by zero")
		}
		z.Quo(xr, yr)
	}
	return Float(z), nil
}

// Compare orders two numeric operands. op only labels the error.
func Compare(op string, a, b Value) (int, error) {
	x, okx := toNumber(a)
	y, oky := toNumber(b)
	if !okx || !oky {
		return 0, unsupported(op, a, b)
	}
	if x.r == nil && y.r == nil {
		return x.i.Cmp(y.i), nil
	}
	return x.rat().Cmp(y.rat()), nil
}

func Equal(a, b Value) bool {
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		if !ok {
			return false
		}
		if x.r == nil && y.r == nil {
			return x.i.Cmp(y.i) == 0
		}
		return x.rat().Cmp(y.rat()) == 0
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTString:
		return a.Data.(string) == b.Data.(string)
	case VTVector:
		return equalSlices(a.Data.(*Vector).Elems, b.Data.(*Vector).Elems)
	case VTTuple:
		return equalSlices(a.Data.([]Value), b.Data.([]Value))
	case VTMap:
		ma, mb := a.Data.(*MapObject), b.Data.(*MapObject)
		if ma.Len() != mb.Len() {
			return false
		}
		for i, k := range ma.keys {
			v, ok, err := mb.Get(k)
			if err != nil || !ok || !Equal(ma.vals[i], v) {
				return false
			}
		}
		return true
	default:
		return a.Data == b.Data
	}
}

func equalSlices(xs, ys []Value) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// UnaryOp applies a prefix operator.
func UnaryOp(op string, v Value) (Value, error) {
	switch op {
	case "!":
		if v.Tag == VTBoolean {
			return Bool(!v.Data.(bool)), nil
		}
	case "-", "+":
		n, ok := toNumber(v)
		if !ok {
			break
		}
		if op == "+" {
			if n.r != nil {
				return Float(n.r), nil
			}
			return BigInt(n.i), nil
		}
		if n.r != nil {
			return Float(new(big.Rat).Neg(n.r)), nil
		}
		return BigInt(new(big.Int).Neg(n.i)), nil
	}
	return Null, NewRuntimeException(ExceptType, "bad operand type for unary %s: '%s'", op, v.TypeName())
}
