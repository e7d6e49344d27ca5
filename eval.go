package gl

import (
	"log/slog"
	"math/big"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
//                                 STATEMENTS
////////////////////////////////////////////////////////////////////////////////

func (ip *Interpreter) execStatement(s Statement) (Value, error) {
	switch s := s.(type) {
	case *LetStatement:
		v, err := ip.evalExpression(s.Value)
		if err != nil {
			// The name still exists after a failed initializer.
			ip.Set(s.Name, Null)
			return Null, err
		}
		ip.Set(s.Name, v)
		return Null, nil

	case *LetAssignStatement:
		cur := ip.scopes.Current()
		_, exists := cur.Get(s.Name)
		v, err := ip.evalExpression(s.Value)
		if err != nil {
			if exists {
				cur.Set(s.Name, Null)
			}
			return Null, err
		}
		if !exists {
			return Null, NewRuntimeException(ExceptName, "name '%s' is not defined", s.Name)
		}
		cur.Set(s.Name, v)
		return Null, nil

	case *ExpressionStatement:
		if s.NoOp {
			return Null, nil
		}
		if _, err := ip.evalExpression(s.Expr); err != nil {
			return Null, err
		}
		return Null, nil

	case *ExpressionReturnStatement:
		return ip.evalExpression(s.Expr)

	case *FnStatement:
		ip.Set(s.Name, ip.makeFn(s.Name, s.Params, s.Body))
		return Null, nil

	case *ImportStatement:
		return ip.evalImport(s)
	}
	return Null, NewRuntimeException(ExceptType, "unknown statement %T", s)
}

func (ip *Interpreter) makeFn(name string, params []string, body *Block) Value {
	return Value{Tag: VTFn, Data: &Fn{
		Name:     name,
		Params:   params,
		Body:     body,
		Module:   ip.module,
		scope:    ip.moduleScope,
		hasScope: ip.inModule,
	}}
}

////////////////////////////////////////////////////////////////////////////////
//                                 EXPRESSIONS
////////////////////////////////////////////////////////////////////////////////

func (ip *Interpreter) evalExpression(e Expression) (Value, error) {
	switch e := e.(type) {
	case *Identifier:
		if v, ok := ip.scopes.Lookup(e.Name); ok {
			return v, nil
		}
		return Null, NewRuntimeException(ExceptName, "name '%s' is not defined", e.Name)

	case *LiteralExpression:
		return ip.evalLiteral(e.Literal)

	case *PrefixExpression:
		v, err := ip.evalExpression(e.Right)
		if err != nil {
			return Null, err
		}
		return UnaryOp(e.Op, v)

	case *InfixExpression:
		l, err := ip.evalExpression(e.Left)
		if err != nil {
			return Null, err
		}
		r, err := ip.evalExpression(e.Right)
		if err != nil {
			return Null, err
		}
		return BinaryOp(e.Op, l, r)

	case *FnExpression:
		return ip.makeFn("", e.Params, e.Body), nil

	case *CallExpression:
		callee, err := ip.evalExpression(e.Callee)
		if err != nil {
			return Null, err
		}
		args, err := ip.evalList(e.Args)
		if err != nil {
			return Null, err
		}
		return ip.call(callee, args)

	case *IndexExpression:
		target, err := ip.evalExpression(e.Target)
		if err != nil {
			return Null, err
		}
		key, err := ip.evalExpression(e.Key)
		if err != nil {
			return Null, err
		}
		return index(target, key)

	case *PropertyExpression:
		target, err := ip.evalExpression(e.Target)
		if err != nil {
			return Null, err
		}
		return ip.resolveMember(target, e.Member)
	}
	return Null, NewRuntimeException(ExceptType, "unknown expression %T", e)
}

func (ip *Interpreter) evalList(xs []Expression) ([]Value, error) {
	out := make([]Value, 0, len(xs))
	for _, x := range xs {
		v, err := ip.evalExpression(x)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (ip *Interpreter) evalLiteral(l Literal) (Value, error) {
	switch l := l.(type) {
	case *NullLiteral:
		return Null, nil
	case *IntegerLiteral:
		return BigInt(new(big.Int).Set(l.Value)), nil
	case *FloatLiteral:
		return Float(new(big.Rat).Set(l.Value)), nil
	case *BooleanLiteral:
		return Bool(l.Value), nil
	case *StringLiteral:
		return Str(l.Value), nil
	case *VectorLiteral:
		xs, err := ip.evalList(l.Elems)
		if err != nil {
			return Null, err
		}
		return Vec(xs), nil
	case *TupleLiteral:
		xs, err := ip.evalList(l.Elems)
		if err != nil {
			return Null, err
		}
		return TupleOf(xs), nil
	case *MapLiteral:
		m := NewMap()
		for _, p := range l.Pairs {
			k, err := ip.evalExpression(p.Key)
			if err != nil {
				return Null, err
			}
			v, err := ip.evalExpression(p.Value)
			if err != nil {
				return Null, err
			}
			if err := m.Set(k, v); err != nil {
				return Null, err
			}
		}
		return MapValue(m), nil
	}
	return Null, NewRuntimeException(ExceptType, "unknown literal %T", l)
}

////////////////////////////////////////////////////////////////////////////////
//                                   CALLS
////////////////////////////////////////////////////////////////////////////////

func (ip *Interpreter) call(callee Value, args []Value) (Value, error) {
	switch callee.Tag {
	case VTNativeFn:
		nf := callee.Data.(*NativeFn)
		if nf.Arity >= 0 && len(args) != nf.Arity {
			return Null, NewRuntimeException(ExceptType, "%s() takes %d positional arguments but %d were given", nf.Name, nf.Arity, len(args))
		}
		return nf.Call(ip, args)
	case VTFn:
		return ip.callFn(callee.Data.(*Fn), args)
	}
	return Null, NewRuntimeException(ExceptType, "'%s' object is not callable", callee.TypeName())
}

func (ip *Interpreter) callFn(fn *Fn, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return Null, NewRuntimeException(ExceptType, "%s() takes %d positional arguments but %d were given", fnLabel(fn), len(fn.Params), len(args))
	}
	if ip.depth >= MaxCallDepth {
		return Null, NewRuntimeException(ExceptType, "maximum recursion depth exceeded")
	}
	ip.depth++
	defer func() { ip.depth-- }()
	ip.logger.Debug("call", slog.String("function", fnLabel(fn)), slog.Int("args", len(args)))

	if fn.hasScope && ip.scopes.CurrentID() != fn.scope {
		ip.scopes.PushExisting(fn.scope)
		defer ip.scopes.Pop()
	}
	ip.scopes.Push()
	defer ip.scopes.Pop()
	for i, p := range fn.Params {
		ip.Set(p, args[i])
	}

	savedModule, savedScope, savedIn := ip.module, ip.moduleScope, ip.inModule
	ip.module, ip.moduleScope, ip.inModule = fn.Module, fn.scope, fn.hasScope
	defer func() { ip.module, ip.moduleScope, ip.inModule = savedModule, savedScope, savedIn }()

	return ip.runStatements(fn.Body.Statements)
}

func fnLabel(fn *Fn) string {
	if fn.Name == "" {
		return "<anonymous>"
	}
	return fn.Name
}

////////////////////////////////////////////////////////////////////////////////
//                                  INDEXING
////////////////////////////////////////////////////////////////////////////////

func index(target, key Value) (Value, error) {
	switch target.Tag {
	case VTVector:
		xs := target.Data.(*Vector).Elems
		i, err := position(key, len(xs), "vec")
		if err != nil {
			return Null, err
		}
		return xs[i], nil
	case VTTuple:
		xs := target.Data.([]Value)
		i, err := position(key, len(xs), "tuple")
		if err != nil {
			return Null, err
		}
		return xs[i], nil
	case VTString:
		rs := []rune(target.Data.(string))
		i, err := position(key, len(rs), "string")
		if err != nil {
			return Null, err
		}
		return Str(string(rs[i])), nil
	case VTMap:
		v, ok, err := target.Data.(*MapObject).Get(key)
		if err != nil {
			return Null, err
		}
		if !ok {
			return Null, NewRuntimeException(ExceptKey, "%s", key.String())
		}
		return v, nil
	}
	return Null, NewRuntimeException(ExceptType, "'%s' object is not subscriptable", target.TypeName())
}

// position validates an integer index against a sequence of length n.
func position(key Value, n int, kind string) (int, error) {
	if key.Tag != VTInteger {
		return 0, NewRuntimeException(ExceptType, "%s indices must be integers, not '%s'", kind, key.TypeName())
	}
	k := key.Data.(*big.Int)
	if k.Sign() < 0 || !k.IsInt64() || k.Int64() >= int64(n) {
		return 0, NewRuntimeException(ExceptIndex, "%s index out of range", kind)
	}
	return int(k.Int64()), nil
}

// joinDisplay renders values separated by sep the way print shows them.
func joinDisplay(xs []Value, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = Display(x)
	}
	return strings.Join(parts, sep)
}
