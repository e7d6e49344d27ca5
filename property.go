package gl

// resolveMember evaluates the right side of `target::member`.
func (ip *Interpreter) resolveMember(target Value, member Expression) (Value, error) {
	switch m := member.(type) {
	case *Identifier:
		return ip.memberLookup(target, m.Name)

	case *CallExpression:
		id, ok := m.Callee.(*Identifier)
		if !ok {
			return Null, NewRuntimeException(ExceptType, "invalid property member %s", m.Callee.String())
		}
		args, err := ip.evalList(m.Args)
		if err != nil {
			return Null, err
		}
		return ip.memberCall(target, id.Name, args)

	case *PropertyExpression:
		inner, err := ip.resolveMember(target, m.Target)
		if err != nil {
			return Null, err
		}
		return ip.resolveMember(inner, m.Member)

	case *LiteralExpression:
		if vec, ok := m.Literal.(*VectorLiteral); ok {
			out := make([]Value, 0, len(vec.Elems))
			for _, e := range vec.Elems {
				v, err := ip.resolveMember(target, e)
				if err != nil {
					return Null, err
				}
				out = append(out, v)
			}
			return Vec(out), nil
		}
	}
	return Null, NewRuntimeException(ExceptType, "invalid property member %s", member.String())
}

func (ip *Interpreter) memberLookup(target Value, name string) (Value, error) {
	switch target.Tag {
	case VTModule:
		mod := target.Data.(*Module)
		if v, ok := ip.scopes.Arena().Get(mod.Scope).Get(name); ok {
			return v, nil
		}
		return Null, NewRuntimeException(ExceptAttribute, "module '%s' has no attribute '%s'", mod.Name, name)
	case VTNativeModule:
		mod := target.Data.(*NativeModule)
		if v, ok := mod.Members[name]; ok {
			return v, nil
		}
		return Null, NewRuntimeException(ExceptAttribute, "module '%s' has no attribute '%s'", mod.Name, name)
	case VTDynModule:
		return target.Data.(*DynLibraryModule).Symbol(name)
	case VTHostObject:
		obj := target.Data.(*HostObject)
		if _, ok := obj.Methods[name]; ok {
			return Null, NewRuntimeException(ExceptAttribute, "method '%s' of '%s' object must be called", name, obj.Name)
		}
		return Null, NewRuntimeException(ExceptAttribute, "'%s' object has no attribute '%s'", obj.Name, name)
	}
	return Null, NewRuntimeException(ExceptAttribute, "'%s' object has no attribute '%s'", target.TypeName(), name)
}

func (ip *Interpreter) memberCall(target Value, name string, args []Value) (Value, error) {
	if target.Tag == VTHostObject {
		obj := target.Data.(*HostObject)
		method, ok := obj.Methods[name]
		if !ok {
			return Null, NewRuntimeException(ExceptAttribute, "'%s' object has no attribute '%s'", obj.Name, name)
		}
		return method(ip, obj.Payload, args)
	}
	fn, err := ip.memberLookup(target, name)
	if err != nil {
		return Null, err
	}
	return ip.call(fn, args)
}
