package gl

import (
	"math/big"
	"strconv"
	"strings"
)

// MapObject maps values to values. Keys are unique under structural equality
// within a kind; display follows insertion order.
type MapObject struct {
	keys  []Value
	vals  []Value
	index map[string]int
}

func NewMap() *MapObject {
	return &MapObject{index: map[string]int{}}
}

func (m *MapObject) Len() int { return len(m.keys) }

// Get returns the value stored under k. Unhashable keys are a Type error.
func (m *MapObject) Get(k Value) (Value, bool, error) {
	h, err := hashKey(k)
	if err != nil {
		return Null, false, err
	}
	i, ok := m.index[h]
	if !ok {
		return Null, false, nil
	}
	return m.vals[i], true, nil
}

// Set inserts or replaces. Replacing keeps the original position.
func (m *MapObject) Set(k, v Value) error {
	h, err := hashKey(k)
	if err != nil {
		return err
	}
	if i, ok := m.index[h]; ok {
		m.vals[i] = v
		return nil
	}
	m.index[h] = len(m.keys)
	m.keys = append(m.keys, detachKey(k))
	m.vals = append(m.vals, v)
	return nil
}

// Keys returns the keys in insertion order.
func (m *MapObject) Keys() []Value {
	out := make([]Value, len(m.keys))
	copy(out, m.keys)
	return out
}

// detachKey copies the vectors inside k so a later push on the caller's
// vector cannot change a stored key.
func detachKey(k Value) Value {
	switch k.Tag {
	case VTVector:
		return Vec(detachKeys(k.Data.(*Vector).Elems))
	case VTTuple:
		return TupleOf(detachKeys(k.Data.([]Value)))
	}
	return k
}

func detachKeys(xs []Value) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = detachKey(x)
	}
	return out
}

// hashKey derives a structural identity for k.
func hashKey(k Value) (string, error) {
	var b strings.Builder
	if err := writeKey(&b, k); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeKey(b *strings.Builder, k Value) error {
	switch k.Tag {
	case VTNull:
		b.WriteString("n")
	case VTInteger:
		b.WriteString("i")
		b.WriteString(k.Data.(*big.Int).String())
	case VTFloat:
		b.WriteString("f")
		b.WriteString(k.Data.(*big.Rat).RatString())
	case VTBoolean:
		if k.Data.(bool) {
			b.WriteString("b1")
		} else {
			b.WriteString("b0")
		}
	case VTString:
		b.WriteString("s")
		b.WriteString(strconv.Quote(k.Data.(string)))
	case VTVector:
		return writeKeys(b, 'v', k.Data.(*Vector).Elems)
	case VTTuple:
		return writeKeys(b, 't', k.Data.([]Value))
	case VTDynModule:
		b.WriteString("d")
		b.WriteString(strconv.Quote(k.Data.(*DynLibraryModule).Path))
	default:
		return NewRuntimeException(ExceptType, "unhashable type: '%s'", k.TypeName())
	}
	return nil
}

func writeKeys(b *strings.Builder, tag byte, xs []Value) error {
	b.WriteByte(tag)
	b.WriteByte('(')
	for i, x := range xs {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeKey(b, x); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}
