package gl

import (
	"math/big"
	"strings"
	"testing"
)

func Test_Ops_FormatRat(t *testing.T) {
	cases := []struct {
		num, den int64
		want     string
	}{
		{3, 1, "3.0"},
		{-3, 1, "-3.0"},
		{5, 2, "2.5"},
		{1, 4, "0.25"},
		{1, 3, "0.(3)"},
		{-1, 3, "-0.(3)"},
		{1, 6, "0.1(6)"},
		{1, 7, "0.(142857)"},
		{4, 3, "1.(3)"},
	}
	for _, c := range cases {
		if got := formatRat(big.NewRat(c.num, c.den)); got != c.want {
			t.Errorf("formatRat(%d/%d) = %q, want %q", c.num, c.den, got, c.want)
		}
	}
}

func Test_Ops_FormatRat_LongPeriod_Elided(t *testing.T) {
	got := formatRat(big.NewRat(1, 97))
	if !strings.HasPrefix(got, "0.0103") || !strings.HasSuffix(got, "...") {
		t.Fatalf("got %q", got)
	}
	if digits := len(got) - len("0.") - len("..."); digits != maxFractionDigits {
		t.Fatalf("digits = %d", digits)
	}
}

func Test_Ops_Arithmetic_Promotion(t *testing.T) {
	half := Float(big.NewRat(1, 2))

	v, err := Add(Int(1), half)
	if err != nil {
		t.Fatal(err)
	}
	wantFloat(t, v, 3, 2)

	v, err = Mul(Bool(true), Int(5))
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, v, 5)

	v, err = Sub(Bool(false), Bool(true))
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, v, -1)

	v, err = Div(Int(1), Int(2))
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, v, 0)

	if _, err := Div(half, Bool(false)); err == nil {
		t.Fatalf("division by false must fail")
	}
}

func Test_Ops_Operands_Not_Mutated(t *testing.T) {
	a := Int(2)
	if _, err := Add(a, Int(3)); err != nil {
		t.Fatal(err)
	}
	wantInt(t, a, 2)
	if v, _ := UnaryOp("-", a); v.Data == a.Data {
		t.Fatalf("negation aliased its operand")
	}
	wantInt(t, a, 2)
}

func Test_Ops_Unsupported(t *testing.T) {
	_, err := BinaryOp("-", Str("a"), Null)
	ex, ok := AsException(err)
	if !ok || ex.Kind() != ExceptType {
		t.Fatalf("got %v", err)
	}
	if ex.Except.Message != "unsupported operand type(s) for -: 'String' and 'Null'" {
		t.Fatalf("message: %q", ex.Except.Message)
	}
	if _, err := BinaryOp("*", Str("a"), Float(big.NewRat(2, 1))); err == nil {
		t.Fatalf("string * float must fail")
	}
}

func Test_Ops_Repeat_Limit(t *testing.T) {
	if _, err := Mul(Str("ab"), Int(maxRepeatLen)); err == nil {
		t.Fatalf("oversized repeat must fail")
	}
	v, err := Mul(Str("ab"), Int(-2))
	if err != nil {
		t.Fatal(err)
	}
	wantStr(t, v, "")
}

func Test_Ops_Compare(t *testing.T) {
	c, err := Compare("<", Int(1), Float(big.NewRat(3, 2)))
	if err != nil || c != -1 {
		t.Fatalf("Compare = %d, %v", c, err)
	}
	c, err = Compare(">=", Bool(true), Int(1))
	if err != nil || c != 0 {
		t.Fatalf("Compare = %d, %v", c, err)
	}
	if _, err := Compare("<", Vec(nil), Vec(nil)); err == nil {
		t.Fatalf("comparing vectors must fail")
	}
}

func Test_Ops_Equal(t *testing.T) {
	m1, m2 := NewMap(), NewMap()
	_ = m1.Set(Str("k"), Int(1))
	_ = m2.Set(Str("k"), Float(big.NewRat(1, 1)))

	cases := []struct {
		a, b Value
		want bool
	}{
		{Int(1), Float(big.NewRat(1, 1)), true},
		{Bool(true), Int(1), true},
		{Null, Null, true},
		{Null, Bool(false), false},
		{Str("1"), Int(1), false},
		{Vec([]Value{Int(1)}), Vec([]Value{Int(1)}), true},
		{Vec([]Value{Int(1)}), TupleOf([]Value{Int(1)}), false},
		{MapValue(m1), MapValue(m2), true},
		{MapValue(m1), MapValue(m1), true},
	}
	for i, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Errorf("case %d: Equal(%s, %s) = %v", i, c.a, c.b, got)
		}
	}
}

func Test_Ops_Unary(t *testing.T) {
	v, err := UnaryOp("-", Bool(true))
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, v, -1)

	v, err = UnaryOp("+", Float(big.NewRat(-1, 2)))
	if err != nil {
		t.Fatal(err)
	}
	wantFloat(t, v, -1, 2)

	_, err = UnaryOp("-", Str("x"))
	ex, ok := AsException(err)
	if !ok || ex.Except.Message != "bad operand type for unary -: 'String'" {
		t.Fatalf("got %v", err)
	}
}

func Test_Ops_Map_Keys(t *testing.T) {
	m := NewMap()
	if err := m.Set(Int(1), Str("int")); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(Float(big.NewRat(1, 1)), Str("float")); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(Int(1), Str("again")); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Fatalf("len = %d", m.Len())
	}
	if got := MapValue(m).String(); got != `{1: "again", 1.0: "float"}` {
		t.Fatalf("display %s", got)
	}
	if err := m.Set(MapValue(NewMap()), Null); err == nil {
		t.Fatalf("map keys must be unhashable")
	}
	if _, _, err := m.Get(Vec([]Value{MapValue(NewMap())})); err == nil {
		t.Fatalf("nested unhashable key must fail")
	}

	// a stored vector key does not follow later pushes on the caller's vector
	k := Vec([]Value{Int(1)})
	vm := NewMap()
	if err := vm.Set(TupleOf([]Value{k}), Int(1)); err != nil {
		t.Fatal(err)
	}
	if err := vm.Set(k, Int(2)); err != nil {
		t.Fatal(err)
	}
	vec := k.Data.(*Vector)
	vec.Elems = append(vec.Elems, Int(2))
	if got := MapValue(vm).String(); got != "{([1]): 1, [1]: 2}" {
		t.Fatalf("display %s", got)
	}
	if _, ok, _ := vm.Get(k); ok {
		t.Fatalf("mutated vector found a stale key")
	}
	if v, ok, _ := vm.Get(Vec([]Value{Int(1)})); !ok {
		t.Fatalf("original key lost")
	} else {
		wantInt(t, v, 2)
	}
}
