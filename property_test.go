package gl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// fakeLibrary resolves symbols from a map.
type fakeLibrary map[string]NativeFunc

func (l fakeLibrary) Resolve(name string) (NativeFunc, error) {
	if fn, ok := l[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("undefined symbol: %s", name)
}

// fakeLoader serves libraries by path and counts opens.
type fakeLoader struct {
	libs  map[string]fakeLibrary
	opens int
}

func (l *fakeLoader) Open(path string) (Library, error) {
	l.opens++
	lib, ok := l.libs[path]
	if !ok {
		return nil, errors.New("no such library")
	}
	return lib, nil
}

func Test_Property_NativeModule(t *testing.T) {
	wantInt(t, evalSrc(t, "math::abs(-3)"), 3)
	wantFloat(t, evalSrc(t, "math::abs(-0.5)"), 1, 2)
	wantInt(t, evalSrc(t, "math::max(1, 5, 3)"), 5)
	wantFloat(t, evalSrc(t, "math::min(2, 0.5)"), 1, 2)
	wantInt(t, evalSrc(t, "math::pow(2, 10)"), 1024)
	wantFloat(t, evalSrc(t, "math::pow(2, -2)"), 1, 4)
	wantInt(t, evalSrc(t, "let f = math::abs\nf(-9)"), 9)
	evalErr(t, "math::min()", ExceptType)
	evalErr(t, "math::pow(0, -1)", ExceptType)
}

func Test_Property_Batch(t *testing.T) {
	v := evalSrc(t, "math::{abs(-1), max(1, 5)}")
	if v.Tag != VTVector || v.String() != "[1, 5]" {
		t.Fatalf("batch: %s", v)
	}
}

func Test_Property_Missing_Attribute(t *testing.T) {
	ex := evalErr(t, "math::nope", ExceptAttribute)
	if ex.Except.Message != "module 'math' has no attribute 'nope'" {
		t.Fatalf("message: %q", ex.Except.Message)
	}
	ex = evalErr(t, "1::x", ExceptAttribute)
	if ex.Except.Message != "'Integer' object has no attribute 'x'" {
		t.Fatalf("message: %q", ex.Except.Message)
	}
}

func Test_Property_HostObject_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := evalSrc(t, fmt.Sprintf("let f = io::open(%q)\nlet s = f::read()\nf::close()\ns", path))
	wantStr(t, v, "one\ntwo\n")

	v = evalSrc(t, fmt.Sprintf("io::open(%q)::lines()", path))
	if v.String() != `["one", "two"]` {
		t.Fatalf("lines: %s", v)
	}

	wantStr(t, evalSrc(t, fmt.Sprintf("str(io::open(%q))", path)), "<object File>")

	ex := evalErr(t, fmt.Sprintf("let f = io::open(%q)\nf::read", path), ExceptAttribute)
	if ex.Except.Message != "method 'read' of 'File' object must be called" {
		t.Fatalf("message: %q", ex.Except.Message)
	}
	evalErr(t, fmt.Sprintf("let f = io::open(%q)\nf::close()\nf::read()", path), ExceptType)
	evalErr(t, fmt.Sprintf("io::open(%q)::write()", path), ExceptAttribute)
	evalErr(t, `io::open("/definitely/not/here")`, ExceptType)
}

func Test_Property_DynLibrary(t *testing.T) {
	var initCalls int
	loader := &fakeLoader{libs: map[string]fakeLibrary{
		"libcalc.so": {
			"add": func(_ *Interpreter, args []Value) (Value, error) {
				return Add(args[0], args[1])
			},
			"Init": func(_ *Interpreter, _ []Value) (Value, error) {
				initCalls++
				return Null, nil
			},
		},
	}}
	ip := NewInterpreter(WithLoader(loader))

	wantInt(t, mustEvalPersistent(t, ip, "import \"libcalc.so\"\ncalc::add(2, 3)"), 5)
	wantStr(t, mustEvalPersistent(t, ip, "str(calc)"), "<dynmodule 'calc' from 'libcalc.so'>")
	wantStr(t, mustEvalPersistent(t, ip, "type(calc)"), "Module")

	// second import hits the cache
	mustEvalPersistent(t, ip, "import \"libcalc.so\"")
	if loader.opens != 1 || initCalls != 1 {
		t.Fatalf("opens=%d init=%d", loader.opens, initCalls)
	}

	_, err := ip.EvalPersistentSource("calc::sub(1, 2)")
	if ex, ok := AsException(err); !ok || ex.Kind() != ExceptAttribute {
		t.Fatalf("want AttributeError, got %v", err)
	}

	// library modules are hashable by path
	wantInt(t, mustEvalPersistent(t, ip, "let m = {calc: 1}\nm[calc]"), 1)
}

func Test_Property_DynLibrary_Load_Failure(t *testing.T) {
	ip := NewInterpreter(WithLoader(&fakeLoader{}))
	_, err := ip.EvalSource(`import "libmissing.so"`)
	ex, ok := AsException(err)
	if !ok || ex.Kind() != ExceptImport {
		t.Fatalf("want ImportError, got %v", err)
	}
	if ex.Except.Message != "cannot load library 'libmissing.so': no such library" {
		t.Fatalf("message: %q", ex.Except.Message)
	}
}

func Test_Property_LibraryName(t *testing.T) {
	cases := map[string]string{
		"/usr/lib/libmath.so.1": "math",
		"calc.dll":              "calc",
		"lib":                   "lib",
		"./libx.dylib":          "x",
	}
	for in, want := range cases {
		if got := libraryName(in); got != want {
			t.Errorf("libraryName(%q) = %q, want %q", in, got, want)
		}
	}
}
