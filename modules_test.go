package gl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFiles creates name -> content files under a fresh temp dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runFile(t *testing.T, ip *Interpreter, path string) (Value, error) {
	t.Helper()
	return ip.RunFile(path)
}

func Test_Modules_Import_Relative_To_Importer(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.gl":     "import \"lib/util.gl\"\nutil::twice(21)",
		"lib/util.gl": "let factor = 2\nfn twice(x) {\n  x * factor\n}\n",
	})
	v, err := runFile(t, NewInterpreter(), filepath.Join(dir, "main.gl"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	wantInt(t, v, 42)
}

func Test_Modules_Member_Access(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.gl": "import \"m.gl\"\n(m::x, str(m))",
		"m.gl":    "let x = 10",
	})
	v, err := runFile(t, NewInterpreter(), filepath.Join(dir, "main.gl"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v.String() != `(10, "<module 'm'>")` {
		t.Fatalf("got %s", v)
	}
}

func Test_Modules_Missing_Attribute(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.gl": "import \"m.gl\"\nm::y",
		"m.gl":    "let x = 10",
	})
	_, err := runFile(t, NewInterpreter(), filepath.Join(dir, "main.gl"))
	ex, ok := AsException(err)
	if !ok || ex.Kind() != ExceptAttribute || ex.Except.Message != "module 'm' has no attribute 'y'" {
		t.Fatalf("got %v", err)
	}
}

func Test_Modules_Cached(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.gl": "import \"m.gl\"\nimport \"m.gl\"\n",
		"m.gl":    "print(\"loaded\");",
	})
	var out bytes.Buffer
	ip := NewInterpreter(WithStdout(&out))
	if _, err := runFile(t, ip, filepath.Join(dir, "main.gl")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "loaded" {
		t.Fatalf("module evaluated %d times", strings.Count(out.String(), "loaded"))
	}
}

func Test_Modules_Cycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.gl": "import \"a.gl\"",
		"a.gl":    "import \"b.gl\"",
		"b.gl":    "import \"a.gl\"",
	})
	_, err := runFile(t, NewInterpreter(), filepath.Join(dir, "main.gl"))
	ex, ok := AsException(err)
	if !ok || ex.Kind() != ExceptImport {
		t.Fatalf("want ImportError, got %v", err)
	}
	if ex.Except.Message != "import cycle detected: a -> b -> a" {
		t.Fatalf("message: %q", ex.Except.Message)
	}
	// one frame per import statement on the way down
	if len(ex.Frames) != 3 {
		t.Fatalf("frames: %+v", ex.Frames)
	}
}

func Test_Modules_Failure_Not_Cached(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.gl": "let x = [][0]",
	})
	ip := NewInterpreter(WithConfig(&Config{SearchPath: []string{dir}}))
	for i := 0; i < 2; i++ {
		_, err := ip.EvalSource(`import "bad.gl"`)
		ex, ok := AsException(err)
		if !ok || ex.Kind() != ExceptIndex {
			t.Fatalf("attempt %d: got %v", i, err)
		}
		if ex.Frames[len(ex.Frames)-1].Module != "bad.gl" {
			t.Fatalf("innermost frame: %+v", ex.Frames)
		}
	}
	if len(ip.modules) != 0 {
		t.Fatalf("failed module cached")
	}
	if n := liveScopes(ip); n != 1 {
		t.Fatalf("failed imports left %d live scopes", n)
	}
}

func liveScopes(ip *Interpreter) int {
	n := 0
	for _, s := range ip.scopes.Arena().scopes {
		if s != nil {
			n++
		}
	}
	return n
}

func Test_Modules_GLPATH(t *testing.T) {
	dir := writeFiles(t, map[string]string{"fromenv.gl": "let v = 7"})
	t.Setenv(PathEnv, dir)
	wantInt(t, evalSrc(t, "import \"fromenv.gl\"\nfromenv::v"), 7)
}

func Test_Modules_SearchPath_Relative_To_Config(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"gl.yaml":       "search_path: [\"vendor\"]\n",
		"vendor/dep.gl": "let v = 8",
	})
	cfg, err := LoadConfig(filepath.Join(dir, "gl.yaml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ip := NewInterpreter(WithConfig(cfg))
	v, err := ip.EvalSource("import \"dep.gl\"\ndep::v")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantInt(t, v, 8)
}

func Test_Modules_Not_Found(t *testing.T) {
	ex := evalErr(t, `import "nowhere.gl"`, ExceptImport)
	if ex.Except.Message != "cannot find module 'nowhere.gl'" {
		t.Fatalf("message: %q", ex.Except.Message)
	}
}

func Test_Modules_Function_Sees_Module_Scope_From_Caller(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.gl":    "import \"counter.gl\"\nlet base = 100\ncounter::get()",
		"counter.gl": "let base = 1\nfn get() {\n  base\n}\n",
	})
	v, err := runFile(t, NewInterpreter(), filepath.Join(dir, "main.gl"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// the call scope sits directly above the module scope
	wantInt(t, v, 1)
}

func Test_Modules_JoinCyclePath(t *testing.T) {
	got := joinCyclePath([]string{"/x/main.gl", "/x/a.gl", "/x/b.gl"}, "/x/a.gl")
	if got != "a -> b -> a" {
		t.Fatalf("got %q", got)
	}
}
