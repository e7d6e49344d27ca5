package gl

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func Test_Scope_Lookup_Order(t *testing.T) {
	s := NewScopeStack(discardLogger())
	s.Global().Set("x", Int(0))
	s.Global().Set("g", Int(9))
	s.Push()
	s.Current().Set("x", Int(1))
	s.Push()

	v, ok := s.Lookup("x")
	if !ok {
		t.Fatalf("x not found")
	}
	wantInt(t, v, 1)
	v, _ = s.Lookup("g")
	wantInt(t, v, 9)
	if _, ok := s.Lookup("missing"); ok {
		t.Fatalf("missing name found")
	}
	if s.Level() != 2 {
		t.Fatalf("level = %d", s.Level())
	}
}

func Test_Scope_Pop_Releases_And_Reuses(t *testing.T) {
	s := NewScopeStack(discardLogger())
	id := s.Push()
	s.Current().Set("tmp", Int(1))
	s.Pop()
	if s.Level() != 0 {
		t.Fatalf("level = %d", s.Level())
	}
	if again := s.Push(); again != id {
		t.Fatalf("slot not reused: %d vs %d", again, id)
	}
	if _, ok := s.Current().Get("tmp"); ok {
		t.Fatalf("reused scope kept old bindings")
	}
}

func Test_Scope_Pinned_Survives_Pop(t *testing.T) {
	s := NewScopeStack(discardLogger())
	id := s.Arena().Alloc()
	s.Arena().Pin(id)
	s.PushExisting(id)
	s.Current().Set("kept", Int(1))
	s.Pop()

	if v, ok := s.Arena().Get(id).Get("kept"); !ok {
		t.Fatalf("pinned scope released")
	} else {
		wantInt(t, v, 1)
	}
	if fresh := s.Arena().Alloc(); fresh == id {
		t.Fatalf("pinned slot handed out again")
	}
}

func Test_Scope_Global_Never_Popped(t *testing.T) {
	s := NewScopeStack(discardLogger())
	s.Pop()
	s.Pop()
	if s.Level() != 0 || s.Global() == nil {
		t.Fatalf("global scope lost")
	}
}

func Test_Scope_Debug_Logging(t *testing.T) {
	var buf bytes.Buffer
	s := NewScopeStack(NewLogger(&buf, slog.LevelDebug))
	s.Push()
	s.Pop()
	out := buf.String()
	if !strings.Contains(out, "push scope") || !strings.Contains(out, "pop scope") || !strings.Contains(out, "level=1") {
		t.Fatalf("log output:\n%s", out)
	}
}
