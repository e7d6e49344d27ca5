package gl

import "log/slog"

// ScopeID addresses a scope in a ScopeArena. IDs stay valid until released.
type ScopeID int

type Scope struct {
	vars   map[string]Value
	pinned bool // module scopes; never released
}

func (s *Scope) Get(name string) (Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *Scope) Set(name string, v Value) { s.vars[name] = v }

// ScopeArena owns every scope. Released slots are reused.
type ScopeArena struct {
	scopes []*Scope
	free   []ScopeID
}

func (a *ScopeArena) Alloc() ScopeID {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.scopes[id] = &Scope{vars: map[string]Value{}}
		return id
	}
	a.scopes = append(a.scopes, &Scope{vars: map[string]Value{}})
	return ScopeID(len(a.scopes) - 1)
}

func (a *ScopeArena) Get(id ScopeID) *Scope { return a.scopes[id] }

func (a *ScopeArena) Pin(id ScopeID) { a.scopes[id].pinned = true }

func (a *ScopeArena) Unpin(id ScopeID) { a.scopes[id].pinned = false }

func (a *ScopeArena) Release(id ScopeID) {
	s := a.scopes[id]
	if s == nil || s.pinned {
		return
	}
	a.scopes[id] = nil
	a.free = append(a.free, id)
}

// ScopeStack is the global scope at index 0 plus one entry per active call
// or module evaluation. The current level is the top index.
//
// Lookup walks from the top down to index 1, then falls back to the global
// scope, so functions see their callers' bindings (dynamic scoping).
type ScopeStack struct {
	arena  *ScopeArena
	stack  []ScopeID
	logger *slog.Logger
}

func NewScopeStack(logger *slog.Logger) *ScopeStack {
	arena := &ScopeArena{}
	global := arena.Alloc()
	arena.Pin(global)
	return &ScopeStack{arena: arena, stack: []ScopeID{global}, logger: logger}
}

func (s *ScopeStack) Arena() *ScopeArena { return s.arena }

// Level is the index of the current scope; 0 means global.
func (s *ScopeStack) Level() int { return len(s.stack) - 1 }

func (s *ScopeStack) Global() *Scope { return s.arena.Get(s.stack[0]) }

func (s *ScopeStack) Current() *Scope { return s.arena.Get(s.stack[len(s.stack)-1]) }

func (s *ScopeStack) CurrentID() ScopeID { return s.stack[len(s.stack)-1] }

// Push allocates a fresh scope on top of the stack.
func (s *ScopeStack) Push() ScopeID {
	id := s.arena.Alloc()
	s.PushExisting(id)
	return id
}

// PushExisting puts an already allocated scope (e.g. a module's) on top.
func (s *ScopeStack) PushExisting(id ScopeID) {
	s.stack = append(s.stack, id)
	s.logger.Debug("push scope", slog.Int("level", s.Level()), slog.Int("scope", int(id)))
}

// Pop removes the top scope and releases it unless it is pinned.
func (s *ScopeStack) Pop() {
	if len(s.stack) <= 1 {
		return
	}
	id := s.stack[len(s.stack)-1]
	s.logger.Debug("pop scope", slog.Int("level", s.Level()), slog.Int("scope", int(id)))
	s.stack = s.stack[:len(s.stack)-1]
	s.arena.Release(id)
}

func (s *ScopeStack) Lookup(name string) (Value, bool) {
	for i := len(s.stack) - 1; i >= 1; i-- {
		if v, ok := s.arena.Get(s.stack[i]).Get(name); ok {
			return v, true
		}
	}
	return s.Global().Get(name)
}
