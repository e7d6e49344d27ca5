package gl

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// LibraryLoader opens native shared libraries for `import`.
type LibraryLoader interface {
	Open(path string) (Library, error)
}

// Library resolves exported callables by name.
type Library interface {
	Resolve(name string) (NativeFunc, error)
}

// DynLibraryModule is an imported shared library. Symbols are resolved on
// first use and cached.
type DynLibraryModule struct {
	Name string
	Path string

	lib     Library
	symbols map[string]Value
	logger  *slog.Logger
}

func newDynLibraryModule(path string, lib Library, logger *slog.Logger) *DynLibraryModule {
	return &DynLibraryModule{
		Name:    libraryName(path),
		Path:    path,
		lib:     lib,
		symbols: map[string]Value{},
		logger:  logger,
	}
}

// Symbol returns the callable exported under name.
func (m *DynLibraryModule) Symbol(name string) (Value, error) {
	if v, ok := m.symbols[name]; ok {
		return v, nil
	}
	fn, err := m.lib.Resolve(name)
	if err != nil {
		m.logger.Debug("resolve symbol", slog.String("library", m.Path), slog.String("symbol", name), slog.String("error", err.Error()))
		return Null, NewRuntimeException(ExceptAttribute, "module '%s' has no attribute '%s'", m.Name, name)
	}
	m.logger.Debug("resolve symbol", slog.String("library", m.Path), slog.String("symbol", name))
	v := NativeFnValue(name, -1, fn)
	m.symbols[name] = v
	return v, nil
}

// libraryName strips the directory, a "lib" prefix and every extension:
// /usr/lib/libmath.so.1 -> math.
func libraryName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if strings.HasPrefix(base, "lib") && len(base) > 3 {
		base = base[3:]
	}
	return base
}
