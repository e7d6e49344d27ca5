// modules.go: `import` for source modules and shared libraries
//
// A path ending in SourceExt is a source module. It is searched for in:
//
//  1. the importing file's directory (skipped for in-memory sources),
//  2. the current working directory,
//  3. each $GLPATH entry, then each config search_path entry.
//
// Absolute paths are tried as given. A found module is evaluated once in its
// own pinned scope and cached by canonical path; later imports of the same
// file reuse the Module. Failed evaluations are not cached.
//
// Cycles are detected with a stack of files being loaded and reported as
// "import cycle detected: a -> b -> a".
//
// Any other path is handed to the LibraryLoader. Libraries are cached by the
// resolved path. If the library exports the config's init symbol it is called
// once, with no arguments, right after loading.
package gl

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SourceExt marks a source module in an import path.
const SourceExt = ".gl"

func (ip *Interpreter) evalImport(s *ImportStatement) (Value, error) {
	if strings.HasSuffix(s.Path, SourceExt) {
		mod, err := ip.importSource(s.Path)
		if err != nil {
			return Null, err
		}
		ip.Set(mod.Name, Value{Tag: VTModule, Data: mod})
		return Null, nil
	}
	lib, err := ip.importLibrary(s.Path)
	if err != nil {
		return Null, err
	}
	ip.Set(lib.Name, Value{Tag: VTDynModule, Data: lib})
	return Null, nil
}

func (ip *Interpreter) importSource(spec string) (*Module, error) {
	path, ok := ip.resolveSource(spec)
	if !ok {
		return nil, NewRuntimeException(ExceptImport, "cannot find module '%s'", spec)
	}
	if mod, ok := ip.modules[path]; ok {
		return mod, nil
	}
	for _, p := range ip.loading {
		if p == path {
			return nil, NewRuntimeException(ExceptImport, "import cycle detected: %s", joinCyclePath(ip.loading, path))
		}
	}
	ip.logger.Debug("import module", slog.String("path", path))

	fs, err := OpenFileSource(path)
	if err != nil {
		return nil, NewRuntimeException(ExceptImport, "cannot read module '%s': %v", spec, err)
	}
	defer fs.Close()

	ip.loading = append(ip.loading, path)
	defer func() { ip.loading = ip.loading[:len(ip.loading)-1] }()

	mod := &Module{Name: moduleName(path), Path: path, Scope: ip.scopes.Arena().Alloc()}
	ip.scopes.Arena().Pin(mod.Scope)

	restore := ip.enter(spec, path)
	savedScope, savedIn := ip.moduleScope, ip.inModule
	ip.moduleScope, ip.inModule = mod.Scope, true
	ip.scopes.PushExisting(mod.Scope)

	_, err = ip.evalStream(fs)

	ip.scopes.Pop()
	ip.moduleScope, ip.inModule = savedScope, savedIn
	restore()

	if err == nil && fs.Err != nil && !errors.Is(fs.Err, io.EOF) {
		err = NewRuntimeException(ExceptImport, "cannot read module '%s': %v", spec, fs.Err)
	}
	if err != nil {
		ip.scopes.Arena().Unpin(mod.Scope)
		ip.scopes.Arena().Release(mod.Scope)
		return nil, err
	}
	ip.modules[path] = mod
	return mod, nil
}

// resolveSource returns the canonical path of the first existing candidate.
func (ip *Interpreter) resolveSource(spec string) (string, bool) {
	if filepath.IsAbs(spec) {
		return existingFile(spec)
	}
	var roots []string
	if ip.file != "" {
		roots = append(roots, filepath.Dir(ip.file))
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	roots = append(roots, ip.config.importRoots()...)
	for _, root := range roots {
		if p, ok := existingFile(filepath.Join(root, spec)); ok {
			return p, true
		}
	}
	return "", false
}

func existingFile(p string) (string, bool) {
	fi, err := os.Stat(p)
	if err != nil || fi.IsDir() {
		return "", false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	return filepath.Clean(abs), true
}

func (ip *Interpreter) importLibrary(spec string) (*DynLibraryModule, error) {
	path := spec
	if p, ok := ip.resolveSource(spec); ok {
		path = p
	}
	if lib, ok := ip.libraries[path]; ok {
		return lib, nil
	}
	ip.logger.Debug("import module", slog.String("path", path))

	handle, err := ip.loader.Open(path)
	if err != nil {
		return nil, NewRuntimeException(ExceptImport, "cannot load library '%s': %v", spec, err)
	}
	lib := newDynLibraryModule(path, handle, ip.logger)
	if sym := ip.config.InitSymbol; sym != "" {
		if init, err := handle.Resolve(sym); err == nil {
			if _, err := init(ip, nil); err != nil {
				return nil, err
			}
		}
	}
	ip.libraries[path] = lib
	return lib, nil
}

// moduleName is the file's basename without its extension.
func moduleName(p string) string {
	base := filepath.Base(p)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
		return name
	}
	return base
}

// joinCyclePath renders the loading stack from the first occurrence of again:
// a -> b -> a.
func joinCyclePath(stack []string, again string) string {
	i := 0
	for idx, s := range stack {
		if s == again {
			i = idx
			break
		}
	}
	chain := append(append([]string(nil), stack[i:]...), again)
	out := make([]string, len(chain))
	for k, s := range chain {
		out[k] = moduleName(s)
	}
	return strings.Join(out, " -> ")
}
