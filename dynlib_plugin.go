//go:build (linux || darwin || freebsd) && cgo

package gl

import (
	"fmt"
	"plugin"
)

// PluginLoader loads Go plugins (go build -buildmode=plugin). An exported
// symbol is callable when it is a func(*gl.Interpreter, []gl.Value)
// (gl.Value, error) or a variable of type gl.NativeFunc.
type PluginLoader struct{}

func (PluginLoader) Open(path string) (Library, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return &pluginLibrary{p: p}, nil
}

type pluginLibrary struct {
	p *plugin.Plugin
}

func (l *pluginLibrary) Resolve(name string) (NativeFunc, error) {
	sym, err := l.p.Lookup(name)
	if err != nil {
		return nil, err
	}
	switch f := sym.(type) {
	case func(*Interpreter, []Value) (Value, error):
		return f, nil
	case *NativeFunc:
		return *f, nil
	case *func(*Interpreter, []Value) (Value, error):
		return *f, nil
	default:
		return nil, fmt.Errorf("symbol %s has unsupported type %T", name, sym)
	}
}

func defaultLoader() LibraryLoader { return PluginLoader{} }
