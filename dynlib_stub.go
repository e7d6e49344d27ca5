//go:build !((linux || darwin || freebsd) && cgo)

package gl

import (
	"errors"
	"runtime"
)

// PluginLoader is unavailable on this platform; Open always fails.
type PluginLoader struct{}

func (PluginLoader) Open(path string) (Library, error) {
	return nil, errors.New("shared libraries are not supported on " + runtime.GOOS + " without cgo")
}

func defaultLoader() LibraryLoader { return PluginLoader{} }
