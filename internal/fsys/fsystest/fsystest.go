// Package fsystest provides filesystem wrappers for tests: call counting and
// fault injection on top of any fsys.FileSystem.
package fsystest

import (
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/standardbeagle/lds/internal/fsys"
)

// CountingFS records how many operations reached the wrapped filesystem
type CountingFS struct {
	fsys.FileSystem

	stats    atomic.Int64
	reads    atomic.Int64
	readDirs atomic.Int64
}

// NewCountingFS wraps inner
func NewCountingFS(inner fsys.FileSystem) *CountingFS {
	return &CountingFS{FileSystem: inner}
}

func (c *CountingFS) Stat(name string) (fs.FileInfo, error) {
	c.stats.Add(1)
	return c.FileSystem.Stat(name)
}

func (c *CountingFS) ReadFile(name string) ([]byte, error) {
	c.reads.Add(1)
	return c.FileSystem.ReadFile(name)
}

func (c *CountingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	c.readDirs.Add(1)
	return c.FileSystem.ReadDir(name)
}

// Calls returns the total number of filesystem operations
func (c *CountingFS) Calls() int64 {
	return c.stats.Load() + c.reads.Load() + c.readDirs.Load()
}

// ReadDirCalls returns the number of directory listings
func (c *CountingFS) ReadDirCalls() int64 {
	return c.readDirs.Load()
}

// ReadFileCalls returns the number of file reads
func (c *CountingFS) ReadFileCalls() int64 {
	return c.reads.Load()
}

// FaultyFS fails reads of selected paths with a fixed error
type FaultyFS struct {
	fsys.FileSystem

	mu         sync.RWMutex
	fileFaults map[string]error
	dirFaults  map[string]error
}

// NewFaultyFS wraps inner without any faults configured
func NewFaultyFS(inner fsys.FileSystem) *FaultyFS {
	return &FaultyFS{
		FileSystem: inner,
		fileFaults: make(map[string]error),
		dirFaults:  make(map[string]error),
	}
}

// FailRead makes ReadFile(name) return err
func (f *FaultyFS) FailRead(name string, err error) *FaultyFS {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileFaults[name] = err
	return f
}

// FailReadDir makes ReadDir(name) return err
func (f *FaultyFS) FailReadDir(name string, err error) *FaultyFS {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirFaults[name] = err
	return f
}

func (f *FaultyFS) ReadFile(name string) ([]byte, error) {
	f.mu.RLock()
	err, ok := f.fileFaults[name]
	f.mu.RUnlock()
	if ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return f.FileSystem.ReadFile(name)
}

func (f *FaultyFS) ReadDir(name string) ([]fs.DirEntry, error) {
	f.mu.RLock()
	err, ok := f.dirFaults[name]
	f.mu.RUnlock()
	if ok {
		return nil, &fs.PathError{Op: "readdirent", Path: name, Err: err}
	}
	return f.FileSystem.ReadDir(name)
}
