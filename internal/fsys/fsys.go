// Package fsys abstracts the filesystem operations the search engine needs so
// the walker can run against the real disk or any io/fs implementation.
package fsys

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem is the collaborator consumed by the walker and the extractor
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Join(elem ...string) string
	Rel(base, target string) (string, error)
}

// Resolver is implemented by filesystems that can resolve symbolic links.
// Following symlinked directories requires it for cycle detection.
type Resolver interface {
	RealPath(name string) (string, error)
}

// IsDir reports whether name exists and is a directory
func IsDir(fsys FileSystem, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.IsDir()
}

// IsFile reports whether name exists and is not a directory
func IsFile(fsys FileSystem, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && !info.IsDir()
}

// Exists reports whether name can be stat'ed
func Exists(fsys FileSystem, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}

// osFileSystem implements FileSystem using the actual filesystem
type osFileSystem struct{}

// OS returns the host filesystem. Paths use the platform separator.
func OS() FileSystem {
	return osFileSystem{}
}

func (osFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (osFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (osFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (osFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

func (osFileSystem) Rel(base, target string) (string, error) {
	return filepath.Rel(base, target)
}

func (osFileSystem) RealPath(name string) (string, error) {
	resolved, err := filepath.EvalSymlinks(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// ioFileSystem adapts an fs.FS. Names are slash separated and relative to the
// root of the wrapped FS; "." is the root.
type ioFileSystem struct {
	fsys fs.FS
}

// FromFS wraps an io/fs filesystem such as fstest.MapFS or os.DirFS
func FromFS(fsys fs.FS) FileSystem {
	return ioFileSystem{fsys: fsys}
}

func (f ioFileSystem) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(f.fsys, clean(name))
}

func (f ioFileSystem) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(f.fsys, clean(name))
}

func (f ioFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(f.fsys, clean(name))
}

func (ioFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

func (ioFileSystem) Rel(base, target string) (string, error) {
	base, target = clean(base), clean(target)
	if base == "." {
		return target, nil
	}
	if target == base {
		return ".", nil
	}
	if rest, ok := strings.CutPrefix(target, base+"/"); ok {
		return rest, nil
	}
	return target, &fs.PathError{Op: "rel", Path: target, Err: fs.ErrInvalid}
}

// clean converts a user supplied name into a valid io/fs name
func clean(name string) string {
	name = path.Clean(filepath.ToSlash(name))
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "."
	}
	return name
}
