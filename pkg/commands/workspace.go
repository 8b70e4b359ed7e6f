package commands

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// Workspace is the repository a queue operates on. Command paths are
// slash-separated and relative to Root.
type Workspace struct {
	Fs   afero.Fs
	Root string
}

// NewWorkspace binds fs at root.
func NewWorkspace(fs afero.Fs, root string) Workspace {
	return Workspace{Fs: fs, Root: root}
}

// NewOsWorkspace is a workspace on the real filesystem.
func NewOsWorkspace(root string) Workspace {
	return NewWorkspace(afero.NewOsFs(), root)
}

// Path returns the filesystem path of a repository-relative path.
func (w Workspace) Path(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(clean(rel)))
}

func (w Workspace) lstat(rel string) (os.FileInfo, error) {
	if l, ok := w.Fs.(afero.Lstater); ok {
		fi, _, err := l.LstatIfPossible(w.Path(rel))
		return fi, err
	}
	return w.Fs.Stat(w.Path(rel))
}

// Exists reports whether anything, including a dangling symlink, is at rel.
func (w Workspace) Exists(rel string) bool {
	_, err := w.lstat(rel)
	return err == nil
}

// IsSymlink reports whether rel is a symbolic link.
func (w Workspace) IsSymlink(rel string) bool {
	fi, err := w.lstat(rel)
	return err == nil && fi.Mode()&os.ModeSymlink != 0
}

// IsDir reports whether rel is a directory, following symlinks.
func (w Workspace) IsDir(rel string) bool {
	ok, err := afero.IsDir(w.Fs, w.Path(rel))
	return err == nil && ok
}

// ReadFile returns the content of rel.
func (w Workspace) ReadFile(rel string) (string, error) {
	data, err := afero.ReadFile(w.Fs, w.Path(rel))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Readlink returns the target of the symlink at rel.
func (w Workspace) Readlink(rel string) (string, error) {
	r, ok := w.Fs.(afero.LinkReader)
	if !ok {
		return "", fmt.Errorf("failed to read link %s: filesystem has no symlink support", rel)
	}
	return r.ReadlinkIfPossible(w.Path(rel))
}

// State describes what is currently at rel on the filesystem.
func (w Workspace) State(rel string) (Result, error) {
	fi, err := w.lstat(rel)
	switch {
	case os.IsNotExist(err):
		return Result{}, nil
	case err != nil:
		return Result{}, err
	}
	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		target, err := w.Readlink(rel)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindSymlink, Content: filepath.ToSlash(target)}, nil
	case fi.IsDir():
		return Result{Kind: KindDirectory}, nil
	default:
		content, err := w.ReadFile(rel)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindFile, Content: content}, nil
	}
}

func clean(rel string) string {
	return path.Clean(filepath.ToSlash(rel))
}
