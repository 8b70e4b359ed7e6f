package commands

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Command is one filesystem operation in a queue.
//
// Execute performs the operation unless simulate is set, and in both cases
// records the resulting state into results under the affected path.
type Command interface {
	Execute(ws Workspace, results Results, simulate bool) error
	// Path is the repository-relative path the command produces.
	Path() string
	Describe() string
}

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// WriteFile writes Content to Path. The parent directory must exist.
type WriteFile struct {
	Target  string
	Content string
}

func (c WriteFile) Path() string     { return clean(c.Target) }
func (c WriteFile) Describe() string { return "write " + c.Path() }

func (c WriteFile) Execute(ws Workspace, results Results, simulate bool) error {
	if err := writeFile(ws, results, c.Target, c.Content, simulate); err != nil {
		return err
	}
	results.record(c.Target, Result{Kind: KindFile, Content: c.Content})
	return nil
}

// CopyFile copies Source to Target.
type CopyFile struct {
	Source string
	Target string
}

func (c CopyFile) Path() string     { return clean(c.Target) }
func (c CopyFile) Describe() string { return "copy " + clean(c.Source) + " to " + c.Path() }

func (c CopyFile) Execute(ws Workspace, results Results, simulate bool) error {
	content, err := read(ws, results, c.Source)
	if err != nil {
		return err
	}
	if err := writeFile(ws, results, c.Target, content, simulate); err != nil {
		return err
	}
	results.record(c.Target, Result{Kind: KindFile, Content: content})
	return nil
}

// EnsureDirectory creates Dir and its parents when missing.
type EnsureDirectory struct {
	Dir string
}

func (c EnsureDirectory) Path() string     { return clean(c.Dir) }
func (c EnsureDirectory) Describe() string { return "ensure directory " + c.Path() }

func (c EnsureDirectory) Execute(ws Workspace, results Results, simulate bool) error {
	cur, err := state(ws, results, c.Dir)
	if err != nil {
		return err
	}
	if cur.Kind == KindFile {
		return fmt.Errorf("failed to create directory %s: a file is in the way", c.Path())
	}
	if !simulate {
		if err := ws.Fs.MkdirAll(ws.Path(c.Dir), dirMode); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", c.Path(), err)
		}
	}
	// A symlink to a directory satisfies the command and stays as it is.
	if cur.Kind == KindSymlink {
		return nil
	}
	results.record(c.Dir, Result{Kind: KindDirectory})
	return nil
}

// CreateSymlink points Link at Target. Target is stored as given, so
// relative targets resolve against the directory of Link. An existing link
// at Link is replaced; any other entry is an error.
type CreateSymlink struct {
	Link   string
	Target string
}

func (c CreateSymlink) Path() string     { return clean(c.Link) }
func (c CreateSymlink) Describe() string { return "symlink " + c.Path() + " -> " + c.Target }

func (c CreateSymlink) Execute(ws Workspace, results Results, simulate bool) error {
	cur, err := state(ws, results, c.Link)
	if err != nil {
		return err
	}
	if cur.Kind != "" && cur.Kind != KindSymlink {
		return fmt.Errorf("failed to create symlink %s: a %s is in the way", c.Path(), cur.Kind)
	}
	if !simulate {
		linker, ok := ws.Fs.(afero.Linker)
		if !ok {
			return fmt.Errorf("failed to create symlink %s: filesystem has no symlink support", c.Path())
		}
		if cur.Kind == KindSymlink {
			if err := ws.Fs.Remove(ws.Path(c.Link)); err != nil {
				return fmt.Errorf("failed to replace symlink %s: %w", c.Path(), err)
			}
		}
		if err := linker.SymlinkIfPossible(filepath.FromSlash(c.Target), ws.Path(c.Link)); err != nil {
			return fmt.Errorf("failed to create symlink %s: %w", c.Path(), err)
		}
	}
	results.record(c.Link, Result{Kind: KindSymlink, Content: c.Target})
	return nil
}

// AlterFile reads Source, applies Transform and writes the outcome to
// Target. Source itself is left untouched.
type AlterFile struct {
	Source    string
	Target    string
	Transform func(string) string
}

func (c AlterFile) Path() string     { return clean(c.Target) }
func (c AlterFile) Describe() string { return "alter " + clean(c.Source) + " into " + c.Path() }

func (c AlterFile) Execute(ws Workspace, results Results, simulate bool) error {
	content, err := read(ws, results, c.Source)
	if err != nil {
		return err
	}
	if c.Transform != nil {
		content = c.Transform(content)
	}
	if err := writeFile(ws, results, c.Target, content, simulate); err != nil {
		return err
	}
	results.record(c.Target, Result{Kind: KindFile, Content: content})
	return nil
}

// MoveFile renames Source to Target, replacing a file or symlink at Target.
type MoveFile struct {
	Source string
	Target string
}

func (c MoveFile) Path() string     { return clean(c.Target) }
func (c MoveFile) Describe() string { return "move " + clean(c.Source) + " to " + c.Path() }

func (c MoveFile) Execute(ws Workspace, results Results, simulate bool) error {
	content, err := read(ws, results, c.Source)
	if err != nil {
		return err
	}
	dst, err := state(ws, results, c.Target)
	if err != nil {
		return err
	}
	if dst.Kind == KindDirectory {
		return fmt.Errorf("failed to move %s: %s is a directory", clean(c.Source), c.Path())
	}
	if !simulate {
		if err := ws.Fs.Rename(ws.Path(c.Source), ws.Path(c.Target)); err != nil {
			return fmt.Errorf("failed to move %s to %s: %w", clean(c.Source), c.Path(), err)
		}
	}
	results.record(c.Target, Result{Kind: KindFile, Content: content})
	results.record(c.Source, Result{Kind: KindRemoved})
	return nil
}

// writeFile writes content to rel unless simulating. Both modes refuse to
// write through a directory.
func writeFile(ws Workspace, results Results, rel, content string, simulate bool) error {
	cur, err := state(ws, results, rel)
	if err != nil {
		return err
	}
	if cur.Kind == KindDirectory {
		return fmt.Errorf("failed to write %s: is a directory", clean(rel))
	}
	if !parentExists(ws, results, rel) {
		return fmt.Errorf("failed to write %s: parent directory does not exist", clean(rel))
	}
	if simulate {
		return nil
	}
	if cur.Kind == KindSymlink {
		// Replace the link rather than writing through it.
		if err := ws.Fs.Remove(ws.Path(rel)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to replace symlink %s: %w", clean(rel), err)
		}
	}
	if err := afero.WriteFile(ws.Fs, ws.Path(rel), []byte(content), fileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", clean(rel), err)
	}
	return nil
}

func parentExists(ws Workspace, results Results, rel string) bool {
	dir := path.Dir(clean(rel))
	if dir == "." {
		return true
	}
	key, res, ok := lookup(results, dir)
	if ok {
		return res.Kind == KindDirectory || res.Kind == KindSymlink
	}
	// EnsureDirectory creates parents without recording them.
	for p, res := range results {
		if res.Kind == KindDirectory && (strings.HasPrefix(p, dir+"/") || strings.HasPrefix(p, key+"/")) {
			return true
		}
	}
	return ws.IsDir(key)
}
