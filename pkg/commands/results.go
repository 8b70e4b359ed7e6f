package commands

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

// Kind is the type of filesystem entry a command produced.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
	KindSymlink   Kind = "symlink"
	KindRemoved   Kind = "removed"
)

// Result is the logical outcome of a command at one path. For symlinks
// Content holds the link target.
type Result struct {
	Kind    Kind
	Content string
}

// Results maps repository-relative paths to what the queue left there.
type Results map[string]Result

// Paths returns the recorded paths in lexical order.
func (r Results) Paths() []string {
	paths := make([]string, 0, len(r))
	for p := range r {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (r Results) record(rel string, res Result) {
	r[clean(rel)] = res
}

// maxLinkDepth bounds symlink resolution through results.
const maxLinkDepth = 8

// resolve rewrites rel through symlinks recorded for its parent
// directories, so that a link created earlier in a simulated run is
// followed the way the filesystem would follow it in a real one.
func resolve(results Results, rel string) string {
	rel = clean(rel)
	for depth := 0; depth < maxLinkDepth; depth++ {
		parts := strings.Split(rel, "/")
		changed := false
		for i := 1; i < len(parts); i++ {
			prefix := strings.Join(parts[:i], "/")
			res, ok := results[prefix]
			if !ok || res.Kind != KindSymlink || path.IsAbs(res.Content) {
				continue
			}
			rel = clean(path.Join(path.Dir(prefix), res.Content, strings.Join(parts[i:], "/")))
			changed = true
			break
		}
		if !changed {
			break
		}
	}
	return rel
}

// lookup finds the recorded result for rel, directly or through recorded
// parent symlinks. The returned key is the path to use on the filesystem
// when nothing is recorded.
func lookup(results Results, rel string) (string, Result, bool) {
	rel = clean(rel)
	if res, ok := results[rel]; ok {
		return rel, res, true
	}
	key := resolve(results, rel)
	res, ok := results[key]
	return key, res, ok
}

// read returns the content at rel as earlier commands left it, falling back
// to the filesystem for paths no command touched.
func read(ws Workspace, results Results, rel string) (string, error) {
	for depth := 0; depth < maxLinkDepth; depth++ {
		key, res, ok := lookup(results, rel)
		if !ok {
			return ws.ReadFile(key)
		}
		switch res.Kind {
		case KindFile:
			return res.Content, nil
		case KindSymlink:
			if path.IsAbs(res.Content) {
				data, err := afero.ReadFile(ws.Fs, filepath.FromSlash(res.Content))
				return string(data), err
			}
			rel = path.Join(path.Dir(key), res.Content)
		case KindRemoved:
			return "", fmt.Errorf("failed to read %s: removed by an earlier command", key)
		default:
			return "", fmt.Errorf("failed to read %s: is a %s", key, res.Kind)
		}
	}
	return "", fmt.Errorf("failed to read %s: too many levels of symbolic links", clean(rel))
}

// state returns what is at rel as earlier commands left it.
func state(ws Workspace, results Results, rel string) (Result, error) {
	key, res, ok := lookup(results, rel)
	if !ok {
		return ws.State(key)
	}
	if res.Kind == KindRemoved {
		return Result{}, nil
	}
	return res, nil
}

// Change is one path whose recorded result differs from the filesystem.
type Change struct {
	Path   string
	Before Result
	After  Result
	Diff   string
}

// Preview compares the results against the current filesystem state of ws
// and returns the paths that would change, in lexical order.
func (r Results) Preview(ws Workspace) ([]Change, error) {
	var changes []Change
	for _, p := range r.Paths() {
		before, err := ws.State(p)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect %s: %w", p, err)
		}
		after := r[p]
		if after.Kind == KindRemoved {
			after = Result{}
		}
		if before == after {
			continue
		}
		changes = append(changes, Change{
			Path:   p,
			Before: before,
			After:  after,
			Diff:   cmp.Diff(lines(before), lines(after)),
		})
	}
	return changes, nil
}

func lines(r Result) []string {
	switch r.Kind {
	case "":
		return nil
	case KindDirectory:
		return []string{"<directory>"}
	case KindSymlink:
		return []string{"-> " + r.Content}
	default:
		return strings.Split(r.Content, "\n")
	}
}
