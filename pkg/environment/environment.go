// Package environment decides which installation the builder is running in.
//
// Environment ids have the same shape as site ids, user@host/absolute/docroot,
// optionally followed by #site. A candidate id matches the current
// environment when it is a path-boundary prefix of it, so "user@host" matches
// every docroot on that host while "user@host/var/www#default" matches only
// that docroot.
package environment

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
	"github.com/supreme-majesty/mmm-builder/pkg/adapters/local"
)

// Matcher tests ids against the current environment.
type Matcher interface {
	Match(id string) bool
}

// Static is a Matcher for a fixed environment id.
type Static struct {
	ID string
}

// Match implements Matcher.
func (s Static) Match(id string) bool {
	return Matches(s.ID, id)
}

// String returns the environment id.
func (s Static) String() string {
	return s.ID
}

// None matches nothing. Useful when compiling on a machine that is not an
// installation of the project.
type None struct{}

// Match implements Matcher.
func (None) Match(string) bool { return false }

// Matches reports whether candidate matches the environment id current.
func Matches(current, candidate string) bool {
	if candidate == "" {
		return false
	}
	candidatePath, candidateSite, candidateHasSite := strings.Cut(candidate, "#")
	currentPath, currentSite, currentHasSite := strings.Cut(current, "#")
	if candidateHasSite && currentHasSite && candidateSite != currentSite {
		return false
	}
	if !strings.HasPrefix(currentPath, candidatePath) {
		return false
	}
	rest := currentPath[len(candidatePath):]
	return rest == "" || rest[0] == '/' || strings.HasSuffix(candidatePath, "/")
}

// Select returns the value whose key is the most specific id matching the
// current environment.
func Select[T any](m Matcher, candidates map[string]T) (T, bool) {
	keys := make([]string, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		best  string
		found bool
	)
	for _, k := range keys {
		if !m.Match(k) {
			continue
		}
		if !found || len(k) > len(best) {
			best, found = k, true
		}
	}
	if !found {
		var zero T
		return zero, false
	}
	return candidates[best], true
}

// Replaceable in tests.
var newLocalAdapter = func() (adapters.ServerProvider, error) {
	return local.NewLocalAdapter()
}

// Detect builds the environment of this machine for the given docroot
// directory.
func Detect(docroot string) (Static, error) {
	server, err := newLocalAdapter()
	if err != nil {
		return Static{}, err
	}
	abs, err := filepath.Abs(docroot)
	if err != nil {
		return Static{}, fmt.Errorf("failed to resolve docroot %s: %w", docroot, err)
	}
	return Static{ID: adapters.LocalHostID(server) + filepath.ToSlash(abs)}, nil
}
