package adapters

import (
	"path"
	"strings"
)

// ServerProvider defines the host identity facts of one deployment target class.
type ServerProvider interface {
	// Identity
	Host() string
	ShortHostName() string
	User() string

	// Document root
	DefaultDocroot() string
	NormalizeDocroot(docroot string) string

	// AlterHtaccess applies host-specific changes to the webserver rewrite rules.
	AlterHtaccess(content string) string
}

// LocalHostID returns the user@host part of a site id for the given server.
func LocalHostID(p ServerProvider) string {
	return p.User() + "@" + p.ShortHostName()
}

// ShortHost returns the first label of a fully qualified host name.
func ShortHost(host string) string {
	if i := strings.Index(host, "."); i > 0 {
		return host[:i]
	}
	return host
}

// ResolveDocroot makes docroot absolute relative to home and cleans it.
// An empty docroot stays empty.
func ResolveDocroot(home, docroot string) string {
	if docroot == "" {
		return ""
	}
	if !path.IsAbs(docroot) {
		docroot = path.Join(home, docroot)
	}
	return path.Clean(docroot)
}
