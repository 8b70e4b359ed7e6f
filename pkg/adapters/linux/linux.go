package linux

import (
	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
)

// DefaultDocroot is used when an installation does not set one.
const DefaultDocroot = "public_html"

// LinuxAdapter describes a plain Linux host reachable over SSH.
type LinuxAdapter struct {
	host string
	user string
	home string
}

// NewLinuxAdapter creates an adapter for host and user. An empty home
// defaults to /home/<user>.
func NewLinuxAdapter(host, user, home string) *LinuxAdapter {
	if home == "" {
		home = "/home/" + user
	}
	return &LinuxAdapter{
		host: host,
		user: user,
		home: home,
	}
}

// Identity

func (l *LinuxAdapter) Host() string {
	return l.host
}

func (l *LinuxAdapter) ShortHostName() string {
	return adapters.ShortHost(l.host)
}

func (l *LinuxAdapter) User() string {
	return l.user
}

// Document root

func (l *LinuxAdapter) DefaultDocroot() string {
	return l.NormalizeDocroot(DefaultDocroot)
}

func (l *LinuxAdapter) NormalizeDocroot(docroot string) string {
	return adapters.ResolveDocroot(l.home, docroot)
}

// AlterHtaccess leaves the rules untouched; a stock Apache needs no changes.
func (l *LinuxAdapter) AlterHtaccess(content string) string {
	return content
}
