package local

import (
	"fmt"
	"os/user"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
)

// Replaceable in tests.
var (
	hostInfo    = host.Info
	homeDir     = homedir.Dir
	currentUser = user.Current
)

// LocalAdapter describes the machine the builder runs on, typically a
// developer workstation. It has no default docroot.
type LocalAdapter struct {
	host string
	user string
	home string
}

// NewLocalAdapter reads host name, user and home directory from the system.
func NewLocalAdapter() (*LocalAdapter, error) {
	info, err := hostInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}
	u, err := currentUser()
	if err != nil {
		return nil, fmt.Errorf("failed to look up current user: %w", err)
	}
	home, err := homeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find home directory: %w", err)
	}
	return &LocalAdapter{
		host: info.Hostname,
		user: u.Username,
		home: home,
	}, nil
}

func (l *LocalAdapter) Host() string {
	return l.host
}

func (l *LocalAdapter) ShortHostName() string {
	return adapters.ShortHost(l.host)
}

func (l *LocalAdapter) User() string {
	return l.user
}

func (l *LocalAdapter) DefaultDocroot() string {
	return ""
}

// NormalizeDocroot expands "~" and resolves relative paths against home.
func (l *LocalAdapter) NormalizeDocroot(docroot string) string {
	switch {
	case docroot == "~":
		docroot = l.home
	case strings.HasPrefix(docroot, "~/"):
		docroot = docroot[2:]
	}
	return adapters.ResolveDocroot(l.home, docroot)
}

func (l *LocalAdapter) AlterHtaccess(content string) string {
	return content
}
