package uberspace

import (
	"regexp"
	"strings"

	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
)

const hostSuffix = ".uberspace.de"

// DefaultDocroot is the docroot used when an installation does not set one.
const DefaultDocroot = "html/docroot"

var rewriteEngineRe = regexp.MustCompile(`(?mi)^([ \t]*)RewriteEngine[ \t]+on[ \t]*$`)
var rewriteBaseRe = regexp.MustCompile(`(?mi)^[ \t]*RewriteBase[ \t]`)

// UberspaceAdapter is the server provider for uberspace.de hosts.
type UberspaceAdapter struct {
	host string
	user string
}

// NewUberspaceAdapter creates an adapter for the named uberspace host,
// e.g. "lupus" for lupus.uberspace.de.
func NewUberspaceAdapter(host, user string) *UberspaceAdapter {
	host = strings.TrimSuffix(host, hostSuffix)
	return &UberspaceAdapter{
		host: host + hostSuffix,
		user: user,
	}
}

func (u *UberspaceAdapter) Host() string {
	return u.host
}

func (u *UberspaceAdapter) ShortHostName() string {
	return adapters.ShortHost(u.host)
}

func (u *UberspaceAdapter) User() string {
	return u.user
}

func (u *UberspaceAdapter) home() string {
	return "/home/" + u.user
}

func (u *UberspaceAdapter) DefaultDocroot() string {
	return u.NormalizeDocroot(DefaultDocroot)
}

// NormalizeDocroot resolves relative paths against the user's home directory.
func (u *UberspaceAdapter) NormalizeDocroot(docroot string) string {
	return adapters.ResolveDocroot(u.home(), docroot)
}

// AlterHtaccess adds "RewriteBase /" after "RewriteEngine on", which
// uberspace needs because the docroot is reached through a symlink.
func (u *UberspaceAdapter) AlterHtaccess(content string) string {
	if rewriteBaseRe.MatchString(content) {
		return content
	}
	loc := rewriteEngineRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return content
	}
	indent := content[loc[2]:loc[3]]
	return content[:loc[1]] + "\n" + indent + "RewriteBase /" + content[loc[1]:]
}
