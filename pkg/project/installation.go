package project

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
	"github.com/supreme-majesty/mmm-builder/pkg/dbcred"
)

// Placeholder tokens understood by credential patterns.
const (
	PlaceholderInstallation = "{{installation}}"
	PlaceholderSite         = "{{site}}"
)

// Installation is one deployment of the project on one server.
type Installation struct {
	name    string
	server  adapters.ServerProvider
	docroot string

	sites []string
	uris  map[string][]string

	dbSites []string
	db      map[string]dbcred.Credentials
}

func newInstallation(name string, server adapters.ServerProvider) *Installation {
	return &Installation{
		name:    name,
		server:  server,
		docroot: server.NormalizeDocroot(server.DefaultDocroot()),
		uris:    make(map[string][]string),
		db:      make(map[string]dbcred.Credentials),
	}
}

func (i *Installation) Name() string {
	return i.name
}

func (i *Installation) Server() adapters.ServerProvider {
	return i.server
}

// Docroot is the absolute document root on the server.
func (i *Installation) Docroot() string {
	return i.docroot
}

// AddSite declares a site with its primary URI.
func (i *Installation) AddSite(site, uri string) error {
	if _, ok := i.uris[site]; ok {
		return fmt.Errorf("%w: site %s defined twice in installation %s", ErrDuplicateSite, site, i.name)
	}
	if err := i.checkURI(site, uri); err != nil {
		return err
	}
	i.sites = append(i.sites, site)
	i.uris[site] = []string{uri}
	return nil
}

// AddURI adds a further URI to a declared site.
func (i *Installation) AddURI(site, uri string) error {
	uris, ok := i.uris[site]
	if !ok {
		return fmt.Errorf("%w: uri %s added for missing site %s in installation %s", ErrUnknownSite, uri, site, i.name)
	}
	for _, u := range uris {
		if u == uri {
			return fmt.Errorf("%w: uri %s already defined for site %s in installation %s", ErrDuplicateURI, uri, site, i.name)
		}
	}
	if err := i.checkURI(site, uri); err != nil {
		return err
	}
	i.uris[site] = append(uris, uri)
	return nil
}

// SetDocroot sets the document root, normalized by the server.
func (i *Installation) SetDocroot(docroot string) {
	i.docroot = i.server.NormalizeDocroot(docroot)
}

// SetDbCredentials sets the database connection of one site.
func (i *Installation) SetDbCredentials(creds dbcred.Credentials, site string) {
	if _, ok := i.db[site]; !ok {
		i.dbSites = append(i.dbSites, site)
	}
	i.db[site] = creds
}

// SetDbURL parses a connection string and sets it for one site.
func (i *Installation) SetDbURL(connection, site string) error {
	creds, err := dbcred.Parse(connection)
	if err != nil {
		return fmt.Errorf("failed to set database of site %s in installation %s: %w", site, i.name, err)
	}
	i.SetDbCredentials(creds, site)
	return nil
}

// SetDbCredentialPattern sets credentials for every site declared so far,
// substituting the installation name and the site key for their
// placeholders. Sites added later are not covered.
func (i *Installation) SetDbCredentialPattern(pattern dbcred.Credentials) {
	for _, site := range i.sites {
		i.SetDbCredentials(pattern.Substitute(map[string]string{
			PlaceholderInstallation: i.name,
			PlaceholderSite:         site,
		}), site)
	}
}

// SetDbURLPattern is SetDbCredentialPattern for a connection string.
func (i *Installation) SetDbURLPattern(connection string) error {
	pattern, err := dbcred.Parse(connection)
	if err != nil {
		return fmt.Errorf("failed to set database pattern of installation %s: %w", i.name, err)
	}
	i.SetDbCredentialPattern(pattern)
	return nil
}

// SiteID returns user@shorthost/docroot#site.
func (i *Installation) SiteID(site string) string {
	return i.HostRootID() + "#" + site
}

// HostRootID is the site id without the site part. It matches every site of
// the installation.
func (i *Installation) HostRootID() string {
	return adapters.LocalHostID(i.server) + i.docroot
}

// Sites returns the site keys in declaration order.
func (i *Installation) Sites() []string {
	return append([]string(nil), i.sites...)
}

// HasSite reports whether site is declared.
func (i *Installation) HasSite(site string) bool {
	_, ok := i.uris[site]
	return ok
}

// URIs returns the URIs of a site, primary first.
func (i *Installation) URIs(site string) []string {
	return append([]string(nil), i.uris[site]...)
}

// PrimaryURI returns the first URI of a site, or "" for unknown sites.
func (i *Installation) PrimaryURI(site string) string {
	if uris := i.uris[site]; len(uris) > 0 {
		return uris[0]
	}
	return ""
}

// IsMultisite reports whether the installation serves more than one site.
func (i *Installation) IsMultisite() bool {
	return len(i.sites) != 1
}

// DbSites returns the sites with credentials, in the order they were set.
func (i *Installation) DbSites() []string {
	return append([]string(nil), i.dbSites...)
}

// DbCredentialsFor returns the credentials of a site.
func (i *Installation) DbCredentialsFor(site string) (dbcred.Credentials, bool) {
	c, ok := i.db[site]
	return c, ok
}

// AlterHtaccess applies the server's rewrite-rule changes.
func (i *Installation) AlterHtaccess(content string) string {
	return i.server.AlterHtaccess(content)
}

// Validate checks that the installation can be compiled.
func (i *Installation) Validate() error {
	if len(i.sites) == 0 {
		return fmt.Errorf("%w: installation %s needs site uris", ErrMissingRequirement, i.name)
	}
	if i.docroot == "" {
		return fmt.Errorf("%w: installation %s needs docroot", ErrMissingRequirement, i.name)
	}
	return nil
}

// HostOf returns the lower-cased host name of a URI, the form Drupal
// compares request hosts in. Bare host names are accepted.
func HostOf(uri string) string {
	if !strings.Contains(uri, "://") {
		uri = "http://" + uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func (i *Installation) checkURI(site, uri string) error {
	if HostOf(uri) == "" {
		return fmt.Errorf("%w: uri %q of site %s in installation %s has no host", ErrConfiguration, uri, site, i.name)
	}
	return nil
}
