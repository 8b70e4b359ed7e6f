package project

import (
	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
	"github.com/supreme-majesty/mmm-builder/pkg/dbcred"
	"github.com/supreme-majesty/mmm-builder/pkg/environment"
)

// ThisAlias is bound to the installation the aliases are used in.
const ThisAlias = "this"

// Route maps a host name to a site of an installation.
type Route struct {
	Host         string
	Site         string
	Installation string
}

// URIToSiteMap returns one route per site URI, installations in order.
// Host names are not deduplicated; a later route for the same host wins
// when the routes are applied in order.
func (p *Project) URIToSiteMap() []Route {
	var routes []Route
	for _, inst := range p.installations {
		routes = append(routes, inst.URIToSiteMap()...)
	}
	return routes
}

// URIToSiteMap returns one route per site URI.
func (i *Installation) URIToSiteMap() []Route {
	var routes []Route
	for _, site := range i.sites {
		for _, uri := range i.uris[site] {
			routes = append(routes, Route{Host: HostOf(uri), Site: site, Installation: i.name})
		}
	}
	return routes
}

// URIVariant is a request URI and the base URL used when it matches.
type URIVariant struct {
	URI     string
	Host    string
	BaseURL string
}

// URIVariants returns the declared URIs of a site followed by a fallback
// mapping to the primary URI. The fallback is http://<site key>, the URI
// drush uses for a site directory, rather than http://<primary host>, which
// would only repeat the primary URI's host. Each URI appears once.
func (i *Installation) URIVariants(site string) []URIVariant {
	uris := i.uris[site]
	if len(uris) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var variants []URIVariant
	add := func(uri, base string) {
		if seen[uri] {
			return
		}
		seen[uri] = true
		variants = append(variants, URIVariant{URI: uri, Host: HostOf(uri), BaseURL: base})
	}
	for _, uri := range uris {
		add(uri, uri)
	}
	add("http://"+site, uris[0])
	return variants
}

// Alias is a drush site alias. Aggregate aliases only carry SiteList.
type Alias struct {
	Name        string
	URI         string
	Root        string
	LocalHostID string
	RemoteUser  string
	RemoteHost  string
	SiteList    []string
}

// AliasName is the alias of one site: the installation name for single-site
// installations, installation.site otherwise.
func (i *Installation) AliasName(site string) string {
	if i.IsMultisite() {
		return i.name + "." + site
	}
	return i.name
}

// Aliases returns one alias per site, plus an aggregate site-list alias
// named after the installation when it has several sites. Remote user and
// host are set unless m matches the server's user@host.
func (i *Installation) Aliases(m environment.Matcher) []Alias {
	localHostID := adapters.LocalHostID(i.server)
	remote := !m.Match(localHostID)

	var (
		aliases  []Alias
		siteList []string
	)
	for _, site := range i.sites {
		a := Alias{
			Name:        i.AliasName(site),
			URI:         i.PrimaryURI(site),
			Root:        i.docroot,
			LocalHostID: localHostID,
		}
		if remote {
			a.RemoteUser = i.server.User()
			a.RemoteHost = i.server.Host()
		}
		aliases = append(aliases, a)
		siteList = append(siteList, "@"+a.Name)
	}
	if i.IsMultisite() && len(i.sites) > 0 {
		aliases = append(aliases, Alias{Name: i.name, SiteList: siteList})
	}
	return aliases
}

// Aliases returns the aliases of all installations. The alias of the
// installation whose docroot m matches is repeated as "this".
func (p *Project) Aliases(m environment.Matcher) []Alias {
	var (
		aliases []Alias
		this    *Alias
	)
	for _, inst := range p.installations {
		instAliases := inst.Aliases(m)
		aliases = append(aliases, instAliases...)
		if this == nil && m.Match(inst.HostRootID()) {
			for _, a := range instAliases {
				if a.Name == inst.name {
					a.Name = ThisAlias
					this = &a
					break
				}
			}
		}
	}
	if this != nil {
		aliases = append(aliases, *this)
	}
	return aliases
}

// BaseURLs maps every site id to the primary URI of its site.
func (p *Project) BaseURLs() map[string]string {
	out := make(map[string]string)
	for _, inst := range p.installations {
		for _, site := range inst.sites {
			out[inst.SiteID(site)] = inst.PrimaryURI(site)
		}
	}
	return out
}

// DbCredentials maps site ids to database credentials.
func (p *Project) DbCredentials() map[string]dbcred.Credentials {
	out := make(map[string]dbcred.Credentials)
	for _, inst := range p.installations {
		for _, site := range inst.dbSites {
			out[inst.SiteID(site)] = inst.db[site]
		}
	}
	return out
}

// SiteIDs maps every site id to its installation name.
func (p *Project) SiteIDs() map[string]string {
	out := make(map[string]string)
	for _, inst := range p.installations {
		for _, site := range inst.sites {
			out[inst.SiteID(site)] = inst.name
		}
	}
	return out
}

// InstallationIDs maps the docroot id of every installation to its name.
func (p *Project) InstallationIDs() map[string]string {
	out := make(map[string]string)
	for _, inst := range p.installations {
		out[inst.HostRootID()] = inst.name
	}
	return out
}
