package project

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
)

// DefaultDocrootDir is where the Drupal docroot lives inside the repository.
const DefaultDocrootDir = "docroot"

var supportedVersions = map[int]string{
	7: "$conf",
	8: "$settings",
}

// Project is a Drupal code base deployed to one or more installations.
type Project struct {
	version int

	// DocrootDir is the repository-relative Drupal docroot.
	DocrootDir string

	installations []*Installation
	byName        map[string]*Installation
}

// New returns a project for a Drupal major version.
func New(version int) (*Project, error) {
	if _, ok := supportedVersions[version]; !ok {
		return nil, fmt.Errorf("%w: drupal major version not supported: %d", ErrConfiguration, version)
	}
	return &Project{
		version:    version,
		DocrootDir: DefaultDocrootDir,
		byName:     make(map[string]*Installation),
	}, nil
}

// Version is the Drupal major version.
func (p *Project) Version() int {
	return p.version
}

// SettingsVariable is the name of the settings array for the version.
func (p *Project) SettingsVariable() string {
	return supportedVersions[p.version]
}

// AddInstallation registers an installation on server.
func (p *Project) AddInstallation(name string, server adapters.ServerProvider) (*Installation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: installation name is empty", ErrConfiguration)
	}
	if server == nil {
		return nil, fmt.Errorf("%w: installation %s has no server", ErrConfiguration, name)
	}
	if _, ok := p.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateInstallation, name)
	}
	inst := newInstallation(name, server)
	p.installations = append(p.installations, inst)
	p.byName[name] = inst
	return inst, nil
}

// Installations returns the installations in the order they were added.
func (p *Project) Installations() []*Installation {
	return append([]*Installation(nil), p.installations...)
}

// Installation looks up an installation by name.
func (p *Project) Installation(name string) (*Installation, error) {
	inst, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstallation, name)
	}
	return inst, nil
}

// Sites returns every site key declared by any installation, first
// declaration first.
func (p *Project) Sites() []string {
	seen := make(map[string]bool)
	var sites []string
	for _, inst := range p.installations {
		for _, s := range inst.sites {
			if !seen[s] {
				seen[s] = true
				sites = append(sites, s)
			}
		}
	}
	return sites
}

// HasSite reports whether any installation declares site.
func (p *Project) HasSite(site string) bool {
	for _, inst := range p.installations {
		if inst.HasSite(site) {
			return true
		}
	}
	return false
}

// Validate validates every installation and reports all failures.
func (p *Project) Validate() error {
	var result *multierror.Error
	if len(p.installations) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: project needs at least one installation", ErrMissingRequirement))
	}
	for _, inst := range p.installations {
		if err := inst.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
