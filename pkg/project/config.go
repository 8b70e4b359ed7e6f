package project

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
	"github.com/supreme-majesty/mmm-builder/pkg/adapters/linux"
	"github.com/supreme-majesty/mmm-builder/pkg/adapters/local"
	"github.com/supreme-majesty/mmm-builder/pkg/adapters/uberspace"
)

// Config is the project file, usually mmm.yaml. Installations and sites are
// YAML mappings whose order is kept.
type Config struct {
	Drupal        int       `yaml:"drupal"`
	Docroot       string    `yaml:"docroot"`
	Installations yaml.Node `yaml:"installations"`
}

// InstallationConfig is one entry under installations.
type InstallationConfig struct {
	Server    ServerConfig      `yaml:"server"`
	Docroot   string            `yaml:"docroot"`
	Sites     yaml.Node         `yaml:"sites"`
	DbPattern string            `yaml:"db_pattern"`
	Db        map[string]string `yaml:"db"`
}

// ServerConfig selects and configures a server type.
type ServerConfig struct {
	Type string `yaml:"type"`
	Host string `yaml:"host"`
	User string `yaml:"user"`
	Home string `yaml:"home"`
}

// ServerFactory builds a server from its configuration.
type ServerFactory func(ServerConfig) (adapters.ServerProvider, error)

// ServerTypes maps server type names to factories.
var ServerTypes = map[string]ServerFactory{
	"uberspace": func(c ServerConfig) (adapters.ServerProvider, error) {
		if c.Host == "" || c.User == "" {
			return nil, fmt.Errorf("%w: uberspace server needs host and user", ErrConfiguration)
		}
		return uberspace.NewUberspaceAdapter(c.Host, c.User), nil
	},
	"linux": func(c ServerConfig) (adapters.ServerProvider, error) {
		if c.Host == "" || c.User == "" {
			return nil, fmt.Errorf("%w: linux server needs host and user", ErrConfiguration)
		}
		return linux.NewLinuxAdapter(c.Host, c.User, c.Home), nil
	},
	"local": func(ServerConfig) (adapters.ServerProvider, error) {
		return local.NewLocalAdapter()
	},
}

// Load reads and builds the project file at path.
func Load(fs afero.Fs, path string) (*Project, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return p, nil
}

// Parse builds a project from project file content.
func Parse(data []byte) (*Project, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	return cfg.Build()
}

// Build creates the project described by the configuration.
func (c *Config) Build() (*Project, error) {
	p, err := New(c.Drupal)
	if err != nil {
		return nil, err
	}
	if c.Docroot != "" {
		p.DocrootDir = c.Docroot
	}

	entries, err := mappingEntries(&c.Installations, "installations")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		var ic InstallationConfig
		if err := e.value.Decode(&ic); err != nil {
			return nil, fmt.Errorf("failed to parse installation %s: %w", e.key, err)
		}
		if err := ic.apply(p, e.key); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (ic *InstallationConfig) apply(p *Project, name string) error {
	factory, ok := ServerTypes[ic.Server.Type]
	if !ok {
		return fmt.Errorf("%w: installation %s has unknown server type %q", ErrConfiguration, name, ic.Server.Type)
	}
	server, err := factory(ic.Server)
	if err != nil {
		return fmt.Errorf("failed to create server of installation %s: %w", name, err)
	}
	inst, err := p.AddInstallation(name, server)
	if err != nil {
		return err
	}
	if ic.Docroot != "" {
		inst.SetDocroot(ic.Docroot)
	}

	sites, err := mappingEntries(&ic.Sites, "sites of installation "+name)
	if err != nil {
		return err
	}
	for _, s := range sites {
		uris, err := stringList(s.value)
		if err != nil || len(uris) == 0 {
			return fmt.Errorf("%w: site %s of installation %s needs a uri or a list of uris", ErrConfiguration, s.key, name)
		}
		if err := inst.AddSite(s.key, uris[0]); err != nil {
			return err
		}
		for _, uri := range uris[1:] {
			if err := inst.AddURI(s.key, uri); err != nil {
				return err
			}
		}
	}

	if ic.DbPattern != "" {
		if err := inst.SetDbURLPattern(ic.DbPattern); err != nil {
			return err
		}
	}
	// Explicit credentials override the pattern, in site order first.
	for _, site := range dbOrder(inst.Sites(), ic.Db) {
		if err := inst.SetDbURL(ic.Db[site], site); err != nil {
			return err
		}
	}
	return nil
}

type entry struct {
	key   string
	value *yaml.Node
}

// mappingEntries returns the entries of a mapping node in document order.
// An absent node has no entries.
func mappingEntries(n *yaml.Node, what string) ([]entry, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must be a mapping (line %d)", ErrConfiguration, what, n.Line)
	}
	entries := make([]entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		entries = append(entries, entry{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return entries, nil
}

// stringList accepts a scalar or a sequence of scalars.
func stringList(n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

func dbOrder(sites []string, db map[string]string) []string {
	seen := make(map[string]bool, len(db))
	var order []string
	for _, s := range sites {
		if _, ok := db[s]; ok {
			order = append(order, s)
			seen[s] = true
		}
	}
	var rest []string
	for s := range db {
		if !seen[s] {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
