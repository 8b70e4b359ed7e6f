// Package compiler turns a project into the settings, routing and alias
// files of a multi-installation Drupal repository.
//
// Every entry point only queues commands; nothing touches the filesystem
// until the caller executes or simulates the queue. Generated PHP decides at
// request time which installation it runs in by asking the runtime
// environment, Runtime::getEnvironment(), to match site ids.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/supreme-majesty/mmm-builder/pkg/commands"
	"github.com/supreme-majesty/mmm-builder/pkg/environment"
	"github.com/supreme-majesty/mmm-builder/pkg/project"
)

// ErrNoCurrentInstallation is returned when no installation matches the
// environment the builder runs in.
var ErrNoCurrentInstallation = errors.New("no installation matches the current environment")

// Repository-relative files outside the docroot.
const (
	BaseURLFile        = "settings.baseurl.php"
	DatabasesFile      = "settings.databases.php"
	SettingsFile       = "settings.php"
	CommonSettingsFile = "settings.common.php"
	LocalSettingsFile  = "settings.local.php"
	CrontabFile        = "crontab"
	GitignoreFile      = ".gitignore"
	BoxFile            = "Boxfile"
	PrivateDir         = "private"
	SharedDir          = "shared"
)

// Compiler generates artifacts for one project.
type Compiler struct {
	project *project.Project
	env     environment.Matcher
	logger  *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// New returns a compiler for p. env is the environment the builder runs in;
// it picks the current installation for lifecycle commands.
func New(p *project.Project, env environment.Matcher, opts ...Option) *Compiler {
	c := &Compiler{
		project: p,
		env:     env,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Docroot joins elem to the repository-relative docroot.
func (c *Compiler) Docroot(elem ...string) string {
	return path.Join(append([]string{c.project.DocrootDir}, elem...)...)
}

// SitesFile is the multisite routing file.
func (c *Compiler) SitesFile() string {
	return c.Docroot("sites", "sites.php")
}

// AliasesFile is the drush alias file.
func (c *Compiler) AliasesFile() string {
	return c.Docroot("sites", "all", "drush", "aliases.drushrc.php")
}

// HtaccessFile is the docroot's rewrite rules.
func (c *Compiler) HtaccessFile() string {
	return c.Docroot(".htaccess")
}

// Compile queues all generated artifacts.
func (c *Compiler) Compile(q *commands.Queue) error {
	q.Add(commands.EnsureDirectory{Dir: path.Dir(c.AliasesFile())})

	artifacts := []struct {
		target  string
		content string
	}{
		{c.SitesFile(), c.SitesPHP()},
		{c.AliasesFile(), c.AliasesPHP()},
		{BaseURLFile, c.BaseURLsPHP()},
		{DatabasesFile, c.DatabasesPHP()},
		{SettingsFile, c.SettingsPHP()},
	}
	for _, a := range artifacts {
		c.logger.Debug("queued artifact", "path", a.target, "bytes", len(a.content))
		q.Add(commands.WriteFile{Target: a.target, Content: a.content})
	}
	return nil
}

// CurrentInstallation returns the installation whose docroot matches the
// environment.
func (c *Compiler) CurrentInstallation() (*project.Installation, error) {
	name, ok := environment.Select(c.env, c.project.InstallationIDs())
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoCurrentInstallation, c.env)
	}
	return c.project.Installation(name)
}

// relativeTo returns target, a repository-relative path, as seen from the
// repository-relative directory dir.
func relativeTo(dir, target string) string {
	dir = path.Clean(dir)
	if dir == "." {
		return target
	}
	return strings.Repeat("../", strings.Count(dir, "/")+1) + target
}
