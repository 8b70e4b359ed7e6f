package compiler

import (
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/supreme-majesty/mmm-builder/pkg/assets"
	"github.com/supreme-majesty/mmm-builder/pkg/commands"
	"github.com/supreme-majesty/mmm-builder/pkg/project"
)

// CopiedSettingsTag marks local settings carried over from settings.local.php.
const CopiedSettingsTag = "// TODO: Clean up settings copied from settings.local.php."

// alternateDocroots are layouts the docroot may be linked to.
var alternateDocroots = []string{"web", "html"}

// Scaffold queues the files and directories a repository needs, creating
// only what is missing. current names the installation being set up; its
// local settings are seeded from an existing settings.local.php.
func (c *Compiler) Scaffold(q *commands.Queue, current string) error {
	if _, err := c.project.Installation(current); err != nil {
		return err
	}
	ws := q.Workspace()
	insts := c.project.Installations()

	for _, inst := range insts {
		q.Add(commands.EnsureDirectory{Dir: path.Join(PrivateDir, inst.Name())})
	}
	q.Add(commands.EnsureDirectory{Dir: path.Join(PrivateDir, SharedDir)})

	if err := c.scaffoldTemplate(q, CrontabFile, assets.Crontab); err != nil {
		return err
	}

	docroot := c.project.DocrootDir
	if !ws.Exists(docroot) {
		for _, alt := range alternateDocroots {
			if alt == docroot || !ws.IsDir(alt) {
				continue
			}
			c.logger.Debug("linking docroot", "docroot", docroot, "target", alt)
			q.Add(commands.CreateSymlink{Link: docroot, Target: relativeTo(path.Dir(docroot), alt)})
			break
		}
	}

	for _, inst := range insts {
		target := localSettingsFile(inst.Name())
		if ws.Exists(target) {
			continue
		}
		if inst.Name() == current && ws.Exists(LocalSettingsFile) {
			q.Add(commands.AlterFile{Source: LocalSettingsFile, Target: target, Transform: tagCopiedSettings})
			continue
		}
		content, err := assets.ReadTemplate(assets.SettingsLocal)
		if err != nil {
			return err
		}
		q.Add(commands.WriteFile{Target: target, Content: labelInstallation(content, inst.Name())})
	}

	if err := c.scaffoldTemplate(q, CommonSettingsFile, assets.SettingsCommon); err != nil {
		return err
	}
	if err := c.scaffoldTemplate(q, GitignoreFile, assets.Gitignore); err != nil {
		return err
	}
	if !ws.Exists(BoxFile) {
		content, err := c.Boxfile()
		if err != nil {
			return err
		}
		q.Add(commands.WriteFile{Target: BoxFile, Content: content})
	}
	return nil
}

func (c *Compiler) scaffoldTemplate(q *commands.Queue, target, template string) error {
	if q.Workspace().Exists(target) {
		return nil
	}
	content, err := assets.ReadTemplate(template)
	if err != nil {
		return err
	}
	q.Add(commands.WriteFile{Target: target, Content: content})
	return nil
}

func localSettingsFile(installation string) string {
	return "settings.local." + installation + ".php"
}

func tagCopiedSettings(content string) string {
	if rest, ok := strings.CutPrefix(content, "<?php\n"); ok {
		return "<?php\n" + CopiedSettingsTag + "\n" + rest
	}
	return CopiedSettingsTag + "\n" + content
}

func labelInstallation(content, installation string) string {
	label := "// Installation: " + installation + "\n"
	if rest, ok := strings.CutPrefix(content, "<?php\n"); ok {
		return "<?php\n" + label + rest
	}
	return label + content
}

type boxfile struct {
	Version       string   `yaml:"version"`
	SharedFolders []string `yaml:"shared_folders"`
}

// Boxfile renders the hosting Boxfile sharing every site's files directory.
func (c *Compiler) Boxfile() (string, error) {
	box := boxfile{Version: "2.0"}
	for _, site := range c.project.Sites() {
		box.SharedFolders = append(box.SharedFolders, c.Docroot("sites", site, "files"))
	}
	data, err := yaml.Marshal(box)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", BoxFile, err)
	}
	return string(data), nil
}

// PostUpdate replaces the docroot .htaccess with per-installation variants
// and links the one of the current installation. It does nothing when
// .htaccess is missing or already a link.
func (c *Compiler) PostUpdate(q *commands.Queue) error {
	ws := q.Workspace()
	htaccess := c.HtaccessFile()
	if !ws.Exists(htaccess) || ws.IsSymlink(htaccess) {
		c.logger.Debug("htaccess needs no update", "path", htaccess)
		return nil
	}
	current, err := c.CurrentInstallation()
	if err != nil {
		return err
	}

	original := htaccess + ".original"
	q.Add(commands.MoveFile{Source: htaccess, Target: original})
	for _, inst := range c.project.Installations() {
		q.Add(commands.AlterFile{
			Source:    original,
			Target:    htaccess + "." + inst.Name(),
			Transform: inst.AlterHtaccess,
		})
	}
	q.Add(commands.CreateSymlink{Link: htaccess, Target: path.Base(htaccess) + "." + current.Name()})
	return nil
}

// PreUpdate restores the original .htaccess so that a code update can
// replace it.
func (c *Compiler) PreUpdate(q *commands.Queue) error {
	ws := q.Workspace()
	htaccess := c.HtaccessFile()
	original := htaccess + ".original"
	if !ws.IsSymlink(htaccess) || !ws.Exists(original) {
		c.logger.Debug("htaccess needs no restore", "path", htaccess)
		return nil
	}
	q.Add(commands.MoveFile{Source: original, Target: htaccess})
	return nil
}

// PostClone sets up a fresh clone for the current installation.
func (c *Compiler) PostClone(q *commands.Queue) error {
	current, err := c.CurrentInstallation()
	if err != nil {
		return err
	}
	if err := c.Scaffold(q, current.Name()); err != nil {
		return err
	}
	return c.PostUpdate(q)
}

// ActivateSite queues the site directory and its settings.php.
func (c *Compiler) ActivateSite(q *commands.Queue, site string) error {
	if !c.project.HasSite(site) {
		return fmt.Errorf("%w: %s is not declared by any installation", project.ErrUnknownSite, site)
	}
	q.Add(
		commands.EnsureDirectory{Dir: c.Docroot("sites", site)},
		commands.WriteFile{Target: c.Docroot("sites", site, SettingsFile), Content: c.SiteSettingsPHP(site)},
	)
	return nil
}
