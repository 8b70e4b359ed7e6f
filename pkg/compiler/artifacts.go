package compiler

import (
	"regexp"

	"github.com/supreme-majesty/mmm-builder/pkg/environment"
	"github.com/supreme-majesty/mmm-builder/pkg/project"
	"github.com/supreme-majesty/mmm-builder/pkg/render"
)

const (
	autogenerated = "MMM autogenerated"
	runtimeClass  = `clever_systems\mmm_runtime\Runtime`
	environmentFn = "Runtime::getEnvironment()"
)

func newFile(useRuntime bool) *render.File {
	f := render.NewFile().AddHeader(render.Comment(autogenerated))
	if useRuntime {
		f.AddHeader(render.Use(runtimeClass))
	}
	return f
}

func match(id string) render.Expr {
	return render.Call(environmentFn+"->match", render.String(id))
}

func section(inst *project.Installation) []render.Statement {
	return []render.Statement{render.Blank(), render.Comment("Installation: " + inst.Name())}
}

// SitesPHP renders sites.php, mapping every host name to its site.
func (c *Compiler) SitesPHP() string {
	f := newFile(false)
	for _, inst := range c.project.Installations() {
		f.AddBody(section(inst)...)
		for _, r := range inst.URIToSiteMap() {
			f.AddBody(render.Assign(render.Var("sites").Index(r.Host), render.String(r.Site)))
		}
	}
	return f.String()
}

// AliasesPHP renders the drush aliases. Remote fields are added at runtime
// when drush runs on another host than the alias's own.
func (c *Compiler) AliasesPHP() string {
	f := newFile(true)
	aliases := render.Var("aliases")
	for _, inst := range c.project.Installations() {
		f.AddBody(section(inst)...)
		// None never matches, so every alias comes with its remote fields.
		for _, a := range inst.Aliases(environment.None{}) {
			if a.SiteList != nil {
				f.AddBody(render.Assign(aliases.Index(a.Name), render.Array{
					{Key: render.String("site-list"), Value: render.List(a.SiteList...)},
				}))
				continue
			}
			f.AddBody(
				render.Assign(aliases.Index(a.Name), render.Map(
					[2]string{"uri", a.URI},
					[2]string{"root", a.Root},
					[2]string{"#mmm-local-host-id", a.LocalHostID},
				)),
				render.If(render.Not(match(a.LocalHostID)),
					render.Assign(aliases.Index(a.Name, "remote-user"), render.String(a.RemoteUser)),
					render.Assign(aliases.Index(a.Name, "remote-host"), render.String(a.RemoteHost)),
				),
			)
		}
		f.AddBody(render.If(match(inst.HostRootID()),
			render.Assign(aliases.Index(project.ThisAlias), aliases.Index(inst.Name())),
		))
	}
	return f.String()
}

// BaseURLsPHP renders settings.baseurl.php. Drupal 7 gets $base_url chosen
// from the request host; later versions get trusted host patterns.
func (c *Compiler) BaseURLsPHP() string {
	d7 := c.project.Version() == 7
	f := newFile(true)
	if d7 {
		f.AddHeader(render.RawStatement(`$host = strtolower(preg_replace('/:\d+$/', '', isset($_SERVER['HTTP_HOST']) ? $_SERVER['HTTP_HOST'] : ''));`))
	}
	settings := render.Var(c.project.SettingsVariable())
	for _, inst := range c.project.Installations() {
		f.AddBody(section(inst)...)
		for _, site := range inst.Sites() {
			block := render.If(match(inst.SiteID(site)),
				render.Assign(settings.Index("mmm", "installation"), render.String(inst.Name())),
			)
			seenHost := make(map[string]bool)
			for _, v := range inst.URIVariants(site) {
				if d7 {
					block.Add(render.If(render.Identical(render.Var("host"), render.String(v.Host)),
						render.Assign(render.Var("base_url"), render.String(v.BaseURL)),
						render.Return(),
					))
					continue
				}
				if seenHost[v.Host] {
					continue
				}
				seenHost[v.Host] = true
				block.Add(render.Assign(
					render.Var("settings").Index("trusted_host_patterns").Append(),
					render.String("^"+regexp.QuoteMeta(v.Host)+"$"),
				))
			}
			block.Add(render.Return())
			f.AddBody(block)
		}
	}
	f.AddFooter(
		render.Blank(),
		render.Do(render.Call("trigger_error",
			render.String("MMM: no installation matches this environment."),
			render.Raw("E_USER_ERROR"),
		)),
	)
	return f.String()
}

// DatabasesPHP renders settings.databases.php.
func (c *Compiler) DatabasesPHP() string {
	f := newFile(true)
	for _, inst := range c.project.Installations() {
		f.AddBody(section(inst)...)
		for _, site := range inst.DbSites() {
			creds, _ := inst.DbCredentialsFor(site)
			fields := creds.Filtered()
			pairs := make([][2]string, 0, len(fields))
			for _, fld := range fields {
				pairs = append(pairs, [2]string{fld.Name, fld.Value})
			}
			f.AddBody(render.If(match(inst.SiteID(site)),
				render.Assign(render.Var("databases").Index("default", "default"), render.Map(pairs...)),
				render.Return(),
			))
		}
	}
	return f.String()
}

// SettingsPHP renders the repository settings.php every site includes.
func (c *Compiler) SettingsPHP() string {
	dir := render.Raw("__DIR__")
	inDir := func(name string) render.Expr { return render.Concat(dir, render.String("/"+name)) }

	installations := render.Array{}
	for _, inst := range c.project.Installations() {
		installations = append(installations, render.Entry{
			Key:   render.String(inst.HostRootID()),
			Value: render.String(inst.Name()),
		})
	}
	current := render.Var("mmm_installation")

	f := render.NewFile().
		AddHeader(
			render.Comment("MMM settings file."),
			render.Require(inDir("vendor/autoload.php")),
			render.Use(runtimeClass),
		).
		AddBody(
			render.Blank(),
			render.Require(inDir(BaseURLFile)),
			render.Require(inDir(DatabasesFile)),
			render.Do(render.Call(environmentFn+"->settings")),
			render.Assign(current, render.Call(environmentFn+"->select", installations)),
			render.Include(inDir(CommonSettingsFile)),
			render.If(current,
				render.Include(render.Concat(
					render.Concat(dir, render.String("/settings.local.")),
					render.Concat(current, render.String(".php")),
				)),
			),
		)
	return f.String()
}

// SiteSettingsPHP renders sites/<site>/settings.php, which defers to the
// repository settings.php.
func (c *Compiler) SiteSettingsPHP(site string) string {
	rel := relativeTo(c.Docroot("sites", site), SettingsFile)
	return render.NewFile().
		AddHeader(render.Comment(autogenerated)).
		AddBody(render.Require(render.Concat(render.Raw("__DIR__"), render.String("/"+rel)))).
		String()
}
