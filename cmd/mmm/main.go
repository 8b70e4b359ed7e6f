package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/supreme-majesty/mmm-builder/pkg/commands"
	"github.com/supreme-majesty/mmm-builder/pkg/compiler"
	"github.com/supreme-majesty/mmm-builder/pkg/environment"
	"github.com/supreme-majesty/mmm-builder/pkg/events"
	"github.com/supreme-majesty/mmm-builder/pkg/project"
)

var rootCmd = &cobra.Command{
	Use:           "mmm",
	Short:         "Multi-installation multisite builder",
	Long:          `Compiles Drupal settings, sites.php and drush aliases for every installation of a project.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfig(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger = SetupLogger(cfg, cmd.ErrOrStderr())
		return nil
	},
}

var Version = "dev"

var (
	configFile string
	cfg        *Config
	logger     = slog.New(slog.DiscardHandler)

	// detectEnvironment is replaceable in tests.
	detectEnvironment = func(docroot string) (environment.Matcher, error) {
		return environment.Detect(docroot)
	}
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Write sites.php, drush aliases and the settings dispatch files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQueue(cmd, func(c *compiler.Compiler, q *commands.Queue) error {
			return c.Compile(q)
		})
	},
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold <installation>",
	Short: "Create the files a repository needs, seeding local settings for an installation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQueue(cmd, func(c *compiler.Compiler, q *commands.Queue) error {
			return c.Scaffold(q, args[0])
		})
	},
}

var preUpdateCmd = &cobra.Command{
	Use:   "pre-update",
	Short: "Restore the original .htaccess before a code update",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQueue(cmd, func(c *compiler.Compiler, q *commands.Queue) error {
			return c.PreUpdate(q)
		})
	},
}

var postUpdateCmd = &cobra.Command{
	Use:   "post-update",
	Short: "Split .htaccess per installation and link the current one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQueue(cmd, func(c *compiler.Compiler, q *commands.Queue) error {
			return c.PostUpdate(q)
		})
	},
}

var postCloneCmd = &cobra.Command{
	Use:   "post-clone",
	Short: "Set up a fresh clone for the installation of this environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQueue(cmd, func(c *compiler.Compiler, q *commands.Queue) error {
			return c.PostClone(q)
		})
	},
}

var activateSiteCmd = &cobra.Command{
	Use:   "activate-site <site>",
	Short: "Create the directory and settings.php of a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQueue(cmd, func(c *compiler.Compiler, q *commands.Queue) error {
			return c.ActivateSite(q, args[0])
		})
	},
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the host to site routing and databases of all installations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, inst := range p.Installations() {
			fmt.Fprintf(out, "%s (%s)\n", inst.Name(), inst.HostRootID())
			for _, r := range inst.URIToSiteMap() {
				fmt.Fprintf(out, "  %s -> %s\n", r.Host, r.Site)
			}
			for _, site := range inst.DbSites() {
				creds, _ := inst.DbCredentialsFor(site)
				if creds.Password != "" {
					creds.Password = "****"
				}
				fmt.Fprintf(out, "  db %s: %s\n", site, creds.DSN())
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "mmm %s\n", Version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "tool config file")
	rootCmd.PersistentFlags().String("project", "mmm.yaml", "project file, relative to the root")
	rootCmd.PersistentFlags().String("root", ".", "repository root")
	rootCmd.PersistentFlags().BoolP("simulate", "n", false, "record results without touching the filesystem")
	rootCmd.PersistentFlags().Bool("diff", false, "simulate and print the changes")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(scaffoldCmd)
	rootCmd.AddCommand(preUpdateCmd)
	rootCmd.AddCommand(postUpdateCmd)
	rootCmd.AddCommand(postCloneCmd)
	rootCmd.AddCommand(activateSiteCmd)
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(versionCmd)
}

func projectPath() string {
	if filepath.IsAbs(cfg.ProjectFile) {
		return cfg.ProjectFile
	}
	return filepath.Join(cfg.Root, cfg.ProjectFile)
}

func loadProject() (*project.Project, error) {
	p, err := project.Load(afero.NewOsFs(), projectPath())
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// runQueue loads the project, lets build fill a queue and executes it.
func runQueue(cmd *cobra.Command, build func(*compiler.Compiler, *commands.Queue) error) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	env, err := detectEnvironment(filepath.Join(cfg.Root, p.DocrootDir))
	if err != nil {
		return fmt.Errorf("failed to detect environment: %w", err)
	}
	logger.Debug("environment detected", "env", env)

	bus := events.NewBus()
	bus.SubscribeAll(logEvent)

	c := compiler.New(p, env, compiler.WithLogger(logger))
	q := commands.NewQueue(commands.NewOsWorkspace(cfg.Root), bus)
	if err := build(c, q); err != nil {
		return err
	}

	results := commands.Results{}
	if err := q.Execute(results, cfg.Simulate); err != nil {
		return err
	}
	if cfg.Diff {
		return printChanges(cmd.OutOrStdout(), results, q.Workspace())
	}
	return nil
}

func logEvent(e events.Event) {
	switch p := e.Payload.(type) {
	case events.CommandPayload:
		if p.Err != nil {
			logger.Error("command failed", "command", p.Description, "error", p.Err)
			return
		}
		logger.Info(string(e.Type), "command", p.Description)
	case events.QueuePayload:
		logger.Debug("queue finished", "commands", p.Commands, "simulate", p.Simulate)
	}
}

func printChanges(w io.Writer, results commands.Results, ws commands.Workspace) error {
	changes, err := results.Preview(ws)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Fprintln(w, "No changes.")
		return nil
	}
	for _, ch := range changes {
		fmt.Fprintf(w, "--- %s\n%s\n", ch.Path, ch.Diff)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
