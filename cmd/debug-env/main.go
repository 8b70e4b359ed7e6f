package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/supreme-majesty/mmm-builder/pkg/environment"
	"github.com/supreme-majesty/mmm-builder/pkg/project"
)

var (
	projectFile string

	// detect is replaceable in tests.
	detect = environment.Detect
)

var rootCmd = &cobra.Command{
	Use:   "debug-env [root]",
	Short: "Print the environment id of this machine and the installation it selects",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		return report(cmd.OutOrStdout(), afero.NewOsFs(), root)
	},
}

func init() {
	rootCmd.Flags().StringVar(&projectFile, "project", "mmm.yaml", "project file, relative to the root")
}

func report(w io.Writer, fs afero.Fs, root string) error {
	p, err := project.Load(fs, filepath.Join(root, projectFile))
	if err != nil {
		return err
	}
	env, err := detect(filepath.Join(root, p.DocrootDir))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Environment:", env.ID)

	ids := p.InstallationIDs()
	keys := make([]string, 0, len(ids))
	for id := range ids {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	for _, id := range keys {
		mark := " "
		if env.Match(id) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s %s\n", mark, ids[id], id)
	}

	if name, ok := environment.Select(env, ids); ok {
		fmt.Fprintln(w, "Installation:", name)
	} else {
		fmt.Fprintln(w, "No installation matches this environment.")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
