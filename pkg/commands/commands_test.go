package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supreme-majesty/mmm-builder/pkg/events"
)

func seed(t *testing.T, fs afero.Fs, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0o644))
	}
}

func htaccessQueue(ws Workspace) *Queue {
	q := NewQueue(ws, nil)
	q.Add(
		EnsureDirectory{Dir: "private/prod"},
		WriteFile{Target: "private/prod/README", Content: "private files\n"},
		MoveFile{Source: "docroot/.htaccess", Target: "docroot/.htaccess.original"},
		AlterFile{
			Source:    "docroot/.htaccess.original",
			Target:    "docroot/.htaccess.prod",
			Transform: strings.ToUpper,
		},
		CopyFile{Source: "docroot/.htaccess.prod", Target: "docroot/.htaccess.copy"},
	)
	return q
}

func TestQueue_SimulateMatchesReal(t *testing.T) {
	files := map[string]string{"docroot/.htaccess": "RewriteEngine on\n"}

	simFs := afero.NewMemMapFs()
	seed(t, simFs, "/repo", files)
	realFs := afero.NewMemMapFs()
	seed(t, realFs, "/repo", files)

	simulated := Results{}
	require.NoError(t, htaccessQueue(NewWorkspace(simFs, "/repo")).Execute(simulated, true))
	actual := Results{}
	require.NoError(t, htaccessQueue(NewWorkspace(realFs, "/repo")).Execute(actual, false))

	if diff := cmp.Diff(actual, simulated); diff != "" {
		t.Errorf("simulated results differ from real results (-actual +simulated):\n%s", diff)
	}
	assert.Equal(t, Result{Kind: KindFile, Content: "REWRITEENGINE ON\n"}, actual["docroot/.htaccess.prod"])
	assert.Equal(t, Result{Kind: KindRemoved}, actual["docroot/.htaccess"])

	// The simulated filesystem is untouched.
	ws := NewWorkspace(simFs, "/repo")
	assert.True(t, ws.Exists("docroot/.htaccess"))
	assert.False(t, ws.Exists("docroot/.htaccess.original"))
	assert.False(t, ws.Exists("private/prod"))

	// The real one is not.
	ws = NewWorkspace(realFs, "/repo")
	got, err := ws.ReadFile("docroot/.htaccess.copy")
	require.NoError(t, err)
	assert.Equal(t, "REWRITEENGINE ON\n", got)
	assert.False(t, ws.Exists("docroot/.htaccess"))
}

func symlinkQueue(ws Workspace) *Queue {
	q := NewQueue(ws, nil)
	q.Add(
		CreateSymlink{Link: "docroot", Target: "web"},
		EnsureDirectory{Dir: "docroot/sites/default"},
		MoveFile{Source: "docroot/.htaccess", Target: "docroot/.htaccess.original"},
		AlterFile{
			Source:    "docroot/.htaccess.original",
			Target:    "docroot/.htaccess.prod",
			Transform: func(s string) string { return s + "RewriteBase /\n" },
		},
		CreateSymlink{Link: "docroot/.htaccess", Target: ".htaccess.prod"},
		CopyFile{Source: "docroot/.htaccess", Target: "htaccess.txt"},
	)
	return q
}

func TestQueue_SimulateMatchesReal_Symlinks(t *testing.T) {
	files := map[string]string{"web/.htaccess": "RewriteEngine on\n"}

	simRoot, realRoot := t.TempDir(), t.TempDir()
	fs := afero.NewOsFs()
	seed(t, fs, simRoot, files)
	seed(t, fs, realRoot, files)

	simulated := Results{}
	require.NoError(t, symlinkQueue(NewOsWorkspace(simRoot)).Execute(simulated, true))
	actual := Results{}
	require.NoError(t, symlinkQueue(NewOsWorkspace(realRoot)).Execute(actual, false))

	if diff := cmp.Diff(actual, simulated); diff != "" {
		t.Errorf("simulated results differ from real results (-actual +simulated):\n%s", diff)
	}
	assert.Equal(t, "RewriteEngine on\nRewriteBase /\n", actual["htaccess.txt"].Content)

	target, err := os.Readlink(filepath.Join(realRoot, "docroot", ".htaccess"))
	require.NoError(t, err)
	assert.Equal(t, ".htaccess.prod", target)
	target, err = os.Readlink(filepath.Join(realRoot, "docroot"))
	require.NoError(t, err)
	assert.Equal(t, "web", target)
	assert.DirExists(t, filepath.Join(realRoot, "web", "sites", "default"))

	_, err = os.Lstat(filepath.Join(simRoot, "docroot"))
	assert.True(t, os.IsNotExist(err))
}

func TestQueue_AbortsOnFirstFailure(t *testing.T) {
	for _, simulate := range []bool{true, false} {
		fs := afero.NewMemMapFs()
		q := NewQueue(NewWorkspace(fs, "/repo"), nil)
		q.Add(
			EnsureDirectory{Dir: "."},
			WriteFile{Target: "a.txt", Content: "a"},
			CopyFile{Source: "missing.txt", Target: "b.txt"},
			WriteFile{Target: "c.txt", Content: "c"},
		)

		results := Results{}
		err := q.Execute(results, simulate)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "command 3 (copy missing.txt to b.txt)")
		assert.Contains(t, results, "a.txt")
		assert.NotContains(t, results, "b.txt")
		assert.NotContains(t, results, "c.txt")

		exists, _ := afero.Exists(fs, "/repo/a.txt")
		assert.Equal(t, !simulate, exists)
	}
}

func TestWriteFile_RequiresParent(t *testing.T) {
	for _, simulate := range []bool{true, false} {
		ws := NewWorkspace(afero.NewMemMapFs(), "/repo")
		err := WriteFile{Target: "sites/default/settings.php", Content: "<?php\n"}.Execute(ws, Results{}, simulate)
		assert.ErrorContains(t, err, "parent directory does not exist")
	}
}

func TestWriteFile_ParentFromEnsureDirectory(t *testing.T) {
	ws := NewWorkspace(afero.NewMemMapFs(), "/repo")
	q := NewQueue(ws, nil)
	q.Add(
		EnsureDirectory{Dir: "docroot/sites/all/drush"},
		WriteFile{Target: "docroot/sites/sites.php", Content: "<?php\n"},
	)
	assert.NoError(t, q.Execute(Results{}, true))
}

func TestEnsureDirectory_FileInTheWay(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, "/repo", map[string]string{"private": "not a dir"})

	err := EnsureDirectory{Dir: "private"}.Execute(NewWorkspace(fs, "/repo"), Results{}, true)
	assert.ErrorContains(t, err, "a file is in the way")
}

func TestResults_Preview(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, "/repo", map[string]string{
		"settings.php":  "<?php\n$a = 1;\n",
		"unchanged.php": "<?php\n",
		"private/.keep": "",
	})
	ws := NewWorkspace(fs, "/repo")

	results := Results{
		"settings.php":  {Kind: KindFile, Content: "<?php\n$a = 2;\n"},
		"unchanged.php": {Kind: KindFile, Content: "<?php\n"},
		"crontab":       {Kind: KindFile, Content: "# cron\n"},
		"private":       {Kind: KindDirectory},
	}

	changes, err := results.Preview(ws)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "crontab", changes[0].Path)
	assert.Equal(t, Kind(""), changes[0].Before.Kind)
	assert.Contains(t, changes[0].Diff, "# cron")

	assert.Equal(t, "settings.php", changes[1].Path)
	assert.Contains(t, changes[1].Diff, "$a = 1;")
	assert.Contains(t, changes[1].Diff, "$a = 2;")
}

func TestQueue_PublishesEvents(t *testing.T) {
	bus := events.NewBus()
	var simulated []string
	var finished events.QueuePayload
	bus.Subscribe(events.CommandSimulated, func(e events.Event) {
		simulated = append(simulated, e.Payload.(events.CommandPayload).Path)
	})
	bus.Subscribe(events.QueueFinished, func(e events.Event) {
		finished = e.Payload.(events.QueuePayload)
	})

	q := NewQueue(NewWorkspace(afero.NewMemMapFs(), "/repo"), bus)
	q.Add(
		EnsureDirectory{Dir: "private/shared"},
		WriteFile{Target: "crontab", Content: ""},
	)
	require.NoError(t, q.Execute(Results{}, true))

	assert.Equal(t, []string{"private/shared", "crontab"}, simulated)
	assert.Equal(t, events.QueuePayload{Commands: 2, Simulate: true}, finished)
}
