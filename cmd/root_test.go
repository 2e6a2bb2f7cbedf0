package cmd

import (
	"os"
	"path/filepath"
	"testing"

	simpepub "github.com/simp-lee/epub"
	"github.com/spf13/pflag"

	"github.com/brogergvhs/ebangla2epub/internal/config"
	"github.com/brogergvhs/ebangla2epub/internal/providers/ebangla"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeRoot runs the CLI with args in an isolated config home and restores
// every flag afterwards.
func executeRoot(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvCookie, "")

	t.Cleanup(func() {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		rootCmd.Flags().VisitAll(reset)
		rootCmd.PersistentFlags().VisitAll(reset)
		configRemoveCmd.Flags().VisitAll(reset)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestRoot_ConvertsWithOutputFlag(t *testing.T) {
	srv := newLibrary(t)
	out := filepath.Join(t.TempDir(), "mine.epub")

	err := executeRoot(t, srv.URL+"/books/small/", "--any-host", "--ignore-config", "--retries", "1", "--list", "1,3", "-o", out)
	require.NoError(t, err)

	book, err := simpepub.Open(out)
	require.NoError(t, err)
	defer func() { _ = book.Close() }()

	var toc []string
	for _, item := range book.TOC() {
		toc = append(toc, item.Title)
	}
	assert.Contains(t, toc, "Book Information")
	assert.Contains(t, toc, "এক")
	assert.Contains(t, toc, "তিন")
	assert.NotContains(t, toc, "দুই")
}

func TestRoot_RejectsForeignHost(t *testing.T) {
	srv := newLibrary(t)
	dir := t.TempDir()

	err := executeRoot(t, srv.URL+"/books/small/", "--ignore-config", "--output", filepath.Join(dir, "x.epub"))
	assert.ErrorIs(t, err, ebangla.ErrForeignHost)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoot_RequiresURL(t *testing.T) {
	assert.Error(t, executeRoot(t))
}

func TestConfigSubcommands(t *testing.T) {
	require.NoError(t, executeRoot(t, "version"))

	t.Setenv(config.EnvHome, t.TempDir())
	_, err := config.InitDefaultConfig()
	require.NoError(t, err)

	rootCmd.SetArgs([]string{"config", "add", "work"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"config", "switch", "work"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"config", "rename", "work", "home"})
	require.NoError(t, rootCmd.Execute())

	label, err := config.CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "home", label)

	rootCmd.SetArgs([]string{"config", "reset"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"config"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"config", "list"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"config", "remove", "home", "--force"})
	require.NoError(t, rootCmd.Execute())

	list, err := config.ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, config.DefaultLabel, list[0].Label)
	assert.True(t, list[0].Active)

	rootCmd.SetArgs([]string{"config", "rename", "missing", "other"})
	assert.ErrorIs(t, rootCmd.Execute(), config.ErrNoSuchConfig)
}
