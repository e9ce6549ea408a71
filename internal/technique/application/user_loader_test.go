package technique

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	technique "github.com/zjrosen/mise/internal/technique/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadUserCatalogFromDir_Missing(t *testing.T) {
	techniques, fsys, err := LoadUserCatalogFromDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Nil(t, techniques)
	require.Nil(t, fsys)

	techniques, fsys, err = LoadUserCatalogFromDir("")
	require.NoError(t, err)
	require.Nil(t, techniques)
	require.Nil(t, fsys)
}

func TestLoadUserCatalogFromDir_Loads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "techniques", "mine", "catalog.yaml"), `
techniques:
  - key: flambe
    name: Flambé
    template: flambe.tmpl
    labels: [heat, show]
`)
	writeFile(t, filepath.Join(dir, "techniques", "mine", "flambe.tmpl"), "Flambé {{name .Target}}.")

	techniques, fsys, err := LoadUserCatalogFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, fsys)
	require.Len(t, techniques, 1)
	require.Equal(t, "flambe", techniques[0].Key())
	require.Equal(t, technique.SourceUser, techniques[0].Source())
	require.Equal(t, "techniques/mine/flambe.tmpl", techniques[0].Template())
}

func TestLoadUserCatalogFromDir_InvalidIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "techniques", "bad", "catalog.yaml"), "techniques: [")

	techniques, fsys, err := LoadUserCatalogFromDir(dir)
	require.NoError(t, err)
	require.Nil(t, techniques)
	require.NotNil(t, fsys)
}
