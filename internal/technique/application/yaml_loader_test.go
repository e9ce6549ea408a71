package technique

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	technique "github.com/zjrosen/mise/internal/technique/domain"
	"github.com/zjrosen/mise/internal/templates"
)

func TestLoadCatalogFromYAML_BuiltIn(t *testing.T) {
	techniques, err := LoadCatalogFromYAML(templates.CatalogFS())
	require.NoError(t, err)

	byKey := make(map[string]*technique.Technique)
	for _, tech := range techniques {
		byKey[tech.Key()] = tech
		require.Equal(t, technique.SourceBuiltIn, tech.Source())
	}
	for _, key := range []string{"mix", "whisk", "chop", "preheat", "bake", "boil", "melt", "rest", "serve"} {
		require.Contains(t, byKey, key)
	}

	require.Equal(t, "techniques/prep/mix.tmpl", byKey["mix"].Template())
	require.Equal(t, "techniques/serve.tmpl", byKey["serve"].Template(), "falls back to shared template")
	require.Equal(t, []string{"heat", "oven"}, byKey["bake"].Labels())
}

func TestLoadCatalogFromYAML_ResolvesTemplatePaths(t *testing.T) {
	fsys := fstest.MapFS{
		"techniques/grill/catalog.yaml": {Data: []byte(`
techniques:
  - key: sear
    template: sear.tmpl
  - key: char
    template: shared.tmpl
  - key: smoke
    template: other/smoke.tmpl
  - key: broil
    template: missing.tmpl
`)},
		"techniques/grill/sear.tmpl": {Data: []byte("Sear {{name .Target}}.")},
		"techniques/shared.tmpl":     {Data: []byte("{{name .Target}}")},
	}

	techniques, err := LoadCatalogFromYAMLWithSource(fsys, technique.SourceUser)
	require.NoError(t, err)
	require.Len(t, techniques, 4)

	require.Equal(t, "techniques/grill/sear.tmpl", techniques[0].Template())
	require.Equal(t, "techniques/shared.tmpl", techniques[1].Template())
	require.Equal(t, "other/smoke.tmpl", techniques[2].Template())
	require.Equal(t, "techniques/grill/missing.tmpl", techniques[3].Template())
	require.Equal(t, technique.SourceUser, techniques[0].Source())
}

func TestLoadCatalogFromYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		msg  string
	}{
		{
			name: "no catalogs",
			fsys: fstest.MapFS{"techniques/readme.txt": {Data: []byte("hi")}},
			msg:  "no techniques found",
		},
		{
			name: "invalid yaml",
			fsys: fstest.MapFS{"techniques/a/catalog.yaml": {Data: []byte("techniques: [")}},
			msg:  "parse techniques/a/catalog.yaml",
		},
		{
			name: "missing template",
			fsys: fstest.MapFS{"techniques/a/catalog.yaml": {Data: []byte("techniques:\n  - key: mix\n")}},
			msg:  "template cannot be empty",
		},
		{
			name: "missing root",
			fsys: fstest.MapFS{},
			msg:  "scan technique catalogs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalogFromYAML(tt.fsys)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}
