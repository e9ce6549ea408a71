package templates

import (
	"embed"
	"io/fs"
)

// techniqueTemplates embeds the built-in technique catalogs and templates.
// The structure is:
//   - techniques/<group>/catalog.yaml
//   - techniques/<group>/*.tmpl (group-specific templates)
//   - techniques/*.tmpl (shared templates)
//
//go:embed techniques
var techniqueTemplates embed.FS

// CatalogFS returns the embedded filesystem containing technique catalogs and templates.
func CatalogFS() fs.FS {
	return techniqueTemplates
}
