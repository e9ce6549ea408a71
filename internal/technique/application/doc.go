// Package technique implements the application layer of the technique
// catalog: loading catalogs from YAML, merging user overrides and rendering
// instructions through text/template.
//
// # Catalog Layout
//
// Built-in and user catalogs share one layout rooted at an fs.FS:
//
//	techniques/<group>/catalog.yaml
//	techniques/<group>/<name>.tmpl
//	techniques/<name>.tmpl          (shared templates)
//
// A template path in catalog.yaml without a slash is resolved against the
// group directory first, then against techniques/.
//
// # Templates
//
// Templates execute against a TemplateContext built from an instruction's
// resolved parameters. Besides the text/template builtins they can call:
//
//	name    display name of an item, or a joined list of names
//	list    joins names as "a, b and c"
//	amount  "200 grams of flour"; falls back to the name when no quantity is known
package technique
