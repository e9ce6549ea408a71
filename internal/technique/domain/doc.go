// Package technique implements the domain layer of the technique catalog.
//
// A Technique is a named cooking operation (mix, bake, preheat) with a text
// template that turns a resolved instruction into a sentence. This package
// holds only the catalog model: it has no knowledge of YAML files, template
// engines or caches, which live in internal/technique/application.
//
// # Core Types
//
// Technique carries a key, a display name, a description, a template filename,
// labels, the names of the parameters it reads and its Source. Use Builder for
// construction.
//
// Catalog is the collection type. It provides:
//   - Add/Put/List for managing techniques
//   - GetByKey for lookup
//   - GetByLabels for label-based filtering (AND logic)
//   - Labels for discovering all available labels
//
// CatalogProvider is the read-only interface Catalog implements.
package technique
