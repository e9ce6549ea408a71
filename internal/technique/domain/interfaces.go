package technique

// CatalogProvider defines read-only access to a technique catalog.
type CatalogProvider interface {
	// List returns all techniques in the catalog.
	List() []*Technique

	// GetByKey returns a technique by key.
	// Returns ErrNotFound if no technique matches.
	GetByKey(key string) (*Technique, error)

	// GetByLabels returns techniques that have ALL specified labels (AND logic).
	// If no labels are provided, returns all techniques.
	GetByLabels(labels ...string) []*Technique

	// Labels returns all unique labels across all techniques, sorted alphabetically.
	Labels() []string
}

// Compile-time check that Catalog implements CatalogProvider.
var _ CatalogProvider = (*Catalog)(nil)
