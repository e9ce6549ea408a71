package technique

import (
	"errors"
	"sort"
)

// Catalog errors
var (
	ErrNotFound     = errors.New("technique not found")
	ErrDuplicateKey = errors.New("duplicate technique key")
	ErrNilTechnique = errors.New("technique cannot be nil")
)

// Catalog holds all techniques
type Catalog struct {
	techniques []*Technique
}

// NewCatalog creates a new empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		techniques: make([]*Technique, 0),
	}
}

// Add adds a technique to the catalog
func (c *Catalog) Add(t *Technique) error {
	if t == nil {
		return ErrNilTechnique
	}
	if c.indexOf(t.Key()) >= 0 {
		return ErrDuplicateKey
	}
	c.techniques = append(c.techniques, t)
	return nil
}

// Put adds a technique, replacing any technique with the same key in place.
// It reports whether a technique was replaced.
func (c *Catalog) Put(t *Technique) (bool, error) {
	if t == nil {
		return false, ErrNilTechnique
	}
	if i := c.indexOf(t.Key()); i >= 0 {
		c.techniques[i] = t
		return true, nil
	}
	c.techniques = append(c.techniques, t)
	return false, nil
}

func (c *Catalog) indexOf(key string) int {
	for i, existing := range c.techniques {
		if existing.Key() == key {
			return i
		}
	}
	return -1
}

// List returns all techniques
func (c *Catalog) List() []*Technique {
	return c.techniques
}

// GetByKey returns a technique by key
func (c *Catalog) GetByKey(key string) (*Technique, error) {
	if i := c.indexOf(key); i >= 0 {
		return c.techniques[i], nil
	}
	return nil, ErrNotFound
}

// GetByLabels returns techniques that have ALL specified labels (AND logic)
func (c *Catalog) GetByLabels(labels ...string) []*Technique {
	if len(labels) == 0 {
		return c.techniques
	}
	result := make([]*Technique, 0)
	for _, t := range c.techniques {
		if hasAllLabels(t.Labels(), labels) {
			result = append(result, t)
		}
	}
	return result
}

// hasAllLabels checks if have contains all of want
func hasAllLabels(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, l := range have {
		set[l] = true
	}
	for _, l := range want {
		if !set[l] {
			return false
		}
	}
	return true
}

// Labels returns all unique labels across all techniques, sorted alphabetically
func (c *Catalog) Labels() []string {
	set := make(map[string]bool)
	for _, t := range c.techniques {
		for _, label := range t.Labels() {
			set[label] = true
		}
	}

	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
