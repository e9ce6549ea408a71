package technique

import "errors"

// Builder errors
var (
	ErrEmptyKey      = errors.New("technique key cannot be empty")
	ErrEmptyTemplate = errors.New("technique template cannot be empty")
)

// Builder provides a fluent API for creating techniques
type Builder struct {
	key         string
	name        string
	description string
	template    string
	labels      []string
	parameters  []string
	source      Source
}

// NewBuilder creates a new technique builder
func NewBuilder(key string) *Builder {
	return &Builder{key: key}
}

// Name sets the display name
func (b *Builder) Name(n string) *Builder {
	b.name = n
	return b
}

// Description sets the description
func (b *Builder) Description(d string) *Builder {
	b.description = d
	return b
}

// Template sets the template path
func (b *Builder) Template(t string) *Builder {
	b.template = t
	return b
}

// Labels sets the labels used for filtering
func (b *Builder) Labels(labels ...string) *Builder {
	b.labels = labels
	return b
}

// Parameters sets the documented parameter names
func (b *Builder) Parameters(names ...string) *Builder {
	b.parameters = names
	return b
}

// Source sets where the technique was defined
func (b *Builder) Source(s Source) *Builder {
	b.source = s
	return b
}

// Build creates the technique, validating required fields
func (b *Builder) Build() (*Technique, error) {
	if b.key == "" {
		return nil, ErrEmptyKey
	}
	if b.template == "" {
		return nil, ErrEmptyTemplate
	}
	return newTechnique(b.key, b.name, b.description, b.template, b.labels, b.parameters, b.source), nil
}
