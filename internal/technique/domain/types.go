package technique

// Source indicates where a technique was defined.
type Source int

const (
	// SourceBuiltIn indicates a technique bundled with the application.
	SourceBuiltIn Source = iota
	// SourceUser indicates a technique from the user's configuration directory.
	SourceUser
)

// String returns a human-readable representation of the Source.
func (s Source) String() string {
	switch s {
	case SourceBuiltIn:
		return "built-in"
	case SourceUser:
		return "user"
	default:
		return "unknown"
	}
}

// Technique is a catalog entry.
type Technique struct {
	key         string   // e.g., "mix"
	name        string   // e.g., "Mix"
	description string   // e.g., "Combine ingredients in a vessel"
	template    string   // template path within the catalog FS (e.g., "techniques/prep/mix.tmpl")
	labels      []string // e.g., ["prep", "cold"]
	parameters  []string // parameter names the template reads, informational
	source      Source
}

func newTechnique(key, name, description, template string, labels, parameters []string, source Source) *Technique {
	return &Technique{
		key:         key,
		name:        name,
		description: description,
		template:    template,
		labels:      labels,
		parameters:  parameters,
		source:      source,
	}
}

// Key returns the technique key
func (t *Technique) Key() string {
	return t.key
}

// Name returns the display name, falling back to the key
func (t *Technique) Name() string {
	if t.name == "" {
		return t.key
	}
	return t.name
}

// Description returns the description
func (t *Technique) Description() string {
	return t.description
}

// Template returns the template path
func (t *Technique) Template() string {
	return t.template
}

// Labels returns the technique labels
func (t *Technique) Labels() []string {
	return t.labels
}

// Parameters returns the documented parameter names.
func (t *Technique) Parameters() []string {
	return t.parameters
}

// Source returns where the technique was defined.
func (t *Technique) Source() Source {
	return t.source
}
