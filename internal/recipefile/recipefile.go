// Package recipefile reads recipe documents written in YAML.
//
// A document looks like:
//
//	id: pancakes
//	name: Pancakes
//	ingredients:
//	  flour: 200 g              # amount
//	  eggs: 2                   # count
//	  milk: {quantity: 300, units: ml, name: Whole milk, tags: [wet]}
//	equipment:
//	  bowl: {}
//	  pan: Frying pan           # display name
//	method:
//	  - Heat the pan            # text step
//	  - technique: mix
//	    parameters: {target: bowl, ingredients: [flour, eggs, milk], products: batter}
//
// Entity mappings keep their document order.
package recipefile

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mise/internal/quantity"
	"github.com/zjrosen/mise/internal/recipe"
)

// ErrInvalidDocument is wrapped by every structural error in a document.
var ErrInvalidDocument = errors.New("invalid recipe document")

// TechniqueLookup finds the technique a method step names.
type TechniqueLookup interface {
	Technique(key string) (recipe.Technique, error)
}

// Document is a parsed recipe document.
type Document struct {
	ID          string
	Name        string
	Author      string
	Description string
	Ingredients []recipe.EntitySpec
	Equipment   []recipe.EntitySpec
	Products    []recipe.EntitySpec
	Method      []Step
}

// Step is one method entry. Text steps have no technique.
type Step struct {
	Line       int
	Text       string
	Technique  string
	Parameters map[string]any
}

// IsText reports whether the step is plain text.
func (s Step) IsText() bool { return s.Technique == "" && s.Parameters == nil }

type rawDocument struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Author      string      `yaml:"author"`
	Description string      `yaml:"description"`
	Ingredients yaml.Node   `yaml:"ingredients"`
	Equipment   yaml.Node   `yaml:"equipment"`
	Products    yaml.Node   `yaml:"products"`
	Method      []yaml.Node `yaml:"method"`
}

// Parse reads a document without resolving techniques.
func Parse(r io.Reader) (*Document, error) {
	var raw rawDocument
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	doc := &Document{
		ID:          raw.ID,
		Name:        raw.Name,
		Author:      raw.Author,
		Description: raw.Description,
	}

	var err error
	if doc.Ingredients, err = decodeEntities(&raw.Ingredients, ingredientFromScalar); err != nil {
		return nil, fmt.Errorf("ingredients: %w", err)
	}
	if doc.Equipment, err = decodeEntities(&raw.Equipment, namedFromScalar); err != nil {
		return nil, fmt.Errorf("equipment: %w", err)
	}
	if doc.Products, err = decodeEntities(&raw.Products, namedFromScalar); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}

	for i := range raw.Method {
		step, err := decodeStep(&raw.Method[i])
		if err != nil {
			return nil, fmt.Errorf("method step %d: %w", i+1, err)
		}
		doc.Method = append(doc.Method, step)
	}

	return doc, nil
}

// Load parses a document and builds the recipe it describes.
func Load(r io.Reader, techniques TechniqueLookup, policy recipe.ConflictPolicy) (*recipe.Recipe, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return doc.Build(techniques, policy)
}

// Build resolves the document's techniques and constructs the recipe. An
// unknown technique key is an error. A step without a technique is kept and
// fails when rendered.
func (d *Document) Build(techniques TechniqueLookup, policy recipe.ConflictPolicy) (*recipe.Recipe, error) {
	method := make([]*recipe.Instruction, 0, len(d.Method))
	for i, step := range d.Method {
		if step.IsText() {
			method = append(method, recipe.Text(step.Text))
			continue
		}

		var tech recipe.Technique
		if step.Technique != "" {
			if techniques == nil {
				return nil, fmt.Errorf("method step %d (line %d): no technique catalog to resolve %q", i+1, step.Line, step.Technique)
			}
			t, err := techniques.Technique(step.Technique)
			if err != nil {
				return nil, fmt.Errorf("method step %d (line %d): %w", i+1, step.Line, err)
			}
			tech = t
		}
		method = append(method, recipe.NewInstruction(tech, recipe.NewParameters(step.Parameters, nil)))
	}

	return recipe.New(recipe.Options{
		ID:          d.ID,
		Name:        d.Name,
		Author:      d.Author,
		Description: d.Description,
		Ingredients: build(d.Ingredients),
		Equipment:   build(d.Equipment),
		Products:    build(d.Products),
		Method:      method,
		Policy:      policy,
	})
}

func build(specs []recipe.EntitySpec) []*recipe.Entity {
	out := make([]*recipe.Entity, len(specs))
	for i, s := range specs {
		out[i] = s.Build()
	}
	return out
}

type scalarFunc func(key string, value *yaml.Node) (recipe.EntitySpec, error)

// decodeEntities walks a key -> value mapping in document order.
func decodeEntities(node *yaml.Node, fromScalar scalarFunc) ([]recipe.EntitySpec, error) {
	if node.Kind == 0 || isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping of key to entity", ErrInvalidDocument, node.Line)
	}

	specs := make([]recipe.EntitySpec, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value

		var (
			spec recipe.EntitySpec
			err  error
		)
		switch {
		case isNull(valueNode):
			spec = recipe.EntitySpec{Key: key}
		case valueNode.Kind == yaml.MappingNode:
			spec, err = entityFromMapping(key, valueNode)
		case valueNode.Kind == yaml.ScalarNode:
			spec, err = fromScalar(key, valueNode)
		default:
			err = fmt.Errorf("%w: line %d: %s must be a scalar or a mapping", ErrInvalidDocument, valueNode.Line, key)
		}
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

type entityFields struct {
	Name     string   `yaml:"name"`
	Quantity any      `yaml:"quantity"`
	Units    string   `yaml:"units"`
	Unit     string   `yaml:"unit"`
	Tags     []string `yaml:"tags"`
}

func entityFromMapping(key string, node *yaml.Node) (recipe.EntitySpec, error) {
	var f entityFields
	if err := node.Decode(&f); err != nil {
		return recipe.EntitySpec{}, fmt.Errorf("%w: line %d: %s: %v", ErrInvalidDocument, node.Line, key, err)
	}
	spec := recipe.EntitySpec{Key: key, Name: f.Name, Units: f.Units, Tags: f.Tags}
	if spec.Units == "" {
		spec.Units = f.Unit
	}
	if f.Quantity != nil {
		value, units, err := quantity.ParseAmount(f.Quantity)
		if err != nil {
			return recipe.EntitySpec{}, fmt.Errorf("%w: line %d: %s: %v", ErrInvalidDocument, node.Line, key, err)
		}
		spec.Quantity = value
		if spec.Units == "" && units != quantity.Count {
			spec.Units = units.Name()
		}
	}
	return spec, nil
}

// ingredientFromScalar reads "flour: 200 g" as an amount.
func ingredientFromScalar(key string, node *yaml.Node) (recipe.EntitySpec, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return recipe.EntitySpec{}, fmt.Errorf("%w: line %d: %s: %v", ErrInvalidDocument, node.Line, key, err)
	}
	value, units, err := quantity.ParseAmount(v)
	if err != nil {
		return recipe.EntitySpec{}, fmt.Errorf("%w: line %d: %s: %v", ErrInvalidDocument, node.Line, key, err)
	}
	spec := recipe.EntitySpec{Key: key, Quantity: value}
	if units != quantity.Count {
		spec.Units = units.Name()
	}
	return spec, nil
}

// namedFromScalar reads "pan: Frying pan" as a display name.
func namedFromScalar(key string, node *yaml.Node) (recipe.EntitySpec, error) {
	return recipe.EntitySpec{Key: key, Name: node.Value}, nil
}

type stepFields struct {
	Technique  string         `yaml:"technique"`
	Parameters map[string]any `yaml:"parameters"`
}

func decodeStep(node *yaml.Node) (Step, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return Step{Line: node.Line, Text: node.Value}, nil
	case yaml.MappingNode:
		var f stepFields
		if err := node.Decode(&f); err != nil {
			return Step{}, fmt.Errorf("%w: line %d: %v", ErrInvalidDocument, node.Line, err)
		}
		params := f.Parameters
		if params == nil {
			params = map[string]any{}
		}
		return Step{Line: node.Line, Technique: f.Technique, Parameters: params}, nil
	default:
		return Step{}, fmt.Errorf("%w: line %d: a step is text or {technique, parameters}", ErrInvalidDocument, node.Line)
	}
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
