package recipe

import (
	"encoding/json"
	"sort"

	"github.com/zjrosen/mise/internal/log"
	"github.com/zjrosen/mise/internal/quantity"
)

// Recognized parameter names. Any other name is kept in Parameters.Extra.
const (
	ParamTarget      = "target"
	ParamIngredients = "ingredients"
	ParamProducts    = "products"
	ParamDuration    = "duration"
	ParamTemperature = "temperature"
)

// Parameters are the arguments of a technique invocation. The recognized
// fields are typed; technique-specific data lives in Extra.
type Parameters struct {
	Target      Ref
	Ingredients Refs
	Products    Refs
	Duration    *quantity.Duration
	Temperature *quantity.Temperature
	Extra       map[string]any
}

// NewParameters builds Parameters from raw options, such as a decoded YAML
// mapping. Strings name entities; lists become list Refs. Duration and
// temperature are coerced into quantity values unless they already are one;
// input that cannot be coerced is kept as-is in Extra. When resolver is
// non-nil the references are resolved against it.
func NewParameters(raw map[string]any, resolver Resolver) Parameters {
	var p Parameters
	for name, v := range raw {
		switch name {
		case ParamTarget:
			p.Target = refOf(v)
		case ParamIngredients:
			p.Ingredients = refsOf(v)
		case ParamProducts:
			p.Products = refsOf(v)
		case ParamDuration:
			if v == nil {
				continue
			}
			d, err := quantity.NewDuration(v)
			if err != nil {
				log.Debug(log.CatRecipe, "keeping raw duration", "value", v, "error", err)
				p.setExtra(name, v)
				continue
			}
			p.Duration = &d
		case ParamTemperature:
			if v == nil {
				continue
			}
			t, err := quantity.NewTemperature(v)
			if err != nil {
				log.Debug(log.CatRecipe, "keeping raw temperature", "value", v, "error", err)
				p.setExtra(name, v)
				continue
			}
			p.Temperature = &t
		default:
			p.setExtra(name, v)
		}
	}
	if resolver != nil {
		p = p.Resolve(resolver)
	}
	return p
}

func (p *Parameters) setExtra(name string, v any) {
	if p.Extra == nil {
		p.Extra = make(map[string]any)
	}
	p.Extra[name] = v
}

// Resolve returns a copy with references bound through resolver. Target and a
// scalar Products value are looked up; Ingredients are looked up element by
// element with cardinality preserved. A list of products is kept as written:
// products are materialized by the derivation's discovery pass, not here.
// References that resolve to nothing keep their raw value.
func (p Parameters) Resolve(resolver Resolver) Parameters {
	out := p.Clone()
	out.Target = p.Target.resolve(resolver)
	out.Ingredients = p.Ingredients.resolve(resolver)
	if !p.Products.IsMany() {
		out.Products = p.Products.resolve(resolver)
	}
	return out
}

// Clone returns a shallow copy with its own Extra map.
func (p Parameters) Clone() Parameters {
	out := p
	if p.Extra != nil {
		out.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Get returns a parameter by name, covering recognized fields and Extra.
func (p Parameters) Get(name string) (any, bool) {
	switch name {
	case ParamTarget:
		return p.Target, !p.Target.IsZero()
	case ParamIngredients:
		return p.Ingredients, !p.Ingredients.IsZero()
	case ParamProducts:
		return p.Products, !p.Products.IsZero()
	case ParamDuration:
		if p.Duration != nil {
			return *p.Duration, true
		}
	case ParamTemperature:
		if p.Temperature != nil {
			return *p.Temperature, true
		}
	}
	v, ok := p.Extra[name]
	return v, ok
}

// Names returns the names of all parameters present, sorted. A raw Extra
// entry is hidden by a typed field of the same name.
func (p Parameters) Names() []string {
	seen := make(map[string]bool, len(p.Extra)+5)
	names := make([]string, 0, len(p.Extra)+5)
	for _, n := range []string{ParamTarget, ParamIngredients, ParamProducts, ParamDuration, ParamTemperature} {
		if _, ok := p.Get(n); ok {
			seen[n] = true
			names = append(names, n)
		}
	}
	for n := range p.Extra {
		if !seen[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// MarshalJSON flattens the parameters into one object. Typed fields win over
// Extra entries of the same name.
func (p Parameters) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		out[k] = v
	}
	if !p.Target.IsZero() {
		out[ParamTarget] = p.Target
	}
	if !p.Ingredients.IsZero() {
		out[ParamIngredients] = p.Ingredients
	}
	if !p.Products.IsZero() {
		out[ParamProducts] = p.Products
	}
	if p.Duration != nil {
		out[ParamDuration] = *p.Duration
	}
	if p.Temperature != nil {
		out[ParamTemperature] = *p.Temperature
	}
	return json.Marshal(out)
}
