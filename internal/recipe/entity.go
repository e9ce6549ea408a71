package recipe

import (
	"encoding/json"

	"github.com/zjrosen/mise/internal/quantity"
)

// Role identifies which registry map an entity belongs to.
type Role int

const (
	RoleIngredient Role = iota
	RoleEquipment
	RoleProduct
)

// String returns a human-readable representation of the Role.
func (r Role) String() string {
	switch r {
	case RoleIngredient:
		return "ingredient"
	case RoleEquipment:
		return "equipment"
	case RoleProduct:
		return "product"
	default:
		return "unknown"
	}
}

// roles lists the registry maps in lookup order.
var roles = [...]Role{RoleIngredient, RoleEquipment, RoleProduct}

// Entity is an ingredient, an equipment item or a product. Entities are
// compared by pointer: two references to the same key always share one *Entity.
type Entity struct {
	Key      string
	Name     string
	Quantity float64
	Units    quantity.Units
	Tags     []string
}

// NewEntity creates an entity whose name defaults to its key.
func NewEntity(key, name string) *Entity {
	if name == "" {
		name = key
	}
	return &Entity{Key: key, Name: name}
}

// NewIngredient creates an ingredient with an amount. The name defaults to the key.
func NewIngredient(key string, amount float64, units quantity.Units) *Entity {
	e := NewEntity(key, "")
	e.Quantity = amount
	e.Units = units
	return e
}

// HasTag reports whether the entity carries tag.
func (e *Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Amount renders the quantity with its units, e.g. "200 grams" or "2".
// It returns "" when no quantity is set.
func (e *Entity) Amount() string {
	if e.Quantity == 0 {
		return ""
	}
	return quantity.FormatAmount(e.Quantity, e.Units)
}

// String returns the display name.
func (e *Entity) String() string { return e.Name }

type entityJSON struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity,omitempty"`
	Units    string   `json:"units,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// MarshalJSON encodes the entity with units as a plain name.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(entityJSON{
		Key:      e.Key,
		Name:     e.Name,
		Quantity: e.Quantity,
		Units:    e.Units.Name(),
		Tags:     e.Tags,
	})
}

// EntitySpec is the raw construction payload for an entity. Declaring a product
// from a spec always builds a new entity.
type EntitySpec struct {
	Key      string
	Name     string
	Quantity float64
	Units    string
	Tags     []string
}

// Build creates the entity described by the spec.
func (s EntitySpec) Build() *Entity {
	e := NewEntity(s.Key, s.Name)
	e.Quantity = s.Quantity
	if s.Units != "" {
		e.Units = quantity.Lookup(s.Units)
	} else if s.Quantity != 0 {
		e.Units = quantity.Count
	}
	if len(s.Tags) > 0 {
		e.Tags = append([]string(nil), s.Tags...)
	}
	return e
}

// specFromMap converts a decoded mapping into an EntitySpec. It reports false
// when the mapping carries no key.
func specFromMap(m map[string]any) (EntitySpec, bool) {
	key, _ := m["key"].(string)
	if key == "" {
		return EntitySpec{}, false
	}
	spec := EntitySpec{Key: key}
	spec.Name, _ = m["name"].(string)
	if u, ok := m["units"].(string); ok {
		spec.Units = u
	} else if u, ok := m["unit"].(string); ok {
		spec.Units = u
	}
	switch q := m["quantity"].(type) {
	case int:
		spec.Quantity = float64(q)
	case int64:
		spec.Quantity = float64(q)
	case float64:
		spec.Quantity = q
	}
	switch tags := m["tags"].(type) {
	case []string:
		spec.Tags = append(spec.Tags, tags...)
	case []any:
		for _, t := range tags {
			if s, ok := t.(string); ok {
				spec.Tags = append(spec.Tags, s)
			}
		}
	}
	return spec, true
}
