package recipe

import (
	"encoding/json"
	"fmt"
)

// Resolver looks up an entity by key.
type Resolver interface {
	Resolve(key string) (*Entity, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(key string) (*Entity, bool)

// Resolve calls f(key).
func (f ResolverFunc) Resolve(key string) (*Entity, bool) { return f(key) }

// Ref is a reference from a parameter to an entity. It is either Resolved,
// holding the entity, or Unresolved, holding the value the author wrote.
// The zero Ref is absent.
type Ref struct {
	entity *Entity
	raw    any
}

// Resolved returns a Ref bound to e.
func Resolved(e *Entity) Ref {
	if e == nil {
		return Ref{}
	}
	return Ref{entity: e, raw: e.Key}
}

// Unresolved returns a Ref holding a raw value: a key string, an EntitySpec
// payload or anything else the author supplied.
func Unresolved(v any) Ref {
	return Ref{raw: v}
}

// Key returns an unresolved reference to key.
func Key(key string) Ref {
	return Unresolved(key)
}

// IsZero reports whether the Ref is absent.
func (r Ref) IsZero() bool { return r.entity == nil && r.raw == nil }

// IsResolved reports whether the Ref is bound to an entity.
func (r Ref) IsResolved() bool { return r.entity != nil }

// Entity returns the bound entity, if any.
func (r Ref) Entity() (*Entity, bool) { return r.entity, r.entity != nil }

// Raw returns the value the author wrote. For a Resolved Ref it is the key.
func (r Ref) Raw() any { return r.raw }

// KeyString returns the key the Ref names: the entity key when resolved, the
// raw string or the EntitySpec key otherwise.
func (r Ref) KeyString() (string, bool) {
	if r.entity != nil {
		return r.entity.Key, true
	}
	switch v := r.raw.(type) {
	case string:
		return v, true
	case EntitySpec:
		return v.Key, v.Key != ""
	default:
		return "", false
	}
}

// Display returns text suitable for rendering: the entity name when resolved,
// the raw value otherwise.
func (r Ref) Display() string {
	if r.entity != nil {
		return r.entity.Name
	}
	switch v := r.raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case EntitySpec:
		if v.Name != "" {
			return v.Name
		}
		return v.Key
	default:
		return fmt.Sprint(v)
	}
}

// String implements fmt.Stringer using Display.
func (r Ref) String() string { return r.Display() }

// resolve returns the Ref bound through resolver. Only raw key strings are
// looked up; misses and non-string values are returned unchanged.
func (r Ref) resolve(resolver Resolver) Ref {
	if r.entity != nil || resolver == nil {
		return r
	}
	key, ok := r.raw.(string)
	if !ok {
		return r
	}
	if e, found := resolver.Resolve(key); found && e != nil {
		return Ref{entity: e, raw: key}
	}
	return r
}

// MarshalJSON encodes a Resolved Ref as its entity key and an Unresolved Ref
// as its raw value.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.entity != nil {
		return json.Marshal(r.entity.Key)
	}
	if spec, ok := r.raw.(EntitySpec); ok {
		return json.Marshal(spec.Build())
	}
	return json.Marshal(r.raw)
}

// Refs holds one or many references and remembers which, so that a scalar
// input stays scalar and a list stays a list.
type Refs struct {
	items []Ref
	many  bool
}

// One returns a scalar Refs.
func One(r Ref) Refs {
	if r.IsZero() {
		return Refs{}
	}
	return Refs{items: []Ref{r}}
}

// Many returns a list Refs. An empty list is distinct from an absent value.
func Many(rs ...Ref) Refs {
	items := make([]Ref, len(rs))
	copy(items, rs)
	return Refs{items: items, many: true}
}

// Keys returns a list Refs of unresolved key references.
func Keys(keys ...string) Refs {
	items := make([]Ref, len(keys))
	for i, k := range keys {
		items[i] = Key(k)
	}
	return Refs{items: items, many: true}
}

// IsZero reports whether no value was supplied.
func (rs Refs) IsZero() bool { return len(rs.items) == 0 && !rs.many }

// IsMany reports whether the value was supplied as a list.
func (rs Refs) IsMany() bool { return rs.many }

// Len returns the number of references.
func (rs Refs) Len() int { return len(rs.items) }

// Items returns a copy of the references in order.
func (rs Refs) Items() []Ref {
	out := make([]Ref, len(rs.items))
	copy(out, rs.items)
	return out
}

// First returns the first reference, or the zero Ref.
func (rs Refs) First() Ref {
	if len(rs.items) == 0 {
		return Ref{}
	}
	return rs.items[0]
}

// Entities returns the resolved entities in order, skipping unresolved references.
func (rs Refs) Entities() []*Entity {
	out := make([]*Entity, 0, len(rs.items))
	for _, r := range rs.items {
		if e, ok := r.Entity(); ok {
			out = append(out, e)
		}
	}
	return out
}

// resolve binds every element. Cardinality is preserved.
func (rs Refs) resolve(resolver Resolver) Refs {
	if rs.IsZero() {
		return rs
	}
	items := make([]Ref, len(rs.items))
	for i, r := range rs.items {
		items[i] = r.resolve(resolver)
	}
	return Refs{items: items, many: rs.many}
}

// MarshalJSON encodes a list as an array and a scalar as a single value.
func (rs Refs) MarshalJSON() ([]byte, error) {
	if rs.many {
		if rs.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(rs.items)
	}
	if len(rs.items) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(rs.items[0])
}

// refOf converts a decoded value into a Ref.
func refOf(v any) Ref {
	switch x := v.(type) {
	case nil:
		return Ref{}
	case Ref:
		return x
	case *Entity:
		return Resolved(x)
	case EntitySpec:
		return Unresolved(x)
	case map[string]any:
		if spec, ok := specFromMap(x); ok {
			return Unresolved(spec)
		}
		return Unresolved(x)
	default:
		return Unresolved(v)
	}
}

// refsOf converts a decoded value into Refs, treating slices as lists.
func refsOf(v any) Refs {
	switch x := v.(type) {
	case nil:
		return Refs{}
	case Refs:
		return x
	case []Ref:
		return Many(x...)
	case []string:
		return Keys(x...)
	case []*Entity:
		items := make([]Ref, len(x))
		for i, e := range x {
			items[i] = Resolved(e)
		}
		return Many(items...)
	case []any:
		items := make([]Ref, len(x))
		for i, e := range x {
			items[i] = refOf(e)
		}
		return Many(items...)
	default:
		return One(refOf(v))
	}
}
