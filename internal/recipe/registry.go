package recipe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/mise/internal/log"
)

// Registry errors
var (
	ErrDuplicateKey  = errors.New("duplicate entity key")
	ErrInvalidEntity = errors.New("entity has no key")
	ErrUnknownPolicy = errors.New("unknown conflict policy")
)

// ConflictPolicy decides what happens when a key is registered twice with
// different entities.
type ConflictPolicy int

const (
	// KeepFirst keeps the entity registered first and records a warning.
	KeepFirst ConflictPolicy = iota
	// Overwrite replaces the existing entity and records a warning.
	Overwrite
	// Reject keeps the existing entity and reports the conflict as an error.
	Reject
)

// String returns the configuration name of the policy.
func (p ConflictPolicy) String() string {
	switch p {
	case KeepFirst:
		return "keep-first"
	case Overwrite:
		return "overwrite"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseConflictPolicy parses "keep-first", "overwrite" or "reject".
// The empty string means KeepFirst.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep-first", "keep_first", "keepfirst":
		return KeepFirst, nil
	case "overwrite":
		return Overwrite, nil
	case "reject":
		return Reject, nil
	default:
		return KeepFirst, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// DuplicateKeyError describes a key registered to two different entities.
type DuplicateKeyError struct {
	Key      string
	Role     Role // role of the entity being registered
	Existing Role // role of the entity already holding the key
}

func (e *DuplicateKeyError) Error() string {
	if e.Role == e.Existing {
		return fmt.Sprintf("duplicate key detected: %s (%s)", e.Key, e.Role)
	}
	return fmt.Sprintf("duplicate key detected: %s (%s already used by %s)", e.Key, e.Role, e.Existing)
}

// Is makes errors.Is(err, ErrDuplicateKey) match.
func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// Declaration is the outcome of DeclareProduct.
type Declaration struct {
	// Entity is the product the reference now names. Nil when the reference
	// could not be declared.
	Entity *Entity
	// Created is true when the entity was added to the product map by this call.
	Created bool
	// Conflict is non-nil when a different entity already held the key.
	Conflict error
}

// Registry owns a recipe's ingredients, equipment and products. Keys are
// logically one namespace; Resolve searches the maps in a fixed order.
type Registry struct {
	maps   [len(roles)]map[string]*Entity
	order  [len(roles)][]string
	policy ConflictPolicy
}

// NewRegistry creates an empty registry.
func NewRegistry(policy ConflictPolicy) *Registry {
	r := &Registry{policy: policy}
	for i := range r.maps {
		r.maps[i] = make(map[string]*Entity)
	}
	return r
}

// Policy returns the conflict policy.
func (r *Registry) Policy() ConflictPolicy { return r.policy }

// Resolve looks key up in ingredients, then equipment, then products.
func (r *Registry) Resolve(key string) (*Entity, bool) {
	for _, role := range roles {
		if e, ok := r.maps[role][key]; ok {
			return e, true
		}
	}
	return nil, false
}

// Lookup returns the entity registered under key for one role.
func (r *Registry) Lookup(role Role, key string) (*Entity, bool) {
	if !validRole(role) {
		return nil, false
	}
	e, ok := r.maps[role][key]
	return e, ok
}

// Entities returns the entities of one role in registration order.
func (r *Registry) Entities(role Role) []*Entity {
	if !validRole(role) {
		return nil
	}
	out := make([]*Entity, 0, len(r.order[role]))
	for _, k := range r.order[role] {
		out = append(out, r.maps[role][k])
	}
	return out
}

// Len returns the number of entities registered for a role.
func (r *Registry) Len(role Role) int {
	if !validRole(role) {
		return 0
	}
	return len(r.maps[role])
}

func validRole(role Role) bool { return role >= 0 && int(role) < len(roles) }

// register adds e under role at construction time. A key already used in
// any map is a conflict handled by the policy.
func (r *Registry) register(role Role, e *Entity) error {
	if e == nil || e.Key == "" {
		return ErrInvalidEntity
	}
	for _, other := range roles {
		existing, ok := r.maps[other][e.Key]
		if !ok {
			continue
		}
		if existing == e && other == role {
			return nil
		}
		conflict := &DuplicateKeyError{Key: e.Key, Role: role, Existing: other}
		switch r.policy {
		case Overwrite:
			log.Warn(log.CatRecipe, "duplicate key detected, overwriting", "key", e.Key, "role", role.String())
			r.remove(other, e.Key)
			r.put(role, e)
			return conflict
		case Reject:
			return conflict
		default:
			log.Warn(log.CatRecipe, "duplicate key detected", "key", e.Key, "role", role.String())
			return conflict
		}
	}
	r.put(role, e)
	return nil
}

func (r *Registry) put(role Role, e *Entity) {
	if _, ok := r.maps[role][e.Key]; !ok {
		r.order[role] = append(r.order[role], e.Key)
	}
	r.maps[role][e.Key] = e
}

func (r *Registry) remove(role Role, key string) {
	if _, ok := r.maps[role][key]; !ok {
		return
	}
	delete(r.maps[role], key)
	keys := r.order[role][:0]
	for _, k := range r.order[role] {
		if k != key {
			keys = append(keys, k)
		}
	}
	r.order[role] = keys
}

// DeclareProduct ensures the product a reference names exists and returns it.
//
//   - A key string is looked up among products; a miss creates a minimal
//     entity whose name is the key.
//   - An entity is registered when its key is free. When another instance
//     already holds the key the conflict policy applies.
//   - An EntitySpec always builds and registers a new entity, replacing any
//     product with the same key without a duplicate check.
//
// Only the product map is consulted and changed.
func (r *Registry) DeclareProduct(ref Ref) Declaration {
	products := r.maps[RoleProduct]

	if e, ok := ref.Entity(); ok {
		existing, found := products[e.Key]
		switch {
		case !found:
			r.put(RoleProduct, e)
			return Declaration{Entity: e, Created: true}
		case existing == e:
			return Declaration{Entity: e}
		}
		conflict := &DuplicateKeyError{Key: e.Key, Role: RoleProduct, Existing: RoleProduct}
		if r.policy == Overwrite {
			log.Warn(log.CatRecipe, "duplicate key detected, overwriting", "key", e.Key)
			r.put(RoleProduct, e)
			return Declaration{Entity: e, Conflict: conflict}
		}
		log.Warn(log.CatRecipe, "duplicate key detected", "key", e.Key)
		return Declaration{Entity: existing, Conflict: conflict}
	}

	switch raw := ref.Raw().(type) {
	case string:
		if raw == "" {
			return Declaration{Conflict: ErrInvalidEntity}
		}
		if e, ok := products[raw]; ok {
			return Declaration{Entity: e}
		}
		e := NewEntity(raw, raw)
		r.put(RoleProduct, e)
		return Declaration{Entity: e, Created: true}
	case EntitySpec:
		if raw.Key == "" {
			return Declaration{Conflict: ErrInvalidEntity}
		}
		e := raw.Build()
		if _, found := products[e.Key]; found {
			log.Debug(log.CatRecipe, "product replaced by construction payload", "key", e.Key)
		}
		r.put(RoleProduct, e)
		return Declaration{Entity: e, Created: true}
	default:
		return Declaration{Conflict: fmt.Errorf("%w: cannot declare product from %T", ErrInvalidEntity, raw)}
	}
}
