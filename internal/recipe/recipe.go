package recipe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNilInstruction is returned when a method contains a nil entry.
var ErrNilInstruction = errors.New("method contains a nil instruction")

// Options configures a new Recipe.
type Options struct {
	ID          string // defaults to a random UUID
	Name        string
	Author      string
	Description string
	Ingredients []*Entity
	Equipment   []*Entity
	Products    []*Entity
	Method      []*Instruction
	Policy      ConflictPolicy
	Hooks       Hooks
}

// Recipe holds a recipe's metadata, its entity registry, the method as
// authored and the instructions derived from it.
//
// A Recipe is not safe for concurrent use.
type Recipe struct {
	id          string
	name        string
	author      string
	description string

	registry     *Registry
	method       []*Instruction
	instructions []*Instruction
	dirty        bool
	hooks        Hooks

	pending []Warning // construction warnings reported by the next Update
	last    Derivation
}

// New builds a recipe, registers its entities and derives its instructions.
//
// A key used by two different entities is handled by opts.Policy. Under
// Reject, New fails; otherwise the condition shows up in LastDerivation.
func New(opts Options) (*Recipe, error) {
	r := &Recipe{
		id:          opts.ID,
		name:        opts.Name,
		author:      opts.Author,
		description: opts.Description,
		registry:    NewRegistry(opts.Policy),
		hooks:       opts.Hooks,
		dirty:       true,
	}
	if r.id == "" {
		r.id = uuid.NewString()
	}

	var rejected []error
	groups := []struct {
		role     Role
		entities []*Entity
	}{
		{RoleIngredient, opts.Ingredients},
		{RoleEquipment, opts.Equipment},
		{RoleProduct, opts.Products},
	}
	for _, g := range groups {
		for _, e := range g.entities {
			if err := r.registry.register(g.role, e); err != nil {
				if !errors.Is(err, ErrDuplicateKey) || opts.Policy == Reject {
					rejected = append(rejected, err)
					continue
				}
				r.pending = append(r.pending, Warning{Index: -1, Key: e.Key, Err: err})
			}
		}
	}
	if err := errors.Join(rejected...); err != nil {
		return nil, fmt.Errorf("registering entities: %w", err)
	}

	if err := r.setMethod(opts.Method); err != nil {
		return nil, err
	}
	if _, err := r.Update(); err != nil {
		return nil, err
	}
	return r, nil
}

// ID returns the recipe identifier.
func (r *Recipe) ID() string { return r.id }

// Name returns the recipe name.
func (r *Recipe) Name() string { return r.name }

// Author returns the recipe author.
func (r *Recipe) Author() string { return r.author }

// Description returns the recipe description.
func (r *Recipe) Description() string { return r.description }

// Registry returns the entity registry.
func (r *Recipe) Registry() *Registry { return r.registry }

// Resolve looks a key up across ingredients, equipment and products.
func (r *Recipe) Resolve(key string) (*Entity, bool) { return r.registry.Resolve(key) }

// Ingredients returns the ingredients in registration order.
func (r *Recipe) Ingredients() []*Entity { return r.registry.Entities(RoleIngredient) }

// Equipment returns the equipment in registration order.
func (r *Recipe) Equipment() []*Entity { return r.registry.Entities(RoleEquipment) }

// Products returns the products in registration order.
func (r *Recipe) Products() []*Entity { return r.registry.Entities(RoleProduct) }

// Method returns the method as authored.
func (r *Recipe) Method() []*Instruction { return cloneInstructions(r.method) }

// Instructions returns the derived instructions. They are stale while Dirty.
func (r *Recipe) Instructions() []*Instruction { return cloneInstructions(r.instructions) }

// Dirty reports whether the instructions need recomputing.
func (r *Recipe) Dirty() bool { return r.dirty }

// MarkDirty flags the instructions as stale.
func (r *Recipe) MarkDirty() { r.dirty = true }

// LastDerivation returns the report of the last pass that ran.
func (r *Recipe) LastDerivation() Derivation { return r.last }

// SetMethod replaces the method and marks the recipe dirty.
func (r *Recipe) SetMethod(method []*Instruction) error {
	if err := r.setMethod(method); err != nil {
		return err
	}
	r.dirty = true
	return nil
}

func (r *Recipe) setMethod(method []*Instruction) error {
	for i, instr := range method {
		if instr == nil {
			return fmt.Errorf("%w at step %d", ErrNilInstruction, i+1)
		}
	}
	r.method = cloneInstructions(method)
	return nil
}

// AddIngredient registers an ingredient and marks the recipe dirty. A key
// already in use returns a *DuplicateKeyError; unless the policy is Reject the
// recipe is still marked dirty.
func (r *Recipe) AddIngredient(e *Entity) error { return r.add(RoleIngredient, e) }

// AddEquipment registers an equipment item and marks the recipe dirty.
func (r *Recipe) AddEquipment(e *Entity) error { return r.add(RoleEquipment, e) }

func (r *Recipe) add(role Role, e *Entity) error {
	err := r.registry.register(role, e)
	if err != nil && (!errors.Is(err, ErrDuplicateKey) || r.registry.policy == Reject) {
		return err
	}
	r.dirty = true
	return err
}

// Steps renders every instruction. Steps that fail to render hold their
// error text; the errors are joined into the returned error.
func (r *Recipe) Steps() ([]string, error) {
	steps := make([]string, len(r.instructions))
	var errs []error
	for i, instr := range r.instructions {
		text, err := instr.Render()
		if err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
			text = instr.String()
		}
		steps[i] = text
	}
	return steps, errors.Join(errs...)
}

type recipeJSON struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Author       string         `json:"author,omitempty"`
	Description  string         `json:"description,omitempty"`
	Ingredients  []*Entity      `json:"ingredients"`
	Equipment    []*Entity      `json:"equipment"`
	Products     []*Entity      `json:"products"`
	Instructions []*Instruction `json:"instructions"`
}

// MarshalJSON projects the recipe: metadata, entity lists and derived instructions.
func (r *Recipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(recipeJSON{
		ID:           r.id,
		Name:         r.name,
		Author:       r.author,
		Description:  r.description,
		Ingredients:  r.Ingredients(),
		Equipment:    r.Equipment(),
		Products:     r.Products(),
		Instructions: r.instructions,
	})
}
