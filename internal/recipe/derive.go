package recipe

import (
	"errors"
	"fmt"

	"github.com/zjrosen/mise/internal/log"
)

// Hooks are extension points of the derivation pass. Both are optional.
type Hooks struct {
	// PrePass may rewrite the method before discovery, for example to insert
	// preparation steps. It receives a copy. The derived instructions then
	// correspond 1:1 to its output rather than to the stored method.
	PrePass func(method []*Instruction) []*Instruction
	// Resolver wraps the registry lookup used by the resolution pass, for
	// example to expand tag queries.
	Resolver func(base Resolver) Resolver
}

// Warning is a non-fatal condition found while building or deriving a recipe.
type Warning struct {
	// Index is the method position, or -1 for construction-time conditions.
	Index int
	Key   string
	Err   error
}

func (w Warning) String() string {
	if w.Index < 0 {
		return fmt.Sprintf("%s: %v", w.Key, w.Err)
	}
	return fmt.Sprintf("step %d: %s: %v", w.Index+1, w.Key, w.Err)
}

// UnresolvedRef is a reference left unbound after resolution.
type UnresolvedRef struct {
	Index int
	Field string
	Value any
}

// Derivation reports what one Update did.
type Derivation struct {
	// Skipped is true when the recipe was already clean.
	Skipped bool
	// Created lists the products added to the registry, in discovery order.
	Created []*Entity
	// Warnings lists duplicate keys and undeclarable products.
	Warnings []Warning
	// Unresolved lists target and ingredient references nothing matched.
	Unresolved []UnresolvedRef
}

// Clean reports whether the pass raised no warnings and left nothing unresolved.
func (d Derivation) Clean() bool {
	return len(d.Warnings) == 0 && len(d.Unresolved) == 0
}

// Update recomputes the instructions when the recipe is dirty. It declares
// every product named in the method, then resolves a fresh copy of each method
// entry against the registry and replaces the instructions wholesale. A clean
// recipe is left untouched.
//
// The pass always runs to the end. Under the Reject policy the duplicate keys
// it met are returned as an error after the instructions are published.
func (r *Recipe) Update() (Derivation, error) {
	if !r.dirty {
		return Derivation{Skipped: true}, nil
	}

	d := Derivation{Warnings: r.pending}
	r.pending = nil

	method := r.method
	if r.hooks.PrePass != nil {
		method = r.hooks.PrePass(cloneInstructions(r.method))
	}

	var rejected []error
	for i, instr := range method {
		if instr == nil || instr.leaf {
			continue
		}
		for _, ref := range instr.parameters.Products.Items() {
			decl := r.registry.DeclareProduct(ref)
			if decl.Created {
				d.Created = append(d.Created, decl.Entity)
			}
			if decl.Conflict == nil {
				continue
			}
			key, _ := ref.KeyString()
			d.Warnings = append(d.Warnings, Warning{Index: i, Key: key, Err: decl.Conflict})
			if r.registry.policy == Reject && errors.Is(decl.Conflict, ErrDuplicateKey) {
				rejected = append(rejected, fmt.Errorf("step %d: %w", i+1, decl.Conflict))
			}
		}
	}

	var resolver Resolver = r.registry
	if r.hooks.Resolver != nil {
		resolver = r.hooks.Resolver(resolver)
	}

	instructions := make([]*Instruction, 0, len(method))
	for i, instr := range method {
		if instr == nil {
			instructions = append(instructions, Text(""))
			continue
		}
		resolved := instr.resolve(resolver)
		d.Unresolved = append(d.Unresolved, unresolvedIn(i, resolved)...)
		instructions = append(instructions, resolved)
	}

	r.instructions = instructions
	r.dirty = false
	r.last = d

	log.Debug(log.CatRecipe, "derived instructions",
		"recipe", r.id,
		"steps", len(instructions),
		"created", len(d.Created),
		"warnings", len(d.Warnings),
		"unresolved", len(d.Unresolved))

	return d, errors.Join(rejected...)
}

func unresolvedIn(index int, instr *Instruction) []UnresolvedRef {
	if instr.leaf {
		return nil
	}
	var out []UnresolvedRef
	p := instr.parameters
	if !p.Target.IsZero() && !p.Target.IsResolved() {
		out = append(out, UnresolvedRef{Index: index, Field: ParamTarget, Value: p.Target.Raw()})
	}
	for _, ref := range p.Ingredients.Items() {
		if !ref.IsResolved() {
			out = append(out, UnresolvedRef{Index: index, Field: ParamIngredients, Value: ref.Raw()})
		}
	}
	return out
}

func cloneInstructions(in []*Instruction) []*Instruction {
	out := make([]*Instruction, len(in))
	copy(out, in)
	return out
}
