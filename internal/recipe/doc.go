// Package recipe models a cooking recipe as structured data and derives its
// resolved instruction list.
//
// A Recipe owns three entity maps (ingredients, equipment and products) that
// share one key space, the author's raw Method and the derived Instructions.
// The package has no knowledge of file formats, template languages or storage.
//
// # References
//
// Parameters refer to entities through Ref, a sum type that is either
// Resolved (it carries the *Entity) or Unresolved (it carries the value the
// author wrote, usually a key string). Resolution never fails: a key that
// names nothing stays Unresolved and renderers must handle both variants.
// Refs holds one or many Ref values and remembers which, so a scalar
// "ingredients: flour" stays scalar and a list stays a list.
//
// # Derivation
//
// Update moves a dirty recipe to clean:
//
//  1. Product discovery walks the method in order and declares every
//     "products" reference, creating minimal entities for unknown keys.
//  2. Resolution builds a fresh Instruction for each method entry with its
//     parameters re-resolved against the registry.
//  3. The instruction list is replaced wholesale and the dirty flag cleared.
//
// Update on a clean recipe is a no-op. The pass never stops early; conditions
// such as duplicate keys are reported in the returned Derivation.
//
// # Conflicts
//
// When a different entity instance claims a key that is already registered,
// the ConflictPolicy decides: KeepFirst (default) keeps the existing entity,
// Overwrite replaces it and Reject keeps it but makes Update return an error
// once the pass completes.
//
// # Concurrency
//
// A Recipe does no locking. Callers embedding it in concurrent code must
// serialize construction, edits and Update calls on the same instance.
package recipe
