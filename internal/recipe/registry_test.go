package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveSearchOrder(t *testing.T) {
	r := NewRegistry(KeepFirst)
	butter := NewEntity("butter", "")
	require.NoError(t, r.register(RoleIngredient, butter))
	r.put(RoleProduct, NewEntity("butter", "browned butter"))

	e, ok := r.Resolve("butter")
	require.True(t, ok)
	require.Same(t, butter, e)

	_, ok = r.Resolve("missing")
	require.False(t, ok)
}

func TestRegistry_EntitiesKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry(KeepFirst)
	for _, k := range []string{"eggs", "flour", "butter"} {
		require.NoError(t, r.register(RoleIngredient, NewEntity(k, "")))
	}

	var keys []string
	for _, e := range r.Entities(RoleIngredient) {
		keys = append(keys, e.Key)
	}
	require.Equal(t, []string{"eggs", "flour", "butter"}, keys)
	require.Equal(t, 3, r.Len(RoleIngredient))
	require.Equal(t, 0, r.Len(RoleProduct))
	require.Nil(t, r.Entities(Role(9)))
}

func TestRegistry_RegisterConflicts(t *testing.T) {
	t.Run("keep first", func(t *testing.T) {
		r := NewRegistry(KeepFirst)
		first := NewEntity("bowl", "")
		require.NoError(t, r.register(RoleEquipment, first))

		err := r.register(RoleIngredient, NewEntity("bowl", ""))
		var dup *DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		require.Equal(t, RoleIngredient, dup.Role)
		require.Equal(t, RoleEquipment, dup.Existing)

		e, _ := r.Resolve("bowl")
		require.Same(t, first, e)
	})

	t.Run("overwrite", func(t *testing.T) {
		r := NewRegistry(Overwrite)
		require.NoError(t, r.register(RoleEquipment, NewEntity("bowl", "")))
		second := NewEntity("bowl", "big bowl")

		err := r.register(RoleEquipment, second)
		require.ErrorIs(t, err, ErrDuplicateKey)

		e, _ := r.Resolve("bowl")
		require.Same(t, second, e)
		require.Equal(t, 1, r.Len(RoleEquipment))
	})

	t.Run("same instance twice", func(t *testing.T) {
		r := NewRegistry(Reject)
		e := NewEntity("bowl", "")
		require.NoError(t, r.register(RoleEquipment, e))
		require.NoError(t, r.register(RoleEquipment, e))
	})

	t.Run("invalid entity", func(t *testing.T) {
		r := NewRegistry(KeepFirst)
		require.ErrorIs(t, r.register(RoleIngredient, nil), ErrInvalidEntity)
		require.ErrorIs(t, r.register(RoleIngredient, &Entity{}), ErrInvalidEntity)
	})
}

func TestDeclareProduct_KeyCreatesMinimalEntity(t *testing.T) {
	r := NewRegistry(KeepFirst)

	decl := r.DeclareProduct(Key("sauce"))
	require.True(t, decl.Created)
	require.NoError(t, decl.Conflict)
	require.Equal(t, "sauce", decl.Entity.Key)
	require.Equal(t, "sauce", decl.Entity.Name)

	again := r.DeclareProduct(Key("sauce"))
	require.False(t, again.Created)
	require.Same(t, decl.Entity, again.Entity)
}

func TestDeclareProduct_KeyOnlyConsultsProducts(t *testing.T) {
	r := NewRegistry(KeepFirst)
	require.NoError(t, r.register(RoleIngredient, NewEntity("stock", "")))

	decl := r.DeclareProduct(Key("stock"))
	require.True(t, decl.Created)

	p, ok := r.Lookup(RoleProduct, "stock")
	require.True(t, ok)
	require.Same(t, decl.Entity, p)
}

func TestDeclareProduct_DuplicateInstanceKeepsFirst(t *testing.T) {
	r := NewRegistry(KeepFirst)
	first := NewEntity("bowl", "first")
	second := NewEntity("bowl", "second")

	require.True(t, r.DeclareProduct(Resolved(first)).Created)

	decl := r.DeclareProduct(Resolved(second))
	require.False(t, decl.Created)
	require.Same(t, first, decl.Entity)
	require.ErrorIs(t, decl.Conflict, ErrDuplicateKey)

	e, _ := r.Lookup(RoleProduct, "bowl")
	require.Same(t, first, e)
}

func TestDeclareProduct_DuplicateInstancePolicies(t *testing.T) {
	first := NewEntity("bowl", "first")
	second := NewEntity("bowl", "second")

	over := NewRegistry(Overwrite)
	over.DeclareProduct(Resolved(first))
	decl := over.DeclareProduct(Resolved(second))
	require.Same(t, second, decl.Entity)
	require.ErrorIs(t, decl.Conflict, ErrDuplicateKey)

	reject := NewRegistry(Reject)
	reject.DeclareProduct(Resolved(first))
	decl = reject.DeclareProduct(Resolved(second))
	require.Same(t, first, decl.Entity)
	require.ErrorIs(t, decl.Conflict, ErrDuplicateKey)
}

func TestDeclareProduct_SameInstanceIsNoop(t *testing.T) {
	r := NewRegistry(KeepFirst)
	e := NewEntity("glaze", "")
	r.DeclareProduct(Resolved(e))

	decl := r.DeclareProduct(Resolved(e))
	require.False(t, decl.Created)
	require.NoError(t, decl.Conflict)
	require.Same(t, e, decl.Entity)
}

func TestDeclareProduct_SpecAlwaysCreates(t *testing.T) {
	r := NewRegistry(Reject)
	old := r.DeclareProduct(Key("dough")).Entity

	decl := r.DeclareProduct(Unresolved(EntitySpec{Key: "dough", Name: "Bread dough"}))
	require.True(t, decl.Created)
	require.NotSame(t, old, decl.Entity)
	require.Equal(t, "Bread dough", decl.Entity.Name)
	require.NoError(t, decl.Conflict)

	e, _ := r.Lookup(RoleProduct, "dough")
	require.Same(t, decl.Entity, e)
	require.Equal(t, 1, r.Len(RoleProduct))
}

func TestDeclareProduct_Invalid(t *testing.T) {
	r := NewRegistry(KeepFirst)

	require.ErrorIs(t, r.DeclareProduct(Key("")).Conflict, ErrInvalidEntity)
	require.ErrorIs(t, r.DeclareProduct(Unresolved(EntitySpec{Name: "nameless"})).Conflict, ErrInvalidEntity)
	require.ErrorIs(t, r.DeclareProduct(Unresolved(42)).Conflict, ErrInvalidEntity)
	require.Equal(t, 0, r.Len(RoleProduct))
}

func TestParseConflictPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want ConflictPolicy
	}{
		{"", KeepFirst},
		{"keep-first", KeepFirst},
		{"Overwrite", Overwrite},
		{" reject ", Reject},
	}
	for _, tt := range tests {
		got, err := ParseConflictPolicy(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
		if tt.in != "" {
			require.NotEqual(t, "unknown", got.String())
		}
	}

	_, err := ParseConflictPolicy("merge")
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestDuplicateKeyError(t *testing.T) {
	err := error(&DuplicateKeyError{Key: "bowl", Role: RoleProduct, Existing: RoleEquipment})
	require.True(t, errors.Is(err, ErrDuplicateKey))
	require.Equal(t, "duplicate key detected: bowl (product already used by equipment)", err.Error())

	same := &DuplicateKeyError{Key: "bowl", Role: RoleProduct, Existing: RoleProduct}
	require.Equal(t, "duplicate key detected: bowl (product)", same.Error())
}
