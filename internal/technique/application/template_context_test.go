package technique

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mise/internal/quantity"
	"github.com/zjrosen/mise/internal/recipe"
)

func TestNewTemplateContext(t *testing.T) {
	p := recipe.NewParameters(map[string]any{
		"target":      "bowl",
		"ingredients": []any{"flour", "yeast"},
		"duration":    "soon",
		"temperature": 200,
		"speed":       "low",
	}, pantry())

	ctx := NewTemplateContext(p)

	require.NotNil(t, ctx.Target)
	require.Equal(t, Item{Key: "bowl", Name: "bowl", Counted: true, Resolved: true}, *ctx.Target)
	require.Equal(t, []Item{
		{Key: "flour", Name: "flour", Amount: "200 grams", Resolved: true},
		{Key: "yeast", Name: "yeast"},
	}, ctx.Ingredients)
	require.Nil(t, ctx.Products)
	require.Equal(t, "soon", ctx.Duration)
	require.Equal(t, "200°C", ctx.Temperature)
	require.Equal(t, "low", ctx.Args["speed"])
}

func TestNewTemplateContext_Empty(t *testing.T) {
	ctx := NewTemplateContext(recipe.Parameters{})
	require.Nil(t, ctx.Target)
	require.Empty(t, ctx.Ingredients)
	require.Empty(t, ctx.Duration)
	require.NotNil(t, ctx.Args)
}

func TestJoinList(t *testing.T) {
	require.Equal(t, "", joinList([]string{}))
	require.Equal(t, "flour", joinList([]string{"flour"}))
	require.Equal(t, "flour and sugar", joinList([]string{"flour", "sugar"}))
	require.Equal(t, "flour, sugar and salt", joinList([]string{"flour", "sugar", "salt"}))
	require.Equal(t, "a and b", joinList([]any{"a", "b"}))
	require.Equal(t, "x and y", joinList([]Item{{Name: "x"}, {Name: "y"}}))
}

func TestAmountOf(t *testing.T) {
	flour := itemOf(recipe.Resolved(recipe.NewIngredient("flour", 1, quantity.Cup)))
	eggs := itemOf(recipe.Resolved(recipe.NewIngredient("eggs", 3, quantity.Count)))
	salt := itemOf(recipe.Key("salt"))

	require.Equal(t, "1 cup of flour", amountOf(flour))
	require.Equal(t, "3 eggs", amountOf(&eggs))
	require.Equal(t, "salt", amountOf(salt))
	require.Equal(t, "1 cup of flour, 3 eggs and salt", amountOf([]Item{flour, eggs, salt}))
}

func TestNameOf(t *testing.T) {
	var missing *Item
	require.Equal(t, "", nameOf(missing))
	require.Equal(t, "", nameOf(nil))
	require.Equal(t, "oven", nameOf(Item{Name: "oven"}))
	require.Equal(t, "42", nameOf(42))
}
