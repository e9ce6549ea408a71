package presentation

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mise/internal/quantity"
	"github.com/zjrosen/mise/internal/recipe"
	technique "github.com/zjrosen/mise/internal/technique/domain"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// echo renders "<Key> <target name>".
type echo string

func (e echo) Key() string { return string(e) }

func (e echo) EvalTemplate(p recipe.Parameters) (string, error) {
	return strings.ToUpper(string(e[:1])) + string(e[1:]) + " the " + p.Target.Display() + ".", nil
}

func pancakes(t *testing.T) *recipe.Recipe {
	t.Helper()
	r, err := recipe.New(recipe.Options{
		ID:          "pancakes",
		Name:        "Pancakes",
		Author:      "Sam",
		Description: "Fluffy weekend pancakes.",
		Ingredients: []*recipe.Entity{
			recipe.NewIngredient("flour", 200, quantity.Gram),
			recipe.NewIngredient("eggs", 2, quantity.Count),
		},
		Equipment: []*recipe.Entity{recipe.NewEntity("pan", "frying pan")},
		Method: []*recipe.Instruction{
			recipe.Text("Heat the pan."),
			recipe.NewInstruction(echo("whisk"), recipe.NewParameters(map[string]any{"target": "eggs"}, nil)),
			recipe.NewInstruction(nil, recipe.Parameters{}),
			recipe.NewInstruction(echo("serve"), recipe.NewParameters(map[string]any{"target": "stack"}, nil)),
		},
	})
	require.NoError(t, err)
	return r
}

func TestFromRecipe(t *testing.T) {
	dto := FromRecipe(pancakes(t))

	require.Equal(t, "pancakes", dto.ID)
	require.Equal(t, []EntityDTO{
		{Key: "flour", Name: "flour", Amount: "200 grams"},
		{Key: "eggs", Name: "eggs", Amount: "2"},
	}, dto.Ingredients)
	require.Len(t, dto.Steps, 4)
	require.Equal(t, StepDTO{Number: 1, Text: "Heat the pan."}, dto.Steps[0])
	require.Equal(t, StepDTO{Number: 2, Text: "Whisk the eggs.", Technique: "whisk"}, dto.Steps[1])
	require.Contains(t, dto.Steps[2].Error, recipe.ErrMissingTechnique.Error())
	require.Equal(t, []UnresolvedDTO{{Step: 4, Field: recipe.ParamTarget, Value: "stack"}}, dto.Unresolved)
	require.Empty(t, dto.Products)
}

func TestFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, WithWidth(40))
	require.NoError(t, f.FormatRecipe(FromRecipe(pancakes(t)), FormatText))

	out := stripANSI(buf.String())
	require.Contains(t, out, "Pancakes\nby Sam\n")
	require.Contains(t, out, "Ingredients\n  flour  200 grams\n  eggs   2\n")
	require.Contains(t, out, "Equipment\n  - frying pan\n")
	require.Contains(t, out, "  1. Heat the pan.\n  2. Whisk the eggs.\n")
	require.Contains(t, out, "  3. ["+recipe.ErrMissingTechnique.Error()+"]")
	require.Contains(t, out, `? step 4: target "stack" did not resolve`)
}

func TestFormatter_TextWrapsSteps(t *testing.T) {
	dto := RecipeDTO{Name: "Toast", Steps: []StepDTO{{
		Number: 1,
		Text:   "Toast the bread until it is golden brown on both sides and smells nutty.",
	}}}
	out := stripANSI(NewFormatter(nil, WithWidth(30)).Text(dto))

	lines := strings.Split(strings.TrimSpace(out[strings.Index(out, "1."):]), "\n")
	require.Greater(t, len(lines), 1)
	for _, l := range lines[1:] {
		require.True(t, strings.HasPrefix(l, "     "), "continuation %q should hang under the text", l)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(FromRecipe(pancakes(t)))
	require.True(t, strings.HasPrefix(md, "# Pancakes\n\n*by Sam*\n\nFluffy weekend pancakes.\n\n"))
	require.Contains(t, md, "## Ingredients\n\n- 200 grams flour\n- 2 eggs\n\n")
	require.Contains(t, md, "## Method\n\n1. Heat the pan.\n2. Whisk the eggs.\n3. *")
	require.Contains(t, md, "4. Serve the stack.\n")
}

func TestFormatter_StyledMarkdown(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, WithStyled(true, "notty"))
	require.NoError(t, f.FormatRecipe(FromRecipe(pancakes(t)), FormatMarkdown))

	out := stripANSI(buf.String())
	require.Contains(t, out, "Pancakes")
	require.Contains(t, out, "Whisk the eggs.")
}

func TestFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, WithPretty(true)).FormatRecipe(FromRecipe(pancakes(t)), FormatJSON))
	require.Contains(t, buf.String(), "\n  \"id\": \"pancakes\"")

	var decoded RecipeDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "Pancakes", decoded.Name)
	require.Len(t, decoded.Steps, 4)

	buf.Reset()
	require.NoError(t, NewFormatter(&buf).FormatJSON(map[string]int{"a": 1}))
	require.Equal(t, "{\"a\":1}\n", buf.String())
}

func TestFormatter_UnknownFormat(t *testing.T) {
	require.Error(t, NewFormatter(&bytes.Buffer{}).FormatRecipe(RecipeDTO{}, "yaml"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "md": FormatMarkdown, "markdown": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("yaml")
	require.ErrorContains(t, err, `unknown format "yaml"`)
}

func TestFormatTechniques(t *testing.T) {
	mix, err := technique.NewBuilder("mix").Name("Mix").Template("t.tmpl").Labels("prep").Build()
	require.NoError(t, err)
	bake, err := technique.NewBuilder("bake").Template("b.tmpl").Labels("heat", "oven").Source(technique.SourceUser).Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatTechniques(FromTechniques([]*technique.Technique{mix, bake})))
	require.Equal(t, "mix   Mix   prep\nbake  bake  heat,oven  (user)\n", buf.String())
}

func TestFormatStoredRecipes(t *testing.T) {
	var buf bytes.Buffer
	when := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, NewFormatter(&buf).FormatStoredRecipes([]StoredRecipeDTO{
		{ID: "p", Name: "Pancakes", Author: "Sam", UpdatedAt: when},
		{ID: "waffles", Name: "Waffles", UpdatedAt: when},
	}))
	require.Equal(t,
		"p        Pancakes  Sam  2026-03-01 09:30\n"+
			"waffles  Waffles        2026-03-01 09:30\n", buf.String())
}

func TestTable_WideRunes(t *testing.T) {
	out := table([][]string{{"抹茶", "1 tsp"}, {"salt", "pinch"}}, 1)
	require.Equal(t, "抹茶 1 tsp\nsalt pinch\n", out)
}
