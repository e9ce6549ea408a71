package recipe

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubTechnique renders "<key> <target>" or fails with err.
type stubTechnique struct {
	key string
	err error
}

func (s stubTechnique) Key() string { return s.key }

func (s stubTechnique) EvalTemplate(p Parameters) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if p.Target.IsZero() {
		return s.key, nil
	}
	return s.key + " " + p.Target.Display(), nil
}

func TestText_RendersVerbatim(t *testing.T) {
	instr := Text("Preheat oven")

	require.True(t, instr.IsText())
	require.Nil(t, instr.Technique())
	require.Equal(t, "Preheat oven", instr.String())

	out, err := instr.Render()
	require.NoError(t, err)
	require.Equal(t, "Preheat oven", out)
}

func TestInstruction_RenderDelegatesToTechnique(t *testing.T) {
	reg := testRegistry(t)
	instr := NewInstruction(stubTechnique{key: "mix"}, NewParameters(map[string]any{"target": "bowl"}, reg))

	out, err := instr.Render()
	require.NoError(t, err)
	require.Equal(t, "mix mixing bowl", out)
	require.False(t, instr.IsText())
}

func TestInstruction_RenderUnresolvedTarget(t *testing.T) {
	instr := NewInstruction(stubTechnique{key: "bake"}, NewParameters(map[string]any{"target": "oven"}, nil))
	require.Equal(t, "bake oven", instr.String())
}

func TestInstruction_MissingTechnique(t *testing.T) {
	instr := NewInstruction(nil, Parameters{})

	_, err := instr.Render()
	require.ErrorIs(t, err, ErrMissingTechnique)

	_, err = json.Marshal(instr)
	require.ErrorIs(t, err, ErrMissingTechnique)

	require.Equal(t, "["+ErrMissingTechnique.Error()+"]", instr.String())
}

func TestInstruction_RenderWrapsTemplateError(t *testing.T) {
	boom := errors.New("boom")
	instr := NewInstruction(stubTechnique{key: "whisk", err: boom}, Parameters{})

	_, err := instr.Render()
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "whisk")
}

func TestInstruction_MarshalJSON(t *testing.T) {
	reg := testRegistry(t)
	instr := NewInstruction(stubTechnique{key: "mix"}, NewParameters(map[string]any{
		"target":      "bowl",
		"ingredients": []any{"flour", "sugar"},
		"products":    "batter",
	}, reg))

	out, err := json.Marshal(instr)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"technique": "mix",
		"parameters": {"target": "bowl", "ingredients": ["flour", "sugar"], "products": "batter"}
	}`, string(out))

	out, err = json.Marshal(Text("Serve warm"))
	require.NoError(t, err)
	require.JSONEq(t, `"Serve warm"`, string(out))
}

func TestInstruction_ParametersAreCopied(t *testing.T) {
	instr := NewInstruction(stubTechnique{key: "mix"}, NewParameters(map[string]any{"speed": "low"}, nil))
	p := instr.Parameters()
	p.Extra["speed"] = "high"
	require.Equal(t, "low", instr.Parameters().Extra["speed"])
}
