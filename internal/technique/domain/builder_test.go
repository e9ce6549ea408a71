package technique

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	tech, err := NewBuilder("bake").
		Name("Bake").
		Description("Cook with dry heat in an oven").
		Template("techniques/heat/bake.tmpl").
		Labels("heat", "oven").
		Parameters("target", "temperature", "duration").
		Source(SourceUser).
		Build()

	require.NoError(t, err)
	require.Equal(t, "bake", tech.Key())
	require.Equal(t, "Bake", tech.Name())
	require.Equal(t, "Cook with dry heat in an oven", tech.Description())
	require.Equal(t, "techniques/heat/bake.tmpl", tech.Template())
	require.Equal(t, []string{"heat", "oven"}, tech.Labels())
	require.Equal(t, []string{"target", "temperature", "duration"}, tech.Parameters())
	require.Equal(t, SourceUser, tech.Source())
}

func TestBuilder_NameDefaultsToKey(t *testing.T) {
	tech, err := NewBuilder("rest").Template("rest.tmpl").Build()
	require.NoError(t, err)
	require.Equal(t, "rest", tech.Name())
	require.Equal(t, SourceBuiltIn, tech.Source())
}

func TestBuilder_Validation(t *testing.T) {
	_, err := NewBuilder("").Template("x.tmpl").Build()
	require.ErrorIs(t, err, ErrEmptyKey)

	_, err = NewBuilder("mix").Build()
	require.ErrorIs(t, err, ErrEmptyTemplate)
}

func TestSource_String(t *testing.T) {
	require.Equal(t, "built-in", SourceBuiltIn.String())
	require.Equal(t, "user", SourceUser.String())
	require.Equal(t, "unknown", Source(7).String())
}
