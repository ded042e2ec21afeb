package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "taxwizz/internal/errors"
	"taxwizz/pkg/contracts/domain"
)

func TestRegistry_Builtins(t *testing.T) {
	reg := NewRegistry()

	def, err := reg.Get("default")
	require.NoError(t, err)
	assert.Equal(t, 42, def.IntradayStart)
	assert.Equal(t, 42, def.IntradayEnd)
	assert.Equal(t, 55, def.LongTermStart)
	assert.Equal(t, 57, def.LongTermEnd)
	assert.Equal(t, domain.FormatStandard, def.OutputFormat)

	compact, err := reg.Get("compact")
	require.NoError(t, err)
	assert.Equal(t, domain.FormatCompact, compact.OutputFormat)
	assert.Equal(t, def.IntradayStart, compact.IntradayStart)
	assert.Equal(t, def.LongTermEnd, compact.LongTermEnd)
}

func TestRegistry_UnknownName(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get("fancy")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrUnknownTemplate)
	assert.Contains(t, err.Error(), "fancy")
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry()

	names := []string{}
	for _, tpl := range reg.List() {
		names = append(names, tpl.Name)
	}
	assert.Equal(t, []string{"compact", "default"}, names)
}

func TestTemplate_WithDoesNotMutateRegistry(t *testing.T) {
	reg := NewRegistry()

	first, err := reg.Get("default")
	require.NoError(t, err)

	start, end := 10, 20
	format := domain.FormatCompact
	custom := first.With(Overrides{
		IntradayStart: &start,
		IntradayEnd:   &end,
		OutputFormat:  &format,
	})

	assert.Equal(t, 10, custom.IntradayStart)
	assert.Equal(t, 20, custom.IntradayEnd)
	assert.Equal(t, domain.FormatCompact, custom.OutputFormat)
	// long-term window untouched by the overrides
	assert.Equal(t, 55, custom.LongTermStart)
	assert.Equal(t, 57, custom.LongTermEnd)

	// a second fetch still sees the builtin values
	second, err := reg.Get("default")
	require.NoError(t, err)
	assert.Equal(t, 42, second.IntradayStart)
	assert.Equal(t, 42, second.IntradayEnd)
	assert.Equal(t, domain.FormatStandard, second.OutputFormat)
}

func TestTemplate_WithEmptyOverridesIsIdentity(t *testing.T) {
	reg := NewRegistry()

	tpl, err := reg.Get("compact")
	require.NoError(t, err)
	assert.Equal(t, tpl, tpl.With(Overrides{}))
}
