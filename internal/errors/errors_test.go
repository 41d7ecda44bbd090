package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	base := fmt.Errorf("catalog lookup failed")
	err := New(base).
		Component("catalog").
		Category(CategoryNetwork).
		Context("query", "lavender").
		Build()

	require.NotNil(t, err)
	assert.Equal(t, "catalog lookup failed", err.Error())
	assert.Equal(t, "catalog", err.Component)
	assert.Equal(t, CategoryNetwork, err.Category)
	assert.Equal(t, "lavender", err.GetContext()["query"])
	assert.True(t, Is(err, base))
}

func TestNewfDefaults(t *testing.T) {
	err := Newf("query too short: %q", "x").Build()

	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Contains(t, err.Error(), "query too short")
}

func TestIsMatchesByCategory(t *testing.T) {
	a := Newf("a").Category(CategoryTimeout).Build()
	b := Newf("b").Category(CategoryTimeout).Build()
	c := Newf("c").Category(CategoryDatabase).Build()

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
}

func TestHasCategory(t *testing.T) {
	err := Newf("missing").Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("outer: %w", err)

	assert.True(t, HasCategory(wrapped, CategoryNotFound))
	assert.False(t, HasCategory(wrapped, CategoryDatabase))
	assert.False(t, HasCategory(fmt.Errorf("plain"), CategoryNotFound))
}

func TestAsUnwrapsEnhancedError(t *testing.T) {
	err := Newf("boom").Component("gardenai").Category(CategoryAIProvider).Build()
	wrapped := fmt.Errorf("outer: %w", err)

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Equal(t, "gardenai", ee.Component)
}
