package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorSpecStrategies(t *testing.T) {
	t.Run("empty spec yields no strategies", func(t *testing.T) {
		assert.Empty(t, LocatorSpec{}.Strategies())
	})

	t.Run("single field yields matching strategy", func(t *testing.T) {
		strategies := LocatorSpec{Name: "email"}.Strategies()
		require.Len(t, strategies, 1)
		assert.Equal(t, Strategy{By: ByName, Value: "email"}, strategies[0])
	})

	t.Run("all fields yield fixed order", func(t *testing.T) {
		spec := LocatorSpec{
			ID:       "login",
			Name:     "user",
			TagName:  "input",
			Class:    "form-control",
			LinkText: "Sign in",
		}
		strategies := spec.Strategies()
		require.Len(t, strategies, 5)
		assert.Equal(t, []string{ByID, ByName, ByTagName, ByClass, ByLinkText}, []string{
			strategies[0].By, strategies[1].By, strategies[2].By, strategies[3].By, strategies[4].By,
		})
	})
}

func TestChain(t *testing.T) {
	a := Strategy{By: ByID, Value: "a"}
	b := Strategy{By: ByClass, Value: "b"}

	chained := Chain(a, b)
	assert.Equal(t, ByChained, chained.By)
	require.Len(t, chained.Parts, 2)
	assert.Equal(t, a, chained.Parts[0])
	assert.Equal(t, b, chained.Parts[1])
}

func TestCompose(t *testing.T) {
	a := Strategy{By: ByID, Value: "a"}
	b := Strategy{By: ByClass, Value: "b"}

	t.Run("empty set stays empty", func(t *testing.T) {
		assert.Empty(t, Compose(nil))
	})

	t.Run("single strategy stays unwrapped", func(t *testing.T) {
		composed := Compose([]Strategy{a})
		require.Len(t, composed, 1)
		assert.Equal(t, a, composed[0])
	})

	t.Run("multiple strategies collapse into one chained", func(t *testing.T) {
		composed := Compose([]Strategy{a, b})
		require.Len(t, composed, 1)
		assert.Equal(t, ByChained, composed[0].By)
		assert.Equal(t, []Strategy{a, b}, composed[0].Parts)
	})
}

func TestKeyEquality(t *testing.T) {
	assert.Equal(t, Strategy{By: ByID, Value: "x"}.Key(), Strategy{By: ByID, Value: "x"}.Key())
	assert.NotEqual(t, Strategy{By: ByID, Value: "x"}.Key(), Strategy{By: ByName, Value: "x"}.Key())
}

func TestDefaultLookup(t *testing.T) {
	s := DefaultLookup("Email")
	assert.Equal(t, ByCSS, s.By)
	assert.Contains(t, s.Value, `[id="Email"]`)
	assert.Contains(t, s.Value, `[name="Email"]`)
}
