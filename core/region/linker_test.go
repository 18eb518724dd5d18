package region

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelinkParents(t *testing.T) {
	t.Run("Links known parents", func(t *testing.T) {
		spawn := New("spawn", Global{})
		shop := New("shop", Cuboid{Max: BlockVector{X: 5, Y: 5, Z: 5}})
		regions := map[string]*Region{"spawn": spawn, "shop": shop}
		parents := map[*Region]string{shop: "spawn"}

		skipped := RelinkParents(regions, parents)

		assert.Empty(t, skipped)
		assert.Same(t, spawn, shop.Parent)
		assert.Nil(t, spawn.Parent)
	})

	t.Run("Skips missing parent", func(t *testing.T) {
		shop := New("shop", Global{})
		regions := map[string]*Region{"shop": shop}
		parents := map[*Region]string{shop: "nowhere"}

		skipped := RelinkParents(regions, parents)

		require.Len(t, skipped, 1)
		assert.Equal(t, SkippedLink{Region: "shop", Parent: "nowhere", Reason: ReasonMissingParent}, skipped[0])
		assert.Nil(t, shop.Parent)
		assert.Len(t, regions, 1)
	})

	t.Run("Skips self parent", func(t *testing.T) {
		loop := New("loop", Global{})
		skipped := RelinkParents(map[string]*Region{"loop": loop}, map[*Region]string{loop: "loop"})

		require.Len(t, skipped, 1)
		assert.Equal(t, ReasonCircular, skipped[0].Reason)
		assert.Nil(t, loop.Parent)
	})

	t.Run("Breaks two region cycle deterministically", func(t *testing.T) {
		a := New("a", Global{})
		b := New("b", Global{})
		regions := map[string]*Region{"a": a, "b": b}
		parents := map[*Region]string{a: "b", b: "a"}

		skipped := RelinkParents(regions, parents)

		require.Len(t, skipped, 1)
		assert.Equal(t, "b", skipped[0].Region)
		assert.Same(t, b, a.Parent)
		assert.Nil(t, b.Parent)
	})
}

func TestRegion_SetParent(t *testing.T) {
	root := New("root", Global{})
	mid := New("mid", Global{})
	leaf := New("leaf", Global{})

	require.NoError(t, mid.SetParent(root))
	require.NoError(t, leaf.SetParent(mid))

	err := root.SetParent(leaf)
	assert.True(t, errors.Is(err, ErrCircularInheritance))
	assert.Nil(t, root.Parent)

	require.NoError(t, leaf.SetParent(nil))
	assert.Equal(t, "", leaf.ParentID())
	assert.Equal(t, "root", mid.ParentID())
}
