package replication

import (
	"testing"

	"region-sync/core/region"

	"github.com/stretchr/testify/assert"
)

func TestEchoSuppressor(t *testing.T) {
	t.Run("ConsumesMarkOnce", func(t *testing.T) {
		e := NewEchoSuppressor()
		loc := region.Location{World: "world", ID: "spawn"}

		e.Mark(loc)
		assert.Equal(t, 1, e.Pending())

		assert.True(t, e.Consume(loc))
		assert.False(t, e.Consume(loc))
		assert.Equal(t, 0, e.Pending())
	})

	t.Run("ComparesByValue", func(t *testing.T) {
		e := NewEchoSuppressor()
		e.Mark(region.Location{World: "world", ID: "spawn"})

		assert.False(t, e.Consume(region.Location{World: "nether", ID: "spawn"}))
		assert.True(t, e.Consume(region.Location{World: "world", ID: "spawn"}))
	})

	t.Run("ListenerHooks", func(t *testing.T) {
		e := NewEchoSuppressor()
		r := region.New("shop", region.Global{})

		e.BeforeWrite("world", r)
		e.BeforeDelete("nether", r)
		assert.Equal(t, 2, e.Pending())

		e.AfterWrite("world", r)
		assert.False(t, e.Consume(region.Location{World: "world", ID: "shop"}))
		e.AfterDelete("nether", r)
		assert.Equal(t, 0, e.Pending())
	})
}
