package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_EvictsOldestBeyondCapacity(t *testing.T) {
	c := newLRUCache(2, time.Minute)
	c.set("a", Mapping{ShipID: "ship-a"})
	c.set("b", Mapping{ShipID: "ship-b"})
	c.set("c", Mapping{ShipID: "ship-c"})

	_, ok := c.get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_ExpiresAfterTTL(t *testing.T) {
	c := newLRUCache(8, time.Millisecond)
	c.set("a", Mapping{ShipID: "ship-a"})
	time.Sleep(5 * time.Millisecond)
	_, ok := c.get("a")
	assert.False(t, ok)
}
