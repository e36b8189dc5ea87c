package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fincore-erp/gl_budget_engine/internal/cache"
)

func TestTTLCache_SetGetDelete(t *testing.T) {
	c := cache.NewTTLCache[string, int](time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 42)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	c.Set("a", 43)
	v, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 43, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	c := cache.NewTTLCache[string, string](10 * time.Millisecond)

	c.Set("k", "v")
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestTTLCache_ZeroTTLNeverExpires(t *testing.T) {
	c := cache.NewTTLCache[string, string](0)

	c.Set("k", "v")
	time.Sleep(5 * time.Millisecond)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestTTLCache_Purge(t *testing.T) {
	c := cache.NewTTLCache[string, int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Purge()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestNoopCache_AlwaysMisses(t *testing.T) {
	c := cache.NoopCache[string, int]{}
	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
}
