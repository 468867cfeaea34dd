package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, "category-attributes:12:Trail Shoes", Key(12, "Trail Shoes"))
}

func TestKey_WhitespaceVariantsCollide(t *testing.T) {
	base := Key(3, "Hiking Boots")
	assert.Equal(t, base, Key(3, "  Hiking Boots  "))
	assert.Equal(t, base, Key(3, "Hiking\r\nBoots"))
	assert.Equal(t, base, Key(3, "Hiking\nBoots\n"))
}

func TestKey_DifferentIDsDiffer(t *testing.T) {
	assert.NotEqual(t, Key(1, "Boots"), Key(2, "Boots"))
}

func TestAttributeCache_GetMissOnAbsent(t *testing.T) {
	c := New()
	attrs, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, attrs)
}

func TestAttributeCache_SetThenGet(t *testing.T) {
	c := New()
	c.Set("k", []string{"a", "b", "c"}, time.Minute)

	attrs, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, attrs)
}

func TestAttributeCache_ExpiredEntryIsMissAndEvicted(t *testing.T) {
	c := New()
	c.Set("k", []string{"a", "b", "c"}, time.Millisecond)

	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on lookup")
}

func TestAttributeCache_SetOverwrites(t *testing.T) {
	c := New()
	c.Set("k", []string{"old", "old", "old"}, time.Minute)
	c.Set("k", []string{"new", "new", "new"}, time.Minute)

	attrs, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []string{"new", "new", "new"}, attrs)
	assert.Equal(t, 1, c.Len())
}

func TestAttributeCache_ReturnedSliceIsACopy(t *testing.T) {
	c := New()
	c.Set("k", []string{"a", "b", "c"}, time.Minute)

	attrs, ok := c.Get("k")
	require.True(t, ok)
	attrs[0] = "mutated"

	again, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "a", again[0])
}

func TestAttributeCache_StoredSliceIsACopy(t *testing.T) {
	c := New()
	src := []string{"a", "b", "c"}
	c.Set("k", src, time.Minute)
	src[0] = "mutated"

	attrs, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "a", attrs[0])
}

func TestAttributeCache_ConcurrentAccess(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set(Key(n%10, "concurrent"), []string{"a", "b", "c"}, time.Minute)
		}(i)
		go func(n int) {
			defer wg.Done()
			if attrs, ok := c.Get(Key(n%10, "concurrent")); ok {
				// Reads must never observe a torn value.
				assert.Len(t, attrs, 3)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
