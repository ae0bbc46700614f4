package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/bistro-cli/internal/model"
)

func TestCacheWriteOnce(t *testing.T) {
	c := NewCache()

	first := &model.Assessment{Fingerprint: "fp-1"}
	second := &model.Assessment{Fingerprint: "fp-1"}

	assert.Same(t, first, c.Put("fp-1", first))
	// A second write for the same fingerprint keeps the original.
	assert.Same(t, first, c.Put("fp-1", second))

	got, ok := c.Get("fp-1")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheMiss(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()
	a := &model.Assessment{Fingerprint: "fp"}

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Put("fp", a)
			assert.NotNil(t, got)
			_, _ = c.Get("fp")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
}
