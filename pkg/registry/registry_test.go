package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterLookup(t *testing.T) {
	r := New[int]()

	r.Register("one", 1)
	r.Register("two", 2)

	v, ok := r.Lookup("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = r.Lookup("One")
	assert.False(t, ok, "lookup must be case-sensitive")

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_LastWriterWins(t *testing.T) {
	r := New[string]()
	r.Register("model", "first")
	r.Register("model", "second")

	v, ok := r.Lookup("model")
	assert.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_NamesAndUnregister(t *testing.T) {
	r := New[bool]()
	r.Register("b", true)
	r.Register("a", true)
	r.Register("c", true)

	assert.Equal(t, []string{"a", "b", "c"}, r.Names())

	r.Unregister("b")
	r.Unregister("does-not-exist")
	assert.Equal(t, []string{"a", "c"}, r.Names())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register("k", i)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.Lookup("k")
		}()
	}
	wg.Wait()

	_, ok := r.Lookup("k")
	assert.True(t, ok)
}
